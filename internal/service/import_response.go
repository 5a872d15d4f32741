package service

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"inventapro/internal/dto"
)

// ToImportResponse converts a batch result into its API shape.
func ToImportResponse(res *ImportResult) dto.ImportResponse {
	resp := dto.ImportResponse{
		Message: res.Message(),
		Summary: dto.ImportSummary{
			FileName:   res.FileName,
			TotalRows:  res.TotalRows,
			Imported:   res.Imported,
			Failed:     res.Failed(),
			TimedOut:   res.TimedOut,
			StartedAt:  res.StartedAt,
			FinishedAt: res.FinishedAt,
		},
	}
	if len(res.Errors) == 0 {
		return resp
	}
	resp.Errors = res.Messages()
	resp.Rows = make([]dto.ImportRowError, len(res.Errors))
	for i, e := range res.Errors {
		row := dto.ImportRowError{
			Row:     e.Row,
			Line:    e.Line,
			Code:    e.Code,
			Kind:    e.Kind,
			Message: e.Message,
		}
		for _, f := range e.Fields {
			row.Fields = append(row.Fields, dto.ImportFieldError{Column: f.Column, Field: f.Field, Message: f.Message})
		}
		resp.Rows[i] = row
	}
	return resp
}

// ErrorReportCSV lists failed rows as CSV, one line per row.
func ErrorReportCSV(rows []dto.ImportRowError) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"row", "line", "code", "kind", "message"}); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Row), strconv.Itoa(r.Line), r.Code, r.Kind, r.Message}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

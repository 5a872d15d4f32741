package infra

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// RawRow is one spreadsheet line as read, before any validation.
type RawRow struct {
	Line  int // 1-based line in the sheet; the header is line 1
	Cells []string
}

// RowReader streams data rows in file order. NextChunk returns at most size
// rows and io.EOF once the sheet is exhausted (possibly alongside the last rows).
type RowReader interface {
	NextChunk(size int) ([]RawRow, error)
	Close() error
}

// OpenRowReader picks a reader from the file extension. Rows before startRow
// (the header) are skipped, as are rows whose cells are all blank.
func OpenRowReader(fileName string, r io.Reader, startRow int) (RowReader, error) {
	if err := CheckFormat(fileName); err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return NewXLSXReader(r, startRow)
	default:
		return NewCSVReader(r, startRow), nil
	}
}

// CheckFormat reports ErrUnsupportedFormat for extensions OpenRowReader
// cannot read.
func CheckFormat(fileName string) error {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm", ".csv", ".txt":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ── XLSX ────────────────────────────────────────────────────────────────────

// XLSXReader streams the first worksheet through excelize's row iterator so
// large workbooks are never fully materialised.
type XLSXReader struct {
	f        *excelize.File
	rows     *excelize.Rows
	line     int
	startRow int
}

func NewXLSXReader(r io.Reader, startRow int) (*XLSXReader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return &XLSXReader{f: f, rows: rows, startRow: startRow}, nil
}

func (x *XLSXReader) NextChunk(size int) ([]RawRow, error) {
	var out []RawRow
	for len(out) < size {
		if !x.rows.Next() {
			if err := x.rows.Error(); err != nil {
				return out, err
			}
			return out, io.EOF
		}
		x.line++
		// raw values keep numbers free of display formatting ("1,234.00")
		cols, err := x.rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return out, fmt.Errorf("line %d: %w", x.line, err)
		}
		if x.line < x.startRow || blankRow(cols) {
			continue
		}
		out = append(out, RawRow{Line: x.line, Cells: cols})
	}
	return out, nil
}

func (x *XLSXReader) Close() error {
	rowsErr := x.rows.Close()
	if err := x.f.Close(); err != nil {
		return err
	}
	return rowsErr
}

// ── CSV ─────────────────────────────────────────────────────────────────────

type CSVReader struct {
	r        *csv.Reader
	startRow int
}

func NewCSVReader(r io.Reader, startRow int) *CSVReader {
	br := bufio.NewReader(r)
	// Excel prefixes CSV exports with a UTF-8 BOM
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &CSVReader{r: cr, startRow: startRow}
}

func (c *CSVReader) NextChunk(size int) ([]RawRow, error) {
	var out []RawRow
	for len(out) < size {
		record, err := c.r.Read()
		if errors.Is(err, io.EOF) {
			return out, io.EOF
		}
		if err != nil {
			return out, err
		}
		line, _ := c.r.FieldPos(0)
		if line < c.startRow || blankRow(record) {
			continue
		}
		out = append(out, RawRow{Line: line, Cells: record})
	}
	return out, nil
}

func (c *CSVReader) Close() error { return nil }

// ── Templates ───────────────────────────────────────────────────────────────

type TemplateColumn struct {
	Name     string
	Required bool
}

// WriteXLSXTemplate writes a workbook holding only the styled header row, plus
// an Instructions sheet when instructions are given.
func WriteXLSXTemplate(w io.Writer, cols []TemplateColumn, instructions []string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, col.Name); err != nil {
			return err
		}
		style := headerStyle
		if col.Required {
			style = requiredStyle
		}
		_ = f.SetCellStyle(sheetName, cell, cell, style)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, colName, colName, 18)
	}

	if len(instructions) > 0 {
		if _, err := f.NewSheet("Instructions"); err != nil {
			return err
		}
		for i, line := range instructions {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			_ = f.SetCellValue("Instructions", cell, line)
		}
		_ = f.SetColWidth("Instructions", "A", "A", 100)
	}

	_, err := f.WriteTo(w)
	return err
}

// WriteCSVTemplate writes the header row only.
func WriteCSVTemplate(w io.Writer, cols []TemplateColumn) error {
	writer := csv.NewWriter(w)
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

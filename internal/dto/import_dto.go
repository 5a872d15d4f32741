package dto

import "time"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ImportProductsQuery is bound from the query string of POST /v1/products/import;
// the file itself travels as multipart field "file".
type ImportProductsQuery struct {
	Async       bool   `form:"async"`
	NotifyEmail string `form:"notify_email" validate:"omitempty,email"`
}

type ImportTemplateQuery struct {
	Format string `form:"format,default=xlsx" validate:"oneof=xlsx csv"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ImportFieldError struct {
	Column  int    `json:"column"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ImportRowError struct {
	Row     int                `json:"row"`
	Line    int                `json:"line"`
	Code    string             `json:"code,omitempty"`
	Kind    string             `json:"kind"`
	Message string             `json:"message"`
	Fields  []ImportFieldError `json:"fields,omitempty"`
}

type ImportSummary struct {
	FileName   string    `json:"file_name"`
	TotalRows  int       `json:"total_rows"`
	Imported   int       `json:"imported"`
	Failed     int       `json:"failed"`
	TimedOut   bool      `json:"timed_out"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// ImportResponse is the body of a finished import, wrapped in {"data": ...}.
// Errors holds the "Row N: reason" lines; Rows the same failures in detail.
type ImportResponse struct {
	Message string           `json:"message"`
	Errors  []string         `json:"errors,omitempty"`
	Rows    []ImportRowError `json:"rows,omitempty"`
	Summary ImportSummary    `json:"summary"`
}

type ImportJobResponse struct {
	JobID      string          `json:"job_id"`
	Status     string          `json:"status"`
	FileName   string          `json:"file_name"`
	Result     *ImportResponse `json:"result,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

type ImportLogResponse struct {
	ID         string    `json:"id"`
	JobID      *string   `json:"job_id"`
	FileName   string    `json:"file_name"`
	TotalRows  int       `json:"total_rows"`
	Imported   int       `json:"imported"`
	Failed     int       `json:"failed"`
	TimedOut   bool      `json:"timed_out"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

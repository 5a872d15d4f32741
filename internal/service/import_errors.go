package service

import (
	"errors"
	"fmt"
)

// Row failure kinds. Every RowError wraps exactly one of these.
var (
	ErrDuplicateProductCode = errors.New("duplicate product code")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidNumericField  = errors.New("invalid numeric field")
	ErrUnitNotFound         = errors.New("unit not found")
	ErrInvalidBarcodeSymbol = errors.New("invalid barcode symbol")
	ErrInvalidTaxType       = errors.New("invalid tax type")
	ErrReferenceNotFound    = errors.New("reference not found")
	ErrStorageFailure       = errors.New("storage failure")
	// ErrRowInternal covers database failures that are not a data problem.
	ErrRowInternal = errors.New("internal error")
)

// ErrImportTimeout is returned by Import when the run exceeds its deadline.
// The partial result is still returned alongside it.
var ErrImportTimeout = errors.New("import exceeded its execution time limit")

var kindNames = []struct {
	err  error
	name string
}{
	{ErrDuplicateProductCode, "DuplicateProductCode"},
	{ErrMissingRequiredField, "MissingRequiredField"},
	{ErrInvalidNumericField, "InvalidNumericField"},
	{ErrUnitNotFound, "UnitNotFound"},
	{ErrInvalidBarcodeSymbol, "InvalidBarcodeSymbol"},
	{ErrInvalidTaxType, "InvalidTaxType"},
	{ErrReferenceNotFound, "ReferenceNotFound"},
	{ErrStorageFailure, "StorageFailure"},
}

func kindName(err error) string {
	for _, k := range kindNames {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

// rowFailure is an error with a user-facing message that unwraps to its kind.
type rowFailure struct {
	kind error
	msg  string
}

func (e *rowFailure) Error() string { return e.msg }
func (e *rowFailure) Unwrap() error { return e.kind }

func failRow(kind error, format string, args ...any) error {
	return &rowFailure{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// FieldError is one failed validation rule.
type FieldError struct {
	Column  int    `json:"column"` // 0-based
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RowError is the reason one row was not imported.
type RowError struct {
	Row     int          `json:"row"`  // 1-based data row index
	Line    int          `json:"line"` // sheet line, header is line 1
	Code    string       `json:"code,omitempty"`
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`

	cause error
}

func newRowError(row ProductRow, err error) RowError {
	re := RowError{
		Row:     row.Index,
		Line:    row.Line,
		Code:    row.Code,
		Kind:    kindName(err),
		Message: err.Error(),
		cause:   err,
	}
	var verr *validationFailure
	if errors.As(err, &verr) {
		re.Fields = verr.fields
	}
	return re
}

func (e *RowError) Error() string { return e.String() }
func (e *RowError) Unwrap() error { return e.cause }

// String renders the error the way it is reported to the user.
func (e *RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Row, e.Message)
}

package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var rowValidate = newRowValidator()

// newRowValidator adds the "decimal" tag: anything decimal.NewFromString
// parses, so ".5", "5." and "1e3" pass where the stock "numeric" tag fails.
func newRowValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})
	return v
}

// fieldColumns maps ProductRow fields to their sheet column and display label.
var fieldColumns = map[string]struct {
	col   int
	label string
}{
	"Name":          {colName, "name"},
	"Code":          {colCode, "code"},
	"Category":      {colCategory, "category"},
	"Brand":         {colBrand, "brand"},
	"BarcodeSymbol": {colBarcodeSymbol, "barcode type"},
	"Cost":          {colCost, "cost"},
	"Price":         {colPrice, "price"},
	"BaseUnit":      {colBaseUnit, "product unit"},
	"SaleUnit":      {colSaleUnit, "sale unit"},
	"PurchaseUnit":  {colPurchaseUnit, "purchase unit"},
	"StockAlert":    {colStockAlert, "stock alert"},
	"OrderTax":      {colOrderTax, "order tax"},
	"TaxType":       {colTaxType, "tax type"},
	"Quantity":      {colQuantity, "quantity"},
}

// validationFailure lists every rule a row broke. It unwraps to the kind of
// the first one.
type validationFailure struct {
	kind   error
	fields []FieldError
}

func (e *validationFailure) Error() string {
	msgs := make([]string, len(e.fields))
	for i, f := range e.fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, " ")
}

func (e *validationFailure) Unwrap() error { return e.kind }

// validateRow checks presence and numeric rules before anything touches the
// database.
func validateRow(row ProductRow) error {
	err := rowValidate.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	vf := &validationFailure{}
	for _, fe := range verrs {
		meta := fieldColumns[fe.Field()]
		kind := ErrMissingRequiredField
		msg := "The " + meta.label + " is required."
		if fe.Tag() == "decimal" {
			kind = ErrInvalidNumericField
			msg = "The " + meta.label + " must be numeric."
		}
		if vf.kind == nil {
			vf.kind = kind
		}
		vf.fields = append(vf.fields, FieldError{Column: meta.col, Field: fe.Field(), Message: msg})
	}
	return vf
}

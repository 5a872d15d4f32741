package service

import (
	"io"
	"strings"

	"inventapro/internal/infra"

	"github.com/shopspring/decimal"
)

// Column positions of a product import sheet. The header row is ignored, so
// files are matched by position, never by header text.
const (
	colName = iota
	colCode
	colCategory
	colBrand
	colBarcodeSymbol
	colCost
	colPrice
	colBaseUnit
	colSaleUnit
	colPurchaseUnit
	colStockAlert
	colOrderTax
	colTaxType
	colNotes
	colWarehouse
	colSupplier
	colQuantity
	colStatus
	importColumnCount
)

const (
	// importStartRow is the first data line; line 1 is the header.
	importStartRow = 2
	// importChunkSize is how many rows are pulled from the reader at a time.
	importChunkSize = 1
)

// OpenImportFile opens an uploaded product sheet positioned on its first
// data row. The format is picked from the file extension.
func OpenImportFile(fileName string, r io.Reader) (infra.RowReader, error) {
	return infra.OpenRowReader(fileName, r, importStartRow)
}

// ImportColumns lists the template header in column order.
var ImportColumns = []infra.TemplateColumn{
	{Name: "name", Required: true},
	{Name: "code", Required: true},
	{Name: "category", Required: true},
	{Name: "brand", Required: true},
	{Name: "barcode_symbol", Required: true},
	{Name: "cost", Required: true},
	{Name: "price", Required: true},
	{Name: "product_unit", Required: true},
	{Name: "sale_unit", Required: true},
	{Name: "purchase_unit", Required: true},
	{Name: "stock_alert"},
	{Name: "order_tax"},
	{Name: "tax_type", Required: true},
	{Name: "notes"},
	{Name: "warehouse"},
	{Name: "supplier"},
	{Name: "quantity"},
	{Name: "status"},
}

// ImportInstructions is printed on the Instructions sheet of the xlsx template.
var ImportInstructions = []string{
	"Product Import Instructions",
	"",
	"One product per row, starting on line 2. Columns are read by position; keep the header order.",
	"Required (orange) columns must be filled. cost, price, stock_alert, order_tax and quantity must be numbers.",
	"barcode_symbol: CODE128 or CODE39.",
	"tax_type: Exclusive or Inclusive.",
	"category and brand are created when they do not exist yet.",
	"product_unit must name an existing base unit; sale_unit and purchase_unit must be units of that base unit.",
	"warehouse, supplier and quantity together record an opening purchase and add the quantity to stock.",
	"status: received, ordered or pending (anything else counts as pending).",
}

// ProductRow is one data row of an import file with every cell trimmed.
type ProductRow struct {
	Index int // 1-based position among data rows
	Line  int // line in the sheet

	Name          string `validate:"required"`
	Code          string `validate:"required"`
	Category      string `validate:"required"`
	Brand         string `validate:"required"`
	BarcodeSymbol string `validate:"required"`
	Cost          string `validate:"required,decimal"`
	Price         string `validate:"required,decimal"`
	BaseUnit      string `validate:"required"`
	SaleUnit      string `validate:"required"`
	PurchaseUnit  string `validate:"required"`
	StockAlert    string `validate:"omitempty,decimal"`
	OrderTax      string `validate:"omitempty,decimal"`
	TaxType       string `validate:"required"`
	Notes         string
	Warehouse     string
	Supplier      string
	Quantity      string `validate:"omitempty,decimal"`
	Status        string
}

func newProductRow(index int, raw infra.RawRow) ProductRow {
	cell := func(i int) string {
		if i < len(raw.Cells) {
			return strings.TrimSpace(raw.Cells[i])
		}
		return ""
	}
	return ProductRow{
		Index:         index,
		Line:          raw.Line,
		Name:          cell(colName),
		Code:          cell(colCode),
		Category:      cell(colCategory),
		Brand:         cell(colBrand),
		BarcodeSymbol: cell(colBarcodeSymbol),
		Cost:          cell(colCost),
		Price:         cell(colPrice),
		BaseUnit:      cell(colBaseUnit),
		SaleUnit:      cell(colSaleUnit),
		PurchaseUnit:  cell(colPurchaseUnit),
		StockAlert:    cell(colStockAlert),
		OrderTax:      cell(colOrderTax),
		TaxType:       cell(colTaxType),
		Notes:         cell(colNotes),
		Warehouse:     cell(colWarehouse),
		Supplier:      cell(colSupplier),
		Quantity:      cell(colQuantity),
		Status:        cell(colStatus),
	}
}

// wantsPurchase reports whether the row asks for an opening purchase. A zero
// quantity counts as absent.
func (r ProductRow) wantsPurchase() bool {
	if r.Warehouse == "" || r.Supplier == "" || r.Quantity == "" {
		return false
	}
	q, err := decimal.NewFromString(r.Quantity)
	return err == nil && !q.IsZero()
}

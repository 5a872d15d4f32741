package infra

// pdf.go: printable barcode label using go-pdf/fpdf.
// A 62mm × 40mm sheet (common thermal label stock) with:
//   - Product name
//   - Barcode image
//   - Product code and sale price

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// LabelData is what gets printed on a product label.
type LabelData struct {
	Name    string
	Code    string
	Price   decimal.Decimal
	Barcode []byte // PNG
}

// WriteBarcodeLabelPDF renders one label and writes the PDF to w.
func WriteBarcodeLabelPDF(w io.Writer, l LabelData) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 62, Ht: 40},
	})
	pdf.SetMargins(3, 3, 3)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 6

	// ── Name ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, truncate(pdf.UnicodeTranslatorFromDescriptor("")(l.Name), 40), "", 1, "C", false, 0, "")

	// ── Barcode ──────────────────────────────────────────────────────────────
	if len(l.Barcode) > 0 {
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("barcode", opts, bytes.NewReader(l.Barcode))
		pdf.ImageOptions("barcode", 4, pdf.GetY()+1, contentW-2, 18, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + 20)
	}

	// ── Code + price ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, l.Code, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "$ "+l.Price.StringFixed(2), "", 1, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: render label: %w", err)
	}
	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

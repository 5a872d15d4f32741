package infra

import (
	"bytes"
	"fmt"
	"image/png"

	"inventapro/internal/model"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
)

// Barcode image geometry used for product labels.
const (
	BarcodeModuleWidth = 4  // pixels per narrowest bar
	BarcodeHeight      = 70 // pixels
)

// BarcodeRenderer turns a product code into an encoded image.
type BarcodeRenderer interface {
	Render(code string, symbol model.BarcodeSymbol) ([]byte, error)
}

type PNGBarcodeRenderer struct {
	ModuleWidth int
	Height      int
}

func NewPNGBarcodeRenderer() *PNGBarcodeRenderer {
	return &PNGBarcodeRenderer{ModuleWidth: BarcodeModuleWidth, Height: BarcodeHeight}
}

func (r *PNGBarcodeRenderer) Render(code string, symbol model.BarcodeSymbol) ([]byte, error) {
	var (
		bc  barcode.Barcode
		err error
	)
	switch symbol {
	case model.BarcodeCode128:
		bc, err = code128.Encode(code)
	case model.BarcodeCode39:
		bc, err = code39.Encode(code, false, true)
	default:
		return nil, fmt.Errorf("barcode: unsupported symbology %d", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("barcode: encode %q as %s: %w", code, symbol, err)
	}

	scaled, err := barcode.Scale(bc, bc.Bounds().Dx()*r.ModuleWidth, r.Height)
	if err != nil {
		return nil, fmt.Errorf("barcode: scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

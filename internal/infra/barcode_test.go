package infra

import (
	"bytes"
	"image/png"
	"testing"

	"inventapro/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGBarcodeRenderer_Code128(t *testing.T) {
	data, err := NewPNGBarcodeRenderer().Render("P-0001", model.BarcodeCode128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, BarcodeHeight, img.Bounds().Dy())
	assert.Zero(t, img.Bounds().Dx()%BarcodeModuleWidth)
}

func TestPNGBarcodeRenderer_Code39(t *testing.T) {
	data, err := NewPNGBarcodeRenderer().Render("ABC123", model.BarcodeCode39)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestPNGBarcodeRenderer_RejectsUnknownSymbology(t *testing.T) {
	_, err := NewPNGBarcodeRenderer().Render("X", model.BarcodeSymbol(9))
	assert.Error(t, err)
}

func TestWriteBarcodeLabelPDF(t *testing.T) {
	img, err := NewPNGBarcodeRenderer().Render("P-0001", model.BarcodeCode128)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteBarcodeLabelPDF(&buf, LabelData{
		Name:    "Sparkling water 500ml",
		Code:    "P-0001",
		Price:   decimal.RequireFromString("1.5"),
		Barcode: img,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

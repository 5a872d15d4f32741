package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"inventapro/internal/dto"
	"inventapro/internal/infra"
	"inventapro/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(st *memStore, code string) model.Product {
	p := model.Product{
		ID:            uuid.New(),
		Name:          "Cola " + code,
		Code:          code,
		BarcodeSymbol: model.BarcodeCode128,
		ProductCost:   decimal.RequireFromString("1.20"),
		ProductPrice:  decimal.RequireFromString("2.50"),
		TaxType:       model.TaxExclusive,
		CreatedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Category:      &model.ProductCategory{Name: "Drinks"},
		Brand:         &model.Brand{Name: "FizzCo"},
	}
	st.products[code] = p
	return p
}

func newProductFixture() (*memStore, *memBlobs, ProductService) {
	st := newMemStore()
	blobs := newMemBlobs()
	svc := NewProductService(&stubProductRepo{st: st}, blobs, infra.NewPNGBarcodeRenderer(), "https://cdn.example.com/")
	return st, blobs, svc
}

func TestProductService_GetByID(t *testing.T) {
	st, _, svc := newProductFixture()
	p := seedProduct(st, "P-1")

	got, err := svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "P-1", got.Code)
	assert.Equal(t, "Drinks", got.Category)
	assert.Equal(t, "FizzCo", got.Brand)
	assert.Equal(t, "CODE128", got.BarcodeSymbol)
	assert.Equal(t, "exclusive", got.TaxType)
	assert.Equal(t, "https://cdn.example.com/product_barcode/barcode-PR_"+p.ID.String()+".png", got.BarcodeURL)
	assert.Equal(t, "2024-03-01T10:00:00Z", got.CreatedAt)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	_, _, svc := newProductFixture()
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_List(t *testing.T) {
	st, _, svc := newProductFixture()
	seedProduct(st, "P-1")
	seedProduct(st, "P-2")
	seedProduct(st, "X-3")

	got, err := svc.List(context.Background(), dto.ProductFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got.Data, 3)
	assert.EqualValues(t, 3, got.Total)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 2, got.TotalPages)
}

func TestProductService_BarcodeStored(t *testing.T) {
	st, blobs, svc := newProductFixture()
	p := seedProduct(st, "P-1")
	blobs.objects[BarcodeKey(&p)] = []byte("stored")

	got, err := svc.BarcodePNG(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("stored"), got)
}

func TestProductService_BarcodeRegeneratedWhenMissing(t *testing.T) {
	st, blobs, svc := newProductFixture()
	p := seedProduct(st, "P-1")

	got, err := svc.BarcodePNG(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, []byte("\x89PNG")))
	assert.Equal(t, got, blobs.objects[BarcodeKey(&p)])
}

func TestProductService_BarcodeStoreUnavailable(t *testing.T) {
	st, blobs, svc := newProductFixture()
	p := seedProduct(st, "P-1")
	blobs.putErr = errors.New("disk full")

	// rendering still succeeds when the write-back fails
	got, err := svc.BarcodePNG(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestProductService_BarcodeLabelPDF(t *testing.T) {
	st, _, svc := newProductFixture()
	p := seedProduct(st, "P-1")

	got, err := svc.BarcodeLabelPDF(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(got, []byte("%PDF")))
}

func TestStockService_ListMovements(t *testing.T) {
	st := newMemStore()
	ref := uuid.New()
	st.movements = append(st.movements, model.StockMovement{
		ID:          uuid.New(),
		WarehouseID: uuid.New(),
		ProductID:   uuid.New(),
		Type:        model.MovementPurchaseImport,
		Quantity:    decimal.NewFromInt(5),
		StockBefore: decimal.Zero,
		StockAfter:  decimal.NewFromInt(5),
		ReferenceID: &ref,
		Product:     &model.Product{Name: "Cola"},
	})

	svc := NewStockService(&stubStockRepo{st: st})
	got, err := svc.ListMovements(context.Background(), dto.StockMovementFilter{Page: 1, Limit: 100})
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	m := got.Data[0]
	assert.Equal(t, "Cola", m.ProductName)
	assert.Equal(t, model.MovementPurchaseImport, m.Type)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, ref.String(), *m.ReferenceID)
	assert.True(t, m.StockAfter.Equal(decimal.NewFromInt(5)))
}

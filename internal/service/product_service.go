package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"inventapro/internal/dto"
	"inventapro/internal/infra"
	"inventapro/internal/model"
	"inventapro/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// ProductService serves read access to imported products and their barcodes.
type ProductService interface {
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	BarcodePNG(ctx context.Context, id uuid.UUID) ([]byte, error)
	BarcodeLabelPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type productService struct {
	repo     repository.ProductRepository
	blobs    infra.BlobStore
	barcodes infra.BarcodeRenderer
	mediaURL string
}

// NewProductService builds the read service. mediaURL prefixes barcode keys
// in responses; empty leaves the bare key.
func NewProductService(repo repository.ProductRepository, blobs infra.BlobStore, barcodes infra.BarcodeRenderer, mediaURL string) ProductService {
	return &productService{repo: repo, blobs: blobs, barcodes: barcodes, mediaURL: mediaURL}
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:       make([]dto.ProductResponse, len(items)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}
	for i := range items {
		resp.Data[i] = s.toResponse(&items[i])
	}
	return resp, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(p)
	return &resp, nil
}

// BarcodePNG returns the stored barcode image. A missing artifact is rendered
// again from the product and written back.
func (s *productService) BarcodePNG(ctx context.Context, id uuid.UUID) ([]byte, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.barcodePNG(ctx, p)
}

func (s *productService) BarcodeLabelPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := s.barcodePNG(ctx, p)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = infra.WriteBarcodeLabelPDF(&buf, infra.LabelData{
		Name:    p.Name,
		Code:    p.Code,
		Price:   p.ProductPrice,
		Barcode: png,
	})
	if err != nil {
		return nil, fmt.Errorf("render label: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *productService) find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *productService) barcodePNG(ctx context.Context, p *model.Product) ([]byte, error) {
	key := BarcodeKey(p)
	data, err := s.blobs.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, infra.ErrBlobNotFound) {
		return nil, err
	}

	data, err = s.barcodes.Render(p.Code, p.BarcodeSymbol)
	if err != nil {
		return nil, fmt.Errorf("render barcode: %w", err)
	}
	if err := s.blobs.Put(ctx, key, data, "image/png"); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("could not store regenerated barcode")
	}
	return data, nil
}

func (s *productService) toResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Code:          p.Code,
		BarcodeSymbol: p.BarcodeSymbol.String(),
		Cost:          p.ProductCost,
		Price:         p.ProductPrice,
		StockAlert:    p.StockAlert,
		OrderTax:      p.OrderTax,
		TaxType:       p.TaxType.String(),
		Notes:         p.Notes,
		BarcodeURL:    s.mediaURL + BarcodeKey(p),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	if p.Brand != nil {
		resp.Brand = p.Brand.Name
	}
	return resp
}

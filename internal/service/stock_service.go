package service

import (
	"context"
	"time"

	"inventapro/internal/dto"
	"inventapro/internal/repository"

	"github.com/google/uuid"
)

// StockService exposes the stock movement ledger.
type StockService interface {
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type stockService struct {
	repo repository.StockRepository
}

func NewStockService(repo repository.StockRepository) StockService {
	return &stockService{repo: repo}
}

func (s *stockService) ListMovements(ctx context.Context, f dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	filter := repository.StockMovementFilter{Type: f.Type, Page: f.Page, Limit: f.Limit}
	if id, err := uuid.Parse(f.ProductID); err == nil {
		filter.ProductID = &id
	}
	if id, err := uuid.Parse(f.WarehouseID); err == nil {
		filter.WarehouseID = &id
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := &dto.StockMovementListResponse{
		Data:  make([]dto.StockMovementResponse, len(items)),
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
	}
	for i, m := range items {
		r := dto.StockMovementResponse{
			ID:          m.ID.String(),
			WarehouseID: m.WarehouseID.String(),
			ProductID:   m.ProductID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		}
		if m.Product != nil {
			r.ProductName = m.Product.Name
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			r.ReferenceID = &ref
		}
		resp.Data[i] = r
	}
	return resp, nil
}

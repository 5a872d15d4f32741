package repository

import (
	"context"
	"errors"

	"inventapro/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMovementFilter defines filters for listing stock movements.
type StockMovementFilter struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	Type        string
	Page        int
	Limit       int
}

// StockAdjustment describes one change to a warehouse balance.
type StockAdjustment struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	Delta       decimal.Decimal
	Type        string
	ReferenceID *uuid.UUID
}

type StockRepository interface {
	// AdjustTx creates the balance row on first use, applies Delta and
	// appends the matching movement.
	AdjustTx(tx *gorm.DB, adj StockAdjustment) (*model.StockMovement, error)
	List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error)
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepo{db: db}
}

func (r *stockRepo) AdjustTx(tx *gorm.DB, adj StockAdjustment) (*model.StockMovement, error) {
	var bal model.ManageStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("warehouse_id = ? AND product_id = ?", adj.WarehouseID, adj.ProductID).
		First(&bal).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		bal = model.ManageStock{
			ID:          uuid.New(),
			WarehouseID: adj.WarehouseID,
			ProductID:   adj.ProductID,
			Quantity:    decimal.Zero,
		}
		if err := tx.Create(&bal).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	before := bal.Quantity
	after := before.Add(adj.Delta)
	if err := tx.Model(&model.ManageStock{}).Where("id = ?", bal.ID).
		Update("quantity", gorm.Expr("quantity + ?", adj.Delta)).Error; err != nil {
		return nil, err
	}

	mov := &model.StockMovement{
		ID:          uuid.New(),
		WarehouseID: adj.WarehouseID,
		ProductID:   adj.ProductID,
		Type:        adj.Type,
		Quantity:    adj.Delta,
		StockBefore: before,
		StockAfter:  after,
		ReferenceID: adj.ReferenceID,
	}
	if err := tx.Create(mov).Error; err != nil {
		return nil, err
	}
	return mov, nil
}

func (r *stockRepo) List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		q = q.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movements []model.StockMovement
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error
	return movements, total, err
}

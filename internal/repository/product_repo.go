package repository

import (
	"context"

	"inventapro/internal/dto"
	"inventapro/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)

	// Used inside transactions: callers must pass the tx instance
	ExistsByCodeTx(tx *gorm.DB, code string) (bool, error)
	CreateMainProductTx(tx *gorm.DB, m *model.MainProduct) error
	CreateTx(tx *gorm.DB, p *model.Product) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Category").Preload("Brand").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Code != "" {
		q = q.Where("code = ?", filter.Code)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.CategoryID != "" {
		q = q.Where("product_category_id = ?", filter.CategoryID)
	}
	if filter.BrandID != "" {
		q = q.Where("brand_id = ?", filter.BrandID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Category").Preload("Brand").
		Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ExistsByCodeTx(tx *gorm.DB, code string) (bool, error) {
	var n int64
	err := tx.Model(&model.Product{}).Where("code = ?", code).Count(&n).Error
	return n > 0, err
}

func (r *productRepo) CreateMainProductTx(tx *gorm.DB, m *model.MainProduct) error {
	return tx.Create(m).Error
}

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

package repository

import (
	"inventapro/internal/model"

	"gorm.io/gorm"
)

// WarehouseRepository looks up warehouses and suppliers by their display name.
// Both are matched case-insensitively and are never created implicitly.
type WarehouseRepository interface {
	FindWarehouseByNameTx(tx *gorm.DB, name string) (*model.Warehouse, error)
	FindSupplierByNameTx(tx *gorm.DB, name string) (*model.Supplier, error)
}

type warehouseRepo struct{}

func NewWarehouseRepository() WarehouseRepository { return &warehouseRepo{} }

func (r *warehouseRepo) FindWarehouseByNameTx(tx *gorm.DB, name string) (*model.Warehouse, error) {
	var w model.Warehouse
	if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *warehouseRepo) FindSupplierByNameTx(tx *gorm.DB, name string) (*model.Supplier, error) {
	var s model.Supplier
	if err := tx.Where("LOWER(name) = LOWER(?)", name).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

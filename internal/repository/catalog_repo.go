package repository

import (
	"inventapro/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository resolves the lookup tables a product references.
// Categories and brands are created on demand; units never are.
type CatalogRepository interface {
	FirstOrCreateCategoryTx(tx *gorm.DB, name string) (*model.ProductCategory, error)
	FirstOrCreateBrandTx(tx *gorm.DB, name string) (*model.Brand, error)
	FindBaseUnitByNameTx(tx *gorm.DB, name string) (*model.BaseUnit, error)
	// FindUnitByNameTx only matches units defined over baseUnitID.
	FindUnitByNameTx(tx *gorm.DB, name string, baseUnitID uuid.UUID) (*model.Unit, error)
}

type catalogRepo struct{}

func NewCatalogRepository() CatalogRepository { return &catalogRepo{} }

func (r *catalogRepo) FirstOrCreateCategoryTx(tx *gorm.DB, name string) (*model.ProductCategory, error) {
	var c model.ProductCategory
	err := tx.Where(model.ProductCategory{Name: name}).FirstOrCreate(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepo) FirstOrCreateBrandTx(tx *gorm.DB, name string) (*model.Brand, error) {
	var b model.Brand
	err := tx.Where(model.Brand{Name: name}).FirstOrCreate(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *catalogRepo) FindBaseUnitByNameTx(tx *gorm.DB, name string) (*model.BaseUnit, error) {
	var u model.BaseUnit
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *catalogRepo) FindUnitByNameTx(tx *gorm.DB, name string, baseUnitID uuid.UUID) (*model.Unit, error) {
	var u model.Unit
	err := tx.Where("LOWER(name) = LOWER(?) AND base_unit = ?", name, baseUnitID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

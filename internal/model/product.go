package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable variant. Code is the business key and is globally unique.
type Product struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name              string           `gorm:"index;not null"`
	Code              string           `gorm:"uniqueIndex;not null"`
	ProductCode       string           `gorm:"not null"`
	ProductCategoryID uuid.UUID        `gorm:"type:uuid;not null;index"`
	BrandID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	BarcodeSymbol     BarcodeSymbol    `gorm:"not null"`
	ProductCost       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ProductPrice      decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ProductUnit       uuid.UUID        `gorm:"type:uuid;not null"` // base unit
	SaleUnit          uuid.UUID        `gorm:"type:uuid;not null"`
	PurchaseUnit      uuid.UUID        `gorm:"type:uuid;not null"`
	StockAlert        *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OrderTax          *decimal.Decimal `gorm:"type:decimal(5,2)"`
	TaxType           TaxType          `gorm:"not null"`
	Notes             *string
	MainProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Category    *ProductCategory `gorm:"foreignKey:ProductCategoryID"`
	Brand       *Brand           `gorm:"foreignKey:BrandID"`
	MainProduct *MainProduct     `gorm:"foreignKey:MainProductID"`
}

// BarcodeReference is the key fragment the barcode artifact is stored under.
func (p *Product) BarcodeReference() string {
	return "PR_" + p.ID.String()
}

// MainProduct groups variants. Imports always create a single-variant header.
type MainProduct struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string      `gorm:"not null"`
	Code        string      `gorm:"not null;index"`
	ProductUnit uuid.UUID   `gorm:"type:uuid;not null"`
	ProductType ProductType `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

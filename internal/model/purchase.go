package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is a stock receipt from a supplier into a warehouse.
type Purchase struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReferenceCode *string         `gorm:"uniqueIndex"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date          time.Time       `gorm:"type:date;not null"`
	Status        PurchaseStatus  `gorm:"not null"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items     []PurchaseItem `gorm:"foreignKey:PurchaseID"`
	Supplier  *Supplier      `gorm:"foreignKey:SupplierID"`
	Warehouse *Warehouse     `gorm:"foreignKey:WarehouseID"`
}

type PurchaseItem struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PurchaseID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductCost    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	NetUnitCost    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	TaxType        TaxType          `gorm:"not null"`
	TaxValue       *decimal.Decimal `gorm:"type:decimal(5,2)"`
	TaxAmount      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountType   DiscountType     `gorm:"not null"`
	DiscountValue  decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	PurchaseUnit   uuid.UUID        `gorm:"type:uuid;not null"`
	Quantity       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	SubTotal       decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

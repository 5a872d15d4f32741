package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManageStock is the on-hand balance of one product in one warehouse.
type ManageStock struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_warehouse_product"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_warehouse_product"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MovementPurchaseImport tags stock entering through a spreadsheet import purchase.
const MovementPurchaseImport = "purchase_import"

// StockMovement records every change applied to a ManageStock balance.
// Rows are append-only.
type StockMovement struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        string          `gorm:"not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,2);not null"` // positive = in, negative = out
	StockBefore decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	StockAfter  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ReferenceID *uuid.UUID      `gorm:"type:uuid"` // purchase id when applicable
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

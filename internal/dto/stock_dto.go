package dto

import "github.com/shopspring/decimal"

type StockMovementFilter struct {
	ProductID   string `form:"product_id"   validate:"omitempty,uuid"`
	WarehouseID string `form:"warehouse_id" validate:"omitempty,uuid"`
	Type        string `form:"type"`
	Page        int    `form:"page,default=1"    validate:"min=1"`
	Limit       int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type StockMovementResponse struct {
	ID          string          `json:"id"`
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	ReferenceID *string         `json:"reference_id"`
	CreatedAt   string          `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}

package dto

import "github.com/shopspring/decimal"

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Code       string `form:"code"`
	Name       string `form:"name"`
	CategoryID string `form:"category_id" validate:"omitempty,uuid"`
	BrandID    string `form:"brand_id"    validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Code          string           `json:"code"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand"`
	BarcodeSymbol string           `json:"barcode_symbol"`
	Cost          decimal.Decimal  `json:"cost"`
	Price         decimal.Decimal  `json:"price"`
	StockAlert    *decimal.Decimal `json:"stock_alert"`
	OrderTax      *decimal.Decimal `json:"order_tax"`
	TaxType       string           `json:"tax_type"`
	Notes         *string          `json:"notes"`
	BarcodeURL    string           `json:"barcode_url"`
	CreatedAt     string           `json:"created_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

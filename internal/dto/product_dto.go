package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	SKU           string          `json:"sku"             validate:"required,min=1,max=64"`
	Barcode       *string         `json:"barcode"         validate:"omitempty,min=4,max=32"`
	Name          string          `json:"name"            validate:"required,min=2,max=150"`
	Description   *string         `json:"description"     validate:"omitempty,max=1000"`
	Price         decimal.Decimal `json:"price"           validate:"gte=0"`
	CostPrice     decimal.Decimal `json:"cost_price"      validate:"gte=0"`
	StockQuantity int             `json:"stock_quantity"  validate:"min=0"`
	MinStockLevel int             `json:"min_stock_level" validate:"min=0"`
	CategoryID    string          `json:"category_id"     validate:"required,uuid"`
	SupplierID    string          `json:"supplier_id"     validate:"required,uuid"`
}

// UpdateProductRequest leaves stock untouched; stock only changes through
// sales and explicit adjustments so every change has a StockMovement.
type UpdateProductRequest struct {
	SKU           *string          `json:"sku"             validate:"omitempty,min=1,max=64"`
	Barcode       *string          `json:"barcode"         validate:"omitempty,min=4,max=32"`
	Name          *string          `json:"name"            validate:"omitempty,min=2,max=150"`
	Description   *string          `json:"description"     validate:"omitempty,max=1000"`
	Price         *decimal.Decimal `json:"price"           validate:"omitempty,gte=0"`
	CostPrice     *decimal.Decimal `json:"cost_price"      validate:"omitempty,gte=0"`
	MinStockLevel *int             `json:"min_stock_level" validate:"omitempty,min=0"`
	CategoryID    *string          `json:"category_id"     validate:"omitempty,uuid"`
	SupplierID    *string          `json:"supplier_id"     validate:"omitempty,uuid"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Type   string `json:"type"   validate:"omitempty,oneof=inbound adjustment"`
	Reason string `json:"reason" validate:"required,min=3,max=250"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search     string `form:"search"`
	Barcode    string `form:"barcode"`
	CategoryID string `form:"category_id"`
	SupplierID string `form:"supplier_id"`
	Active     string `form:"active"` // "true" (default) | "false" | "all"
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Barcode       *string         `json:"barcode"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	StockQuantity int             `json:"stock_quantity"`
	MinStockLevel int             `json:"min_stock_level"`
	LowStock      bool            `json:"low_stock"`
	CategoryID    string          `json:"category_id"`
	SupplierID    string          `json:"supplier_id"`
	IsActive      bool            `json:"is_active"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type PriceHistoryResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	OldPrice     decimal.Decimal `json:"old_price"`
	NewPrice     decimal.Decimal `json:"new_price"`
	OldCostPrice decimal.Decimal `json:"old_cost_price"`
	NewCostPrice decimal.Decimal `json:"new_cost_price"`
	CreatedAt    string          `json:"created_at"`
}

// PriceLookupResponse is returned by the public price check endpoint (no auth required).
type PriceLookupResponse struct {
	Name    string          `json:"name"`
	SKU     string          `json:"sku"`
	Price   decimal.Decimal `json:"price"`
	InStock int             `json:"in_stock"`
}

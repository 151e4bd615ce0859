package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	From       string `form:"from"` // YYYY-MM-DD, inclusive
	To         string `form:"to"`   // YYYY-MM-DD, inclusive
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleItemRequest is one line. UnitPrice overrides the product's list price when set.
type SaleItemRequest struct {
	ProductID   string           `json:"product_id"   validate:"required,uuid"`
	Quantity    int              `json:"quantity"     validate:"required,min=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price"   validate:"omitempty,gte=0"`
	DiscountPct decimal.Decimal  `json:"discount_pct" validate:"gte=0,lte=100"`
}

type CreateSaleRequest struct {
	CustomerID    string            `json:"customer_id"    validate:"required,uuid"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer mobile"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	// Discount is a sale-level amount taken off the subtotal before tax.
	Discount decimal.Decimal `json:"discount" validate:"gte=0"`
	// TaxRate is a percentage; nil uses the configured default.
	TaxRate *decimal.Decimal `json:"tax_rate" validate:"omitempty,gte=0,lte=100"`
	// PaidAmount defaults to the computed total.
	PaidAmount *decimal.Decimal `json:"paid_amount" validate:"omitempty,gte=0"`
	Notes      *string          `json:"notes"       validate:"omitempty,max=500"`
}

type CompleteSaleRequest struct {
	Payment decimal.Decimal `json:"payment" validate:"gte=0"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=250"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Total       decimal.Decimal `json:"total"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	InvoiceNumber string             `json:"invoice_number"`
	CustomerID    string             `json:"customer_id"`
	CustomerName  string             `json:"customer_name"`
	UserID        string             `json:"user_id"`
	CashierName   string             `json:"cashier_name"`
	PaymentMethod string             `json:"payment_method"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	PaidAmount    decimal.Decimal    `json:"paid_amount"`
	ChangeDue     decimal.Decimal    `json:"change_due"`
	Status        string             `json:"status"`
	Notes         *string            `json:"notes"`
	CreatedAt     string             `json:"created_at"`
}

package dto

import "github.com/shopspring/decimal"

// ReportRange is bound from ?from=YYYY-MM-DD&to=YYYY-MM-DD; both inclusive.
type ReportRange struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit int    `form:"limit,default=10" validate:"min=1,max=100"`
}

type SalesSummaryResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	SaleCount int64           `json:"sale_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Paid      decimal.Decimal `json:"paid"`
}

type TopProductResponse struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

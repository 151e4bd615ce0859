package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	Name    string  `json:"name"    validate:"required,min=2,max=150"`
	Email   *string `json:"email"   validate:"omitempty,email"`
	Phone   *string `json:"phone"   validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=250"`
}

type UpdateCustomerRequest struct {
	Name          *string          `json:"name"           validate:"omitempty,min=2,max=150"`
	Email         *string          `json:"email"          validate:"omitempty,email"`
	Phone         *string          `json:"phone"          validate:"omitempty,max=30"`
	Address       *string          `json:"address"        validate:"omitempty,max=250"`
	LoyaltyPoints *int             `json:"loyalty_points" validate:"omitempty,min=0"`
	CreditBalance *decimal.Decimal `json:"credit_balance"`
	IsActive      *bool            `json:"is_active"`
}

type CustomerFilter struct {
	Search string `form:"search"`
	Active string `form:"active"` // "true" (default) | "false" | "all"
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         *string         `json:"email"`
	Phone         *string         `json:"phone"`
	Address       *string         `json:"address"`
	LoyaltyPoints int             `json:"loyalty_points"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	IsActive      bool            `json:"is_active"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

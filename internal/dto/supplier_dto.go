package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateSupplierRequest struct {
	Name        string  `json:"name"         validate:"required,min=2,max=150"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=100"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Phone       *string `json:"phone"        validate:"omitempty,max=30"`
	Address     *string `json:"address"      validate:"omitempty,max=250"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name"         validate:"omitempty,min=2,max=150"`
	ContactName *string `json:"contact_name" validate:"omitempty,max=100"`
	Email       *string `json:"email"        validate:"omitempty,email"`
	Phone       *string `json:"phone"        validate:"omitempty,max=30"`
	Address     *string `json:"address"      validate:"omitempty,max=250"`
	IsActive    *bool   `json:"is_active"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SupplierResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ContactName *string `json:"contact_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	IsActive    bool    `json:"is_active"`
}

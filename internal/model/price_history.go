package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory records each price change of a product.
// Rows are immutable; they are never updated or deleted.
type PriceHistory struct {
	Base
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null"`
	OldPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	OldCostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NewCostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName keeps the table name singular-audit style ("price_history").
func (PriceHistory) TableName() string { return "price_history" }

package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable stock item. StockQuantity never drops below zero;
// the CHECK constraint backs the conditional decrement used by the sale flow.
type Product struct {
	Base
	SKU           string  `gorm:"column:sku;uniqueIndex;not null"`
	Barcode       *string `gorm:"uniqueIndex"`
	Name          string  `gorm:"index;not null"`
	Description   *string
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock_quantity >= 0"`
	MinStockLevel int             `gorm:"not null;default:0"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	IsActive      bool            `gorm:"not null;default:true"`

	Category *Category `gorm:"foreignKey:CategoryID"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

// IsLowStock reports whether the product reached its reorder threshold.
func (p *Product) IsLowStock() bool { return p.StockQuantity <= p.MinStockLevel }

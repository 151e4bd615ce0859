package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale statuses
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Sale is an invoice header. Totals are computed once at creation:
// Total = Subtotal - Discount + Tax. Only Status and PaidAmount change afterwards.
type Sale struct {
	Base
	InvoiceNumber string          `gorm:"uniqueIndex;not null"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes         *string

	Customer *Customer  `gorm:"foreignKey:CustomerID"`
	User     *User      `gorm:"foreignKey:UserID"`
	Items    []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// ChangeDue is the amount returned to the customer; zero while underpaid.
func (s *Sale) ChangeDue() decimal.Decimal {
	if s.PaidAmount.LessThan(s.Total) {
		return decimal.Zero
	}
	return s.PaidAmount.Sub(s.Total)
}

// SaleItem is one line of a sale. UnitPrice is a snapshot taken at sale time.
// Total = round2(Quantity * UnitPrice * (1 - DiscountPct/100)).
type SaleItem struct {
	Base
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

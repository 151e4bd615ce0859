package model

import "github.com/shopspring/decimal"

// Customer is the buyer a sale is billed to. LoyaltyPoints and CreditBalance
// are account fields maintained through CRUD only.
type Customer struct {
	Base
	Name          string  `gorm:"not null;index"`
	Email         *string `gorm:"uniqueIndex"`
	Phone         *string
	Address       *string
	LoyaltyPoints int             `gorm:"not null;default:0"`
	CreditBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

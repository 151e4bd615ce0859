package model

// Category classifies products.
type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;not null"`
	Description *string
	IsActive    bool `gorm:"not null;default:true"`
}

package model

// Supplier represents a vendor products are bought from.
type Supplier struct {
	Base
	Name        string `gorm:"not null"`
	ContactName *string
	Email       *string `gorm:"uniqueIndex"`
	Phone       *string
	Address     *string
	IsActive    bool `gorm:"not null;default:true"`

	Products []Product `gorm:"foreignKey:SupplierID"`
}

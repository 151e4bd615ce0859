package model

// InvoiceSequence is a named counter incremented under a row lock inside the
// sale transaction.
type InvoiceSequence struct {
	Name  string `gorm:"primaryKey;type:varchar(50)"`
	Value int64  `gorm:"not null;default:0"`
}

// SalesSequence is the counter used for invoice numbers.
const SalesSequence = "sales"

// All lists every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Supplier{},
		&Product{},
		&Customer{},
		&Sale{},
		&SaleItem{},
		&StockMovement{},
		&PriceHistory{},
		&InvoiceSequence{},
	}
}

package model

// Roles
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// User stores system accounts with role-based access.
type User struct {
	Base
	Username     string  `gorm:"uniqueIndex;not null"`
	FullName     string  `gorm:"not null"`
	Email        *string `gorm:"uniqueIndex"`
	PasswordHash string  `gorm:"not null"`
	Role         string  `gorm:"type:varchar(20);not null"`
	IsActive     bool    `gorm:"not null;default:true"`
}

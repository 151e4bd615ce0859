package infra

import (
	"context"
	"fmt"

	"inventrack/internal/config"
	"inventrack/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Default rows created by Seed. Other packages refer to them by name.
const (
	DefaultCategoryName = "General"
	DefaultSupplierName = "Default Supplier"
	WalkInCustomerName  = "Walk-in Customer"
)

// Seed inserts the baseline rows the application expects: the admin account,
// a default category and supplier, the walk-in customer and the invoice
// counter. It is idempotent and safe to call on every start.
func Seed(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedAdmin(tx, cfg); err != nil {
			return err
		}

		category := model.Category{Name: DefaultCategoryName, IsActive: true}
		if err := tx.Where("name = ?", category.Name).FirstOrCreate(&category).Error; err != nil {
			return fmt.Errorf("seed category: %w", err)
		}

		var supplierCount int64
		if err := tx.Model(&model.Supplier{}).Where("name = ?", DefaultSupplierName).Count(&supplierCount).Error; err != nil {
			return fmt.Errorf("seed supplier: %w", err)
		}
		if supplierCount == 0 {
			if err := tx.Create(&model.Supplier{Name: DefaultSupplierName, IsActive: true}).Error; err != nil {
				return fmt.Errorf("seed supplier: %w", err)
			}
		}

		var customerCount int64
		if err := tx.Model(&model.Customer{}).Where("name = ? AND email IS NULL", WalkInCustomerName).Count(&customerCount).Error; err != nil {
			return fmt.Errorf("seed customer: %w", err)
		}
		if customerCount == 0 {
			if err := tx.Create(&model.Customer{Name: WalkInCustomerName, IsActive: true}).Error; err != nil {
				return fmt.Errorf("seed customer: %w", err)
			}
		}

		seq := model.InvoiceSequence{Name: model.SalesSequence}
		if err := tx.Where("name = ?", seq.Name).FirstOrCreate(&seq).Error; err != nil {
			return fmt.Errorf("seed invoice sequence: %w", err)
		}
		return nil
	})
}

func seedAdmin(tx *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := tx.Model(&model.User{}).Where("username = ?", cfg.AdminUsername).Count(&count).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: hash password: %w", err)
	}
	admin := &model.User{
		Username:     cfg.AdminUsername,
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if cfg.AdminEmail != "" {
		email := cfg.AdminEmail
		admin.Email = &email
	}
	if err := tx.Create(admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info().Str("username", admin.Username).Msg("seed: admin user created")
	return nil
}

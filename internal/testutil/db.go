// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"strings"
	"testing"

	"inventrack/internal/config"
	"inventrack/internal/infra"
	"inventrack/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory SQLite database unique to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := infra.NewDatabase(infra.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Config returns a configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
		AdminUsername:      "admin",
		AdminPassword:      "admin12345",
		StoreName:          "Test Store",
	}
}

// Fixture is a seeded database with one cashier, customer, category and supplier.
type Fixture struct {
	DB       *gorm.DB
	Cashier  *model.User
	Customer *model.Customer
	Category *model.Category
	Supplier *model.Supplier
}

// NewFixture seeds the baseline rows plus a cashier and a named customer.
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	return NewFixtureFromDB(t, NewDB(t))
}

// NewFixtureFromDB seeds an already migrated database of any driver.
func NewFixtureFromDB(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()
	require.NoError(t, infra.Seed(context.Background(), db, Config()))

	f := &Fixture{DB: db}
	f.Cashier = &model.User{Username: "cashier", FullName: "Cashier", PasswordHash: "x", Role: model.RoleCashier, IsActive: true}
	require.NoError(t, db.Create(f.Cashier).Error)

	email := "alice@example.com"
	f.Customer = &model.Customer{Name: "Alice", Email: &email, IsActive: true}
	require.NoError(t, db.Create(f.Customer).Error)

	f.Category = &model.Category{}
	require.NoError(t, db.Where("name = ?", infra.DefaultCategoryName).First(f.Category).Error)
	f.Supplier = &model.Supplier{}
	require.NoError(t, db.Where("name = ?", infra.DefaultSupplierName).First(f.Supplier).Error)
	return f
}

// Product inserts an active product with the given stock and price.
func (f *Fixture) Product(t *testing.T, sku string, stock int, price string) *model.Product {
	t.Helper()
	p := &model.Product{
		SKU:           sku,
		Name:          "Product " + sku,
		Price:         decimal.RequireFromString(price),
		CostPrice:     decimal.Zero,
		StockQuantity: stock,
		CategoryID:    f.Category.ID,
		SupplierID:    f.Supplier.ID,
		IsActive:      true,
	}
	require.NoError(t, f.DB.Create(p).Error)
	return p
}

// Stock reloads the current stock of a product.
func (f *Fixture) Stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, f.DB.First(&p, "id = ?", id).Error)
	return p.StockQuantity
}

// Count returns the number of rows of m's table.
func (f *Fixture) Count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.DB.Model(m).Count(&n).Error)
	return n
}

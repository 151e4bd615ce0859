package repository

import (
	"context"
	"time"

	"inventrack/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesTotals aggregates non-cancelled sales in a period.
type SalesTotals struct {
	SaleCount int64
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	Paid      decimal.Decimal
}

// ProductSales is one row of the best-sellers report.
type ProductSales struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	Quantity  int64
	Revenue   decimal.Decimal
}

// ReportRepository runs the read-only aggregation queries. from is inclusive, to exclusive.
type ReportRepository interface {
	SalesTotals(ctx context.Context, from, to time.Time) (*SalesTotals, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) SalesTotals(ctx context.Context, from, to time.Time) (*SalesTotals, error) {
	var t SalesTotals
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(`COUNT(*) AS sale_count,
			COALESCE(SUM(subtotal), 0) AS subtotal,
			COALESCE(SUM(discount), 0) AS discount,
			COALESCE(SUM(tax), 0) AS tax,
			COALESCE(SUM(total), 0) AS total,
			COALESCE(SUM(paid_amount), 0) AS paid`).
		Where("status <> ? AND created_at >= ? AND created_at < ?", model.SaleStatusCancelled, from, to).
		Scan(&t).Error
	return &t, err
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	var rows []ProductSales
	err := r.db.WithContext(ctx).Table("sale_items AS si").
		Select(`si.product_id AS product_id, p.sku AS sku, p.name AS name,
			SUM(si.quantity) AS quantity, COALESCE(SUM(si.total), 0) AS revenue`).
		Joins("JOIN sales s ON s.id = si.sale_id").
		Joins("JOIN products p ON p.id = si.product_id").
		Where("s.status <> ? AND s.created_at >= ? AND s.created_at < ?", model.SaleStatusCancelled, from, to).
		Group("si.product_id, p.sku, p.name").
		Order("quantity DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

package repository

import (
	"context"
	"time"

	"inventrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleFilter is the parsed form of dto.SaleFilter.
type SaleFilter struct {
	From       *time.Time // inclusive
	To         *time.Time // exclusive
	Status     string
	CustomerID *uuid.UUID
	Page       int
	Limit      int
}

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	UpdatePaymentTx(tx *gorm.DB, id uuid.UUID, status string, paid interface{}) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

// Create inserts the sale header and its Items in one statement batch.
func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Omit("Customer", "User").Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *saleRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product").
		Preload("Customer").
		Preload("User").
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) UpdatePaymentTx(tx *gorm.DB, id uuid.UUID, status string, paid interface{}) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "paid_amount": paid}).Error
}

func (r *saleRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

// NextInvoiceNumber increments the sales counter inside tx. The UPDATE holds the
// row lock until tx ends, so concurrent sales receive distinct values.
func (r *saleRepo) NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	tx = tx.WithContext(ctx)
	bump := func() (int64, error) {
		res := tx.Model(&model.InvoiceSequence{}).
			Where("name = ?", model.SalesSequence).
			Update("value", gorm.Expr("value + 1"))
		return res.RowsAffected, res.Error
	}

	n, err := bump()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Counter row missing (bootstrap not run yet): create it and retry once.
		seq := model.InvoiceSequence{Name: model.SalesSequence}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return 0, err
		}
		if _, err := bump(); err != nil {
			return 0, err
		}
	}

	var seq model.InvoiceSequence
	if err := tx.First(&seq, "name = ?", model.SalesSequence).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

func (r *saleRepo) List(ctx context.Context, filter SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Product").
		Preload("Customer").
		Preload("User").
		Order("created_at DESC").
		Offset(offset(filter.Page, filter.Limit)).Limit(filter.Limit).
		Find(&sales).Error

	return sales, total, err
}

package repository

import (
	"context"

	"inventrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	ExistsByEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, active string) ([]model.Supplier, error)
	Update(ctx context.Context, s *model.Supplier) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) Create(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *supplierRepo) ExistsByEmail(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Supplier{}).
		Where("LOWER(email) = LOWER(?) AND id <> ?", email, exclude).Count(&n).Error
	return n > 0, err
}

func (r *supplierRepo) List(ctx context.Context, active string) ([]model.Supplier, error) {
	var out []model.Supplier
	err := activeScope(r.db.WithContext(ctx), active).Order("name ASC").Find(&out).Error
	return out, err
}

func (r *supplierRepo) Update(ctx context.Context, s *model.Supplier) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *supplierRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Supplier{}).Where("id = ?", id).Update("is_active", active).Error
}

func (r *supplierRepo) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("supplier_id = ? AND is_active = ?", id, true).Count(&n).Error
	return n, err
}

package repository

import (
	"context"

	"inventrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	// ExistsByName is case-insensitive and ignores the row identified by exclude.
	ExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	List(ctx context.Context, active string) ([]model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type categoryRepo struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepo{db: db} }

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *categoryRepo) ExistsByName(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, exclude).Count(&n).Error
	return n > 0, err
}

func (r *categoryRepo) List(ctx context.Context, active string) ([]model.Category, error) {
	var cats []model.Category
	err := activeScope(r.db.WithContext(ctx), active).Order("name ASC").Find(&cats).Error
	return cats, err
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Update("is_active", active).Error
}

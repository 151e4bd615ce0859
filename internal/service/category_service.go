package service

import (
	"context"
	"fmt"
	"strings"

	"inventrack/internal/apierror"
	"inventrack/internal/dto"
	"inventrack/internal/model"
	"inventrack/internal/repository"

	"github.com/google/uuid"
)

type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context, active string) ([]dto.CategoryResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}
	c := &model.Category{Name: name, Description: req.Description, IsActive: true}
	if err := s.repo.Create(ctx, c); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Conflict(apierror.CodeConflict, fmt.Sprintf("category %q already exists", name))
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return categoryToResponse(c), nil
}

func (s *categoryService) List(ctx context.Context, active string) ([]dto.CategoryResponse, error) {
	cats, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]dto.CategoryResponse, len(cats))
	for i := range cats {
		out[i] = *categoryToResponse(&cats[i])
	}
	return out, nil
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return categoryToResponse(c), nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.checkName(ctx, name, id); err != nil {
			return nil, err
		}
		c.Name = name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Conflict(apierror.CodeConflict, fmt.Sprintf("category %q already exists", c.Name))
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return categoryToResponse(c), nil
}

// Deactivate hides the category from pickers; existing products keep it.
func (s *categoryService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, false)
}

func (s *categoryService) find(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.CodeNotFound, "category not found")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (s *categoryService) checkName(ctx context.Context, name string, exclude uuid.UUID) error {
	taken, err := s.repo.ExistsByName(ctx, name, exclude)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return apierror.Conflict(apierror.CodeConflict, fmt.Sprintf("category %q already exists", name))
	}
	return nil
}

func categoryToResponse(c *model.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
	}
}

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
	"github.com/rs/zerolog/log"
)

type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	List(ctx context.Context, active string) ([]dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	email := trimOptional(req.Email)
	if err := s.checkEmail(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}
	sup := &model.Supplier{
		Name:        strings.TrimSpace(req.Name),
		ContactName: req.ContactName,
		Email:       email,
		Phone:       req.Phone,
		Address:     req.Address,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Conflict(apierror.CodeConflict, "a supplier with this email already exists")
		}
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context, active string) ([]dto.SupplierResponse, error) {
	rows, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	out := make([]dto.SupplierResponse, len(rows))
	for i := range rows {
		out[i] = *supplierToResponse(&rows[i])
	}
	return out, nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		sup.Name = strings.TrimSpace(*req.Name)
	}
	if req.ContactName != nil {
		sup.ContactName = req.ContactName
	}
	if req.Email != nil {
		sup.Email = trimOptional(req.Email)
		if err := s.checkEmail(ctx, sup.Email, id); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.Address != nil {
		sup.Address = req.Address
	}
	if req.IsActive != nil {
		sup.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, sup); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Conflict(apierror.CodeConflict, "a supplier with this email already exists")
		}
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return supplierToResponse(sup), nil
}

// Deactivate keeps the row for the products that still point at it.
func (s *supplierService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if n, err := s.repo.CountProducts(ctx, id); err == nil && n > 0 {
		log.Info().Str("supplier_id", id.String()).Int64("active_products", n).Msg("supplier deactivated with active products")
	}
	return s.repo.SetActive(ctx, id, false)
}

func (s *supplierService) find(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.CodeNotFound, "supplier not found")
		}
		return nil, fmt.Errorf("find supplier: %w", err)
	}
	return sup, nil
}

func (s *supplierService) checkEmail(ctx context.Context, email *string, exclude uuid.UUID) error {
	if email == nil {
		return nil
	}
	taken, err := s.repo.ExistsByEmail(ctx, *email, exclude)
	if err != nil {
		return fmt.Errorf("check supplier email: %w", err)
	}
	if taken {
		return apierror.Conflict(apierror.CodeConflict, fmt.Sprintf("email %s already belongs to a supplier", *email))
	}
	return nil
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		IsActive:    s.IsActive,
	}
}

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

type CustomerService interface {
	Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func (s *customerService) Create(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	email := trimOptional(req.Email)
	if err := s.checkEmail(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}
	c := &model.Customer{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    req.Phone,
		Address:  req.Address,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Conflict(apierror.CodeConflict, "a customer with this email already exists")
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit, 50, 200)
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	data := make([]dto.CustomerResponse, len(rows))
	for i := range rows {
		data[i] = *customerToResponse(&rows[i])
	}
	return &dto.CustomerListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return customerToResponse(c), nil
}

func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		c.Email = trimOptional(req.Email)
		if err := s.checkEmail(ctx, c.Email, id); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.LoyaltyPoints != nil {
		c.LoyaltyPoints = *req.LoyaltyPoints
	}
	if req.CreditBalance != nil {
		c.CreditBalance = *req.CreditBalance
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, c); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Conflict(apierror.CodeConflict, "a customer with this email already exists")
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customerToResponse(c), nil
}

func (s *customerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, false)
}

func (s *customerService) find(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.CodeCustomerNotFound, "customer not found")
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return c, nil
}

func (s *customerService) checkEmail(ctx context.Context, email *string, exclude uuid.UUID) error {
	if email == nil {
		return nil
	}
	taken, err := s.repo.ExistsByEmail(ctx, *email, exclude)
	if err != nil {
		return fmt.Errorf("check customer email: %w", err)
	}
	if taken {
		return apierror.Conflict(apierror.CodeConflict, fmt.Sprintf("email %s already belongs to a customer", *email))
	}
	return nil
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		LoyaltyPoints: c.LoyaltyPoints,
		CreditBalance: c.CreditBalance,
		IsActive:      c.IsActive,
	}
}

package service

import (
	"context"
	"fmt"

	"inventrack/internal/dto"
	"inventrack/internal/repository"
)

// InventoryService serves the read side of stock: movement history and
// low-stock alerts. Writes happen in the sale and product services.
type InventoryService interface {
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	Alerts(ctx context.Context) ([]dto.StockAlertResponse, error)
}

type inventoryService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
}

func NewInventoryService(productRepo repository.ProductRepository, movementRepo repository.StockMovementRepository) InventoryService {
	return &inventoryService{productRepo: productRepo, movementRepo: movementRepo}
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 100, 500)
	productID, err := parseOptionalID(filter.ProductID, "product_id")
	if err != nil {
		return nil, err
	}
	rows, total, err := s.movementRepo.List(ctx, repository.StockMovementFilter{
		ProductID: productID,
		Type:      filter.Type,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}

	data := make([]dto.MovementResponse, len(rows))
	for i, m := range rows {
		resp := dto.MovementResponse{
			ID:          m.ID.String(),
			ProductID:   m.ProductID.String(),
			UserID:      m.UserID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			CreatedAt:   formatTime(m.CreatedAt),
		}
		if m.Product != nil {
			resp.ProductName = m.Product.Name
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			resp.ReferenceID = &ref
		}
		data[i] = resp
	}
	return &dto.MovementListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *inventoryService) Alerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	products, err := s.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	out := make([]dto.StockAlertResponse, len(products))
	for i, p := range products {
		out[i] = dto.StockAlertResponse{
			ProductID:     p.ID.String(),
			SKU:           p.SKU,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			MinStockLevel: p.MinStockLevel,
			Shortfall:     p.MinStockLevel - p.StockQuantity,
		}
	}
	return out, nil
}

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
	"gorm.io/gorm"
)

// ProductService defines the business logic contract for products.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	// Delete removes a product that no sale ever referenced.
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, userID, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	PriceHistory(ctx context.Context, id uuid.UUID, limit int) ([]dto.PriceHistoryResponse, error)
}

type productService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	supplierRepo repository.SupplierRepository
	movementRepo repository.StockMovementRepository
	historyRepo  repository.PriceHistoryRepository
	prices       PriceCache // nil disables invalidation
}

func NewProductService(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	supplierRepo repository.SupplierRepository,
	movementRepo repository.StockMovementRepository,
	historyRepo repository.PriceHistoryRepository,
	prices PriceCache,
) ProductService {
	return &productService{
		repo:         repo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		movementRepo: movementRepo,
		historyRepo:  historyRepo,
		prices:       prices,
	}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.StockQuantity < 0 {
		return nil, apierror.BadRequest(apierror.CodeValidation, "stock_quantity must not be negative")
	}
	if req.Price.IsNegative() || req.CostPrice.IsNegative() {
		return nil, apierror.BadRequest(apierror.CodeValidation, "prices must not be negative")
	}
	if !atCents(req.Price) || !atCents(req.CostPrice) {
		return nil, apierror.BadRequest(apierror.CodeValidation, "prices must have at most 2 decimals")
	}
	categoryID, err := parseID(req.CategoryID, "category_id")
	if err != nil {
		return nil, err
	}
	supplierID, err := parseID(req.SupplierID, "supplier_id")
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, categoryID, supplierID); err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(req.SKU)
	barcode := trimOptional(req.Barcode)
	if err := s.checkUnique(ctx, sku, barcode, uuid.Nil); err != nil {
		return nil, err
	}

	p := &model.Product{
		SKU:           sku,
		Barcode:       barcode,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
		CategoryID:    categoryID,
		SupplierID:    supplierID,
		IsActive:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apierror.Conflict(apierror.CodeConflict, "a product with this SKU or barcode already exists")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return productToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.CodeProductNotFound, "product not found")
		}
		return nil, fmt.Errorf("find product by barcode: %w", err)
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit, 20, 100)
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	data := make([]dto.ProductResponse, len(products))
	for i := range products {
		data[i] = *productToResponse(&products[i])
	}
	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pages,
	}, nil
}

// Update applies a partial update. A price or cost change writes a PriceHistory
// row in the same transaction and drops the cached price check entry.
func (s *productService) Update(ctx context.Context, userID, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	oldBarcode := p.Barcode
	oldPrice, oldCost := p.Price, p.CostPrice

	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Barcode != nil {
		p.Barcode = trimOptional(req.Barcode)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apierror.BadRequest(apierror.CodeValidation, "price must not be negative")
		}
		if !atCents(*req.Price) {
			return nil, apierror.BadRequest(apierror.CodeValidation, "price must have at most 2 decimals")
		}
		p.Price = *req.Price
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, apierror.BadRequest(apierror.CodeValidation, "cost_price must not be negative")
		}
		if !atCents(*req.CostPrice) {
			return nil, apierror.BadRequest(apierror.CodeValidation, "cost_price must have at most 2 decimals")
		}
		p.CostPrice = *req.CostPrice
	}
	if req.MinStockLevel != nil {
		p.MinStockLevel = *req.MinStockLevel
	}
	if req.CategoryID != nil {
		if p.CategoryID, err = parseID(*req.CategoryID, "category_id"); err != nil {
			return nil, err
		}
	}
	if req.SupplierID != nil {
		if p.SupplierID, err = parseID(*req.SupplierID, "supplier_id"); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil || req.SupplierID != nil {
		if err := s.checkReferences(ctx, p.CategoryID, p.SupplierID); err != nil {
			return nil, err
		}
	}
	if err := s.checkUnique(ctx, p.SKU, p.Barcode, p.ID); err != nil {
		return nil, err
	}

	priceChanged := !oldPrice.Equal(p.Price) || !oldCost.Equal(p.CostPrice)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Stock is owned by sales and adjustments; never overwrite it from a stale read.
		if err := s.repo.UpdateDetailsTx(tx, p); err != nil {
			return err
		}
		if !priceChanged {
			return nil
		}
		return s.historyRepo.CreateTx(tx, &model.PriceHistory{
			ProductID:    p.ID,
			UserID:       userID,
			OldPrice:     oldPrice,
			NewPrice:     p.Price,
			OldCostPrice: oldCost,
			NewCostPrice: p.CostPrice,
		})
	})
	if txErr != nil {
		if repository.IsDuplicate(txErr) {
			return nil, apierror.Conflict(apierror.CodeConflict, "a product with this SKU or barcode already exists")
		}
		return nil, fmt.Errorf("update product: %w", txErr)
	}

	s.invalidatePrice(ctx, oldBarcode)
	s.invalidatePrice(ctx, p.Barcode)

	fresh, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(fresh), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *productService) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	s.invalidatePrice(ctx, p.Barcode)
	return nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.repo.CountSaleItems(ctx, id)
	if err != nil {
		return fmt.Errorf("count sale items: %w", err)
	}
	if n > 0 {
		return apierror.Conflict(apierror.CodeProductInUse,
			fmt.Sprintf("product %s appears on %d sale line(s); deactivate it instead", p.SKU, n))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return apierror.Conflict(apierror.CodeProductInUse, fmt.Sprintf("product %s is referenced; deactivate it instead", p.SKU))
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidatePrice(ctx, p.Barcode)
	return nil
}

// AdjustStock applies a signed manual correction and records the movement.
func (s *productService) AdjustStock(ctx context.Context, userID, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	if req.Delta == 0 {
		return nil, apierror.BadRequest(apierror.CodeValidation, "delta must not be zero")
	}
	movementType := req.Type
	if movementType == "" {
		movementType = model.MovementAdjustment
	}
	if movementType != model.MovementAdjustment && movementType != model.MovementInbound {
		return nil, apierror.BadRequest(apierror.CodeValidation, "type must be inbound or adjustment")
	}
	if movementType == model.MovementInbound && req.Delta < 0 {
		return nil, apierror.BadRequest(apierror.CodeValidation, "inbound movements must add stock")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound(apierror.CodeProductNotFound, "product not found")
			}
			return err
		}
		ok, err := s.repo.AdjustStockTx(tx, id, req.Delta)
		if err != nil {
			return err
		}
		if !ok {
			return insufficientStock(p.SKU, p.StockQuantity, -req.Delta)
		}
		after, err := s.repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		return s.movementRepo.CreateTx(tx, &model.StockMovement{
			ProductID:   id,
			UserID:      userID,
			Type:        movementType,
			Quantity:    req.Delta,
			StockBefore: after.StockQuantity - req.Delta,
			StockAfter:  after.StockQuantity,
			Reason:      req.Reason,
		})
	})
	if txErr != nil {
		if _, ok := apierror.As(txErr); ok {
			return nil, txErr
		}
		return nil, fmt.Errorf("adjust stock: %w", txErr)
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidatePrice(ctx, p.Barcode)
	return productToResponse(p), nil
}

func (s *productService) PriceHistory(ctx context.Context, id uuid.UUID, limit int) ([]dto.PriceHistoryResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.historyRepo.ListByProduct(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	out := make([]dto.PriceHistoryResponse, len(rows))
	for i, h := range rows {
		out[i] = dto.PriceHistoryResponse{
			ID:           h.ID.String(),
			UserID:       h.UserID.String(),
			OldPrice:     h.OldPrice,
			NewPrice:     h.NewPrice,
			OldCostPrice: h.OldCostPrice,
			NewCostPrice: h.NewCostPrice,
			CreatedAt:    formatTime(h.CreatedAt),
		}
	}
	return out, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (s *productService) find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.CodeProductNotFound, "product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *productService) checkReferences(ctx context.Context, categoryID, supplierID uuid.UUID) error {
	cat, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound(apierror.CodeNotFound, "category not found")
		}
		return fmt.Errorf("find category: %w", err)
	}
	if !cat.IsActive {
		return apierror.BadRequest(apierror.CodeCategoryInactive, fmt.Sprintf("category %s is inactive", cat.Name))
	}
	sup, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound(apierror.CodeNotFound, "supplier not found")
		}
		return fmt.Errorf("find supplier: %w", err)
	}
	if !sup.IsActive {
		return apierror.BadRequest(apierror.CodeSupplierInactive, fmt.Sprintf("supplier %s is inactive", sup.Name))
	}
	return nil
}

func (s *productService) checkUnique(ctx context.Context, sku string, barcode *string, exclude uuid.UUID) error {
	taken, err := s.repo.ExistsBySKU(ctx, sku, exclude)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return apierror.Conflict(apierror.CodeConflict, fmt.Sprintf("SKU %s already exists", sku))
	}
	if barcode == nil {
		return nil
	}
	taken, err = s.repo.ExistsByBarcode(ctx, *barcode, exclude)
	if err != nil {
		return fmt.Errorf("check barcode: %w", err)
	}
	if taken {
		return apierror.Conflict(apierror.CodeConflict, fmt.Sprintf("barcode %s already exists", *barcode))
	}
	return nil
}

func (s *productService) invalidatePrice(ctx context.Context, barcode *string) {
	if s.prices == nil || barcode == nil {
		return
	}
	s.prices.Invalidate(ctx, *barcode)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		CostPrice:     p.CostPrice,
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		LowStock:      p.IsLowStock(),
		CategoryID:    p.CategoryID.String(),
		SupplierID:    p.SupplierID.String(),
		IsActive:      p.IsActive,
	}
}

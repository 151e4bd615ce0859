package service

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"inventrack/internal/apierror"
	"inventrack/internal/dto"
	"inventrack/internal/infra"
	"inventrack/internal/model"
	"inventrack/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var paymentMethods = map[string]bool{"cash": true, "card": true, "transfer": true, "mobile": true}

// ReceiptQueue accepts receipt e-mail jobs after a sale commits.
type ReceiptQueue interface {
	EnqueueReceipt(ctx context.Context, saleID uuid.UUID, email string) error
}

type SaleService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Complete(ctx context.Context, id uuid.UUID, payment decimal.Decimal) (*dto.SaleResponse, error)
	Cancel(ctx context.Context, userID, id uuid.UUID, reason string) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	// Receipt renders the sale as a PDF and returns it with a file name.
	Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type saleService struct {
	repo         repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	movementRepo repository.StockMovementRepository
	receipts     ReceiptQueue // nil disables receipt e-mails
	prices       PriceCache   // nil disables price check invalidation
	taxRate      decimal.Decimal
	storeName    string
	now          func() time.Time
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	movementRepo repository.StockMovementRepository,
	receipts ReceiptQueue,
	prices PriceCache,
	defaultTaxRate decimal.Decimal,
	storeName string,
) SaleService {
	return &saleService{
		repo:         repo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		movementRepo: movementRepo,
		receipts:     receipts,
		prices:       prices,
		taxRate:      defaultTaxRate,
		storeName:    storeName,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// saleLine is a request line resolved against the product row.
type saleLine struct {
	position  int
	productID uuid.UUID
	quantity  int
	unitPrice decimal.Decimal
	discount  decimal.Decimal
	total     decimal.Decimal
}

// ── Create ────────────────────────────────────────────────────────────────────
// Everything below runs in one transaction:
//   1. customer exists and is active
//   2. every product exists, is active and has enough stock
//   3. totals (pricing.go)
//   4. allocate invoice number, insert sale + items
//   5. conditional stock decrement per line in product-id order, one outbound movement each
// The receipt job is enqueued only after COMMIT.

func (s *saleService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	customerID, err := parseID(req.CustomerID, "customer_id")
	if err != nil {
		return nil, err
	}
	if err := validateSaleRequest(req); err != nil {
		return nil, err
	}

	taxRate := s.taxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	var saleID uuid.UUID
	var customerEmail string

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		customer, err := s.customerRepo.FindByIDTx(tx, customerID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apierror.NotFound(apierror.CodeCustomerNotFound, "customer not found")
			}
			return fmt.Errorf("load customer: %w", err)
		}
		if !customer.IsActive {
			return apierror.BadRequest(apierror.CodeCustomerInactive, fmt.Sprintf("customer %s is inactive", customer.Name))
		}
		if customer.Email != nil {
			customerEmail = *customer.Email
		}

		lines, err := s.resolveLines(tx, req.Items)
		if err != nil {
			return err
		}

		lineTotals := make([]decimal.Decimal, len(lines))
		for i, l := range lines {
			lineTotals[i] = l.total
		}
		totals, ok := ComputeTotals(lineTotals, req.Discount, taxRate)
		if !ok {
			return apierror.BadRequest(apierror.CodeDiscountExceedsSubtotal,
				fmt.Sprintf("discount %s exceeds subtotal %s", req.Discount.StringFixed(2), totals.Subtotal.StringFixed(2)))
		}

		paid := totals.Total
		if req.PaidAmount != nil {
			paid = *req.PaidAmount
		}
		status := model.SaleStatusPending
		if paid.GreaterThanOrEqual(totals.Total) {
			status = model.SaleStatusCompleted
		}

		seq, err := s.repo.NextInvoiceNumber(ctx, tx)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}

		sale := &model.Sale{
			InvoiceNumber: formatInvoiceNumber(s.now(), seq),
			CustomerID:    customerID,
			UserID:        userID,
			PaymentMethod: req.PaymentMethod,
			Subtotal:      totals.Subtotal,
			Discount:      totals.Discount,
			TaxRate:       totals.TaxRate,
			Tax:           totals.Tax,
			Total:         totals.Total,
			PaidAmount:    paid,
			Status:        status,
			Notes:         req.Notes,
		}
		for _, l := range lines {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID:   l.productID,
				Position:    l.position,
				Quantity:    l.quantity,
				UnitPrice:   l.unitPrice,
				DiscountPct: l.discount,
				Total:       l.total,
			})
		}
		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}
		saleID = sale.ID

		// Ascending product id keeps lock order identical across concurrent sales.
		ordered := make([]saleLine, len(lines))
		copy(ordered, lines)
		sort.SliceStable(ordered, func(i, j int) bool {
			return bytes.Compare(ordered[i].productID[:], ordered[j].productID[:]) < 0
		})

		for _, l := range ordered {
			done, err := s.productRepo.DecrementStockTx(tx, l.productID, l.quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !done {
				return s.classifyDecrementFailure(tx, l)
			}
			after, err := s.productRepo.FindByIDTx(tx, l.productID)
			if err != nil {
				return fmt.Errorf("reload product: %w", err)
			}
			ref := sale.ID
			mov := &model.StockMovement{
				ProductID:   l.productID,
				UserID:      userID,
				Type:        model.MovementOutbound,
				Quantity:    -l.quantity,
				StockBefore: after.StockQuantity + l.quantity,
				StockAfter:  after.StockQuantity,
				Reason:      "sale " + sale.InvoiceNumber,
				ReferenceID: &ref,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return fmt.Errorf("insert stock movement: %w", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	sale, err := s.repo.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("reload sale: %w", err)
	}

	s.invalidatePrices(ctx, sale)

	// Best effort: the sale is already committed.
	if s.receipts != nil && customerEmail != "" {
		if err := s.receipts.EnqueueReceipt(ctx, sale.ID, customerEmail); err != nil {
			log.Warn().Err(err).Str("sale_id", sale.ID.String()).Msg("sale: failed to enqueue receipt e-mail")
		}
	}

	return saleToResponse(sale), nil
}

func validateSaleRequest(req dto.CreateSaleRequest) error {
	if len(req.Items) == 0 {
		return apierror.BadRequest(apierror.CodeValidation, "a sale needs at least one item")
	}
	if !paymentMethods[req.PaymentMethod] {
		return apierror.BadRequest(apierror.CodeValidation, fmt.Sprintf("unsupported payment method %q", req.PaymentMethod))
	}
	if req.Discount.IsNegative() {
		return apierror.BadRequest(apierror.CodeValidation, "discount must not be negative")
	}
	if !atCents(req.Discount) {
		return apierror.BadRequest(apierror.CodeValidation, "discount must have at most 2 decimals")
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(hundred) {
			return apierror.BadRequest(apierror.CodeValidation, "tax_rate must be between 0 and 100")
		}
		if !atCents(*req.TaxRate) {
			return apierror.BadRequest(apierror.CodeValidation, "tax_rate must have at most 2 decimals")
		}
	}
	if req.PaidAmount != nil {
		if req.PaidAmount.IsNegative() {
			return apierror.BadRequest(apierror.CodeValidation, "paid_amount must not be negative")
		}
		if !atCents(*req.PaidAmount) {
			return apierror.BadRequest(apierror.CodeValidation, "paid_amount must have at most 2 decimals")
		}
	}
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return apierror.BadRequest(apierror.CodeValidation, fmt.Sprintf("items[%d]: quantity must be a positive integer", i))
		}
		if it.DiscountPct.IsNegative() || it.DiscountPct.GreaterThan(hundred) {
			return apierror.BadRequest(apierror.CodeValidation, fmt.Sprintf("items[%d]: discount_pct must be between 0 and 100", i))
		}
		if !atCents(it.DiscountPct) {
			return apierror.BadRequest(apierror.CodeValidation, fmt.Sprintf("items[%d]: discount_pct must have at most 2 decimals", i))
		}
		if it.UnitPrice != nil {
			if it.UnitPrice.IsNegative() {
				return apierror.BadRequest(apierror.CodeValidation, fmt.Sprintf("items[%d]: unit_price must not be negative", i))
			}
			if !atCents(*it.UnitPrice) {
				return apierror.BadRequest(apierror.CodeValidation, fmt.Sprintf("items[%d]: unit_price must have at most 2 decimals", i))
			}
		}
	}
	return nil
}

// resolveLines loads every product inside tx and prices each line. The stock
// check sums quantities per product so repeated lines are judged together.
func (s *saleService) resolveLines(tx *gorm.DB, items []dto.SaleItemRequest) ([]saleLine, error) {
	lines := make([]saleLine, 0, len(items))
	requested := make(map[uuid.UUID]int, len(items))
	products := make(map[uuid.UUID]*model.Product, len(items))

	for i, it := range items {
		pid, err := parseID(it.ProductID, fmt.Sprintf("items[%d].product_id", i))
		if err != nil {
			return nil, err
		}
		p, ok := products[pid]
		if !ok {
			p, err = s.productRepo.FindByIDTx(tx, pid)
			if err != nil {
				if repository.IsNotFound(err) {
					return nil, apierror.NotFound(apierror.CodeProductNotFound, fmt.Sprintf("product %s not found", pid))
				}
				return nil, fmt.Errorf("load product: %w", err)
			}
			products[pid] = p
		}
		if !p.IsActive {
			return nil, apierror.BadRequest(apierror.CodeProductInactive, fmt.Sprintf("product %s is inactive", p.SKU))
		}

		requested[pid] += it.Quantity
		if requested[pid] > p.StockQuantity {
			return nil, insufficientStock(p.SKU, p.StockQuantity, requested[pid])
		}

		unit := p.Price
		if it.UnitPrice != nil {
			unit = *it.UnitPrice
		}
		lines = append(lines, saleLine{
			position:  i + 1,
			productID: pid,
			quantity:  it.Quantity,
			unitPrice: unit,
			discount:  it.DiscountPct,
			total:     LineTotal(it.Quantity, unit, it.DiscountPct),
		})
	}
	return lines, nil
}

// classifyDecrementFailure re-reads the product after a zero-row conditional
// UPDATE to tell a concurrent deactivation apart from a stock race.
func (s *saleService) classifyDecrementFailure(tx *gorm.DB, l saleLine) error {
	p, err := s.productRepo.FindByIDTx(tx, l.productID)
	if err != nil {
		if repository.IsNotFound(err) {
			return apierror.NotFound(apierror.CodeProductNotFound, fmt.Sprintf("product %s not found", l.productID))
		}
		return fmt.Errorf("reload product: %w", err)
	}
	if !p.IsActive {
		return apierror.BadRequest(apierror.CodeProductInactive, fmt.Sprintf("product %s is inactive", p.SKU))
	}
	return insufficientStock(p.SKU, p.StockQuantity, l.quantity)
}

func insufficientStock(sku string, available, requested int) error {
	return apierror.BadRequest(apierror.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s: available %d, requested %d", sku, available, requested))
}

// formatInvoiceNumber renders INV-YYYYMMDD-NNNNNN. The counter is global, the
// date only aids reading.
func formatInvoiceNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%06d", at.UTC().Format("20060102"), seq)
}

// ── Complete / Cancel ─────────────────────────────────────────────────────────

func (s *saleService) Complete(ctx context.Context, id uuid.UUID, payment decimal.Decimal) (*dto.SaleResponse, error) {
	if payment.IsNegative() || !atCents(payment) {
		return nil, apierror.BadRequest(apierror.CodeValidation, "payment must be a non-negative amount with at most 2 decimals")
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.findTx(tx, id)
		if err != nil {
			return err
		}
		if sale.Status != model.SaleStatusPending {
			return apierror.BadRequest(apierror.CodeInvalidStatus, fmt.Sprintf("sale %s is %s, only pending sales can be completed", sale.InvoiceNumber, sale.Status))
		}
		paid := sale.PaidAmount.Add(payment)
		if paid.LessThan(sale.Total) {
			return apierror.BadRequest(apierror.CodePaymentInsufficient,
				fmt.Sprintf("payment leaves %s outstanding", sale.Total.Sub(paid).StringFixed(2)))
		}
		return s.repo.UpdatePaymentTx(tx, id, model.SaleStatusCompleted, paid)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Get(ctx, id)
}

// Cancel marks the sale cancelled and returns every line to stock with an
// inbound movement referencing the sale.
func (s *saleService) Cancel(ctx context.Context, userID, id uuid.UUID, reason string) (*dto.SaleResponse, error) {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.findTx(tx, id)
		if err != nil {
			return err
		}
		if sale.Status == model.SaleStatusCancelled {
			return apierror.BadRequest(apierror.CodeInvalidStatus, fmt.Sprintf("sale %s is already cancelled", sale.InvoiceNumber))
		}

		items := make([]model.SaleItem, len(sale.Items))
		copy(items, sale.Items)
		sort.SliceStable(items, func(i, j int) bool {
			return bytes.Compare(items[i].ProductID[:], items[j].ProductID[:]) < 0
		})

		for _, item := range items {
			if _, err := s.productRepo.AdjustStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
			after, err := s.productRepo.FindByIDTx(tx, item.ProductID)
			if err != nil {
				return fmt.Errorf("reload product: %w", err)
			}
			ref := sale.ID
			mov := &model.StockMovement{
				ProductID:   item.ProductID,
				UserID:      userID,
				Type:        model.MovementInbound,
				Quantity:    item.Quantity,
				StockBefore: after.StockQuantity - item.Quantity,
				StockAfter:  after.StockQuantity,
				Reason:      fmt.Sprintf("cancel %s: %s", sale.InvoiceNumber, reason),
				ReferenceID: &ref,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return fmt.Errorf("insert stock movement: %w", err)
			}
		}
		return s.repo.UpdateStatusTx(tx, id, model.SaleStatusCancelled)
	})
	if txErr != nil {
		return nil, txErr
	}
	sale, err := s.findTx(s.repo.DB().WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	s.invalidatePrices(ctx, sale)
	return saleToResponse(sale), nil
}

// invalidatePrices drops the cached price checks of every product the sale
// moved, so the public lookup reports the committed stock.
func (s *saleService) invalidatePrices(ctx context.Context, sale *model.Sale) {
	if s.prices == nil {
		return
	}
	seen := make(map[string]bool, len(sale.Items))
	var barcodes []string
	for _, it := range sale.Items {
		if it.Product == nil || it.Product.Barcode == nil || seen[*it.Product.Barcode] {
			continue
		}
		seen[*it.Product.Barcode] = true
		barcodes = append(barcodes, *it.Product.Barcode)
	}
	s.prices.Invalidate(ctx, barcodes...)
}

func (s *saleService) findTx(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.repo.FindByIDTx(tx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apierror.NotFound(apierror.CodeNotFound, "sale not found")
		}
		return nil, fmt.Errorf("load sale: %w", err)
	}
	return sale, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.findTx(s.repo.DB().WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 50, 200)
	from, to, err := parseDateRange(filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	customerID, err := parseOptionalID(filter.CustomerID, "customer_id")
	if err != nil {
		return nil, err
	}
	switch filter.Status {
	case "", "all", model.SaleStatusPending, model.SaleStatusCompleted, model.SaleStatusCancelled:
	default:
		return nil, apierror.BadRequest(apierror.CodeBadRequest, fmt.Sprintf("unknown status %q", filter.Status))
	}

	sales, total, err := s.repo.List(ctx, repository.SaleFilter{
		From:       from,
		To:         to,
		Status:     filter.Status,
		CustomerID: customerID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	data := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		data[i] = *saleToResponse(&sales[i])
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *saleService) Receipt(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	sale, err := s.findTx(s.repo.DB().WithContext(ctx), id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := infra.GenerateReceiptPDF(sale, s.storeName)
	if err != nil {
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}
	return pdf, infra.ReceiptFileName(sale), nil
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            s.ID.String(),
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID.String(),
		UserID:        s.UserID.String(),
		PaymentMethod: s.PaymentMethod,
		Items:         make([]dto.SaleItemResponse, len(s.Items)),
		Subtotal:      s.Subtotal,
		Discount:      s.Discount,
		TaxRate:       s.TaxRate,
		Tax:           s.Tax,
		Total:         s.Total,
		PaidAmount:    s.PaidAmount,
		ChangeDue:     s.ChangeDue(),
		Status:        s.Status,
		Notes:         s.Notes,
		CreatedAt:     formatTime(s.CreatedAt),
	}
	if s.Customer != nil {
		resp.CustomerName = s.Customer.Name
	}
	if s.User != nil {
		resp.CashierName = s.User.FullName
	}
	for i, it := range s.Items {
		item := dto.SaleItemResponse{
			ProductID:   it.ProductID.String(),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			DiscountPct: it.DiscountPct,
			Total:       it.Total,
		}
		if it.Product != nil {
			item.ProductName = it.Product.Name
			item.SKU = it.Product.SKU
		}
		resp.Items[i] = item
	}
	return resp
}

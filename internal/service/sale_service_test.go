package service_test

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"inventrack/internal/apierror"
	"inventrack/internal/dto"
	"inventrack/internal/model"
	"inventrack/internal/repository"
	"inventrack/internal/service"
	"inventrack/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeQueue struct {
	mu    sync.Mutex
	calls []string
}

func (q *fakeQueue) EnqueueReceipt(_ context.Context, _ uuid.UUID, email string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, email)
	return nil
}

type fakePriceCache struct {
	mu       sync.Mutex
	barcodes []string
}

func (c *fakePriceCache) Invalidate(_ context.Context, barcodes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.barcodes = append(c.barcodes, barcodes...)
}

func newSaleService(f *testutil.Fixture, q service.ReceiptQueue) service.SaleService {
	return newSaleServiceWith(f, repository.NewProductRepository(f.DB), q, nil)
}

func newSaleServiceWith(f *testutil.Fixture, products repository.ProductRepository, q service.ReceiptQueue, prices service.PriceCache) service.SaleService {
	return service.NewSaleService(
		repository.NewSaleRepository(f.DB),
		products,
		repository.NewCustomerRepository(f.DB),
		repository.NewStockMovementRepository(f.DB),
		q,
		prices,
		decimal.Zero,
		"Test Store",
	)
}

func saleReq(customer uuid.UUID, items ...dto.SaleItemRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{CustomerID: customer.String(), PaymentMethod: "cash", Items: items}
}

func line(p *model.Product, qty int) dto.SaleItemRequest {
	return dto.SaleItemRequest{ProductID: p.ID.String(), Quantity: qty}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateSale_DecrementsStockAndRecordsMovement(t *testing.T) {
	f := testutil.NewFixture(t)
	queue := &fakeQueue{}
	svc := newSaleService(f, queue)
	p := f.Product(t, "SKU-1", 5, "10.00")

	resp, err := svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(p, 3)))
	require.NoError(t, err)

	assert.Equal(t, 2, f.Stock(t, p.ID))
	assert.Equal(t, model.SaleStatusCompleted, resp.Status)
	assert.True(t, dec("30.00").Equal(resp.Total))
	assert.True(t, resp.ChangeDue.IsZero())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "SKU-1", resp.Items[0].SKU)
	assert.Equal(t, f.Customer.Name, resp.CustomerName)

	var movements []model.StockMovement
	require.NoError(t, f.DB.Where("product_id = ?", p.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, -3, movements[0].Quantity)
	assert.Equal(t, model.MovementOutbound, movements[0].Type)
	assert.Equal(t, 5, movements[0].StockBefore)
	assert.Equal(t, 2, movements[0].StockAfter)
	require.NotNil(t, movements[0].ReferenceID)
	assert.Equal(t, resp.ID, movements[0].ReferenceID.String())

	assert.Equal(t, []string{"alice@example.com"}, queue.calls)
}

func TestCreateSale_InsufficientStockLeavesNoTrace(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	ok := f.Product(t, "SKU-OK", 10, "1.00")
	short := f.Product(t, "SKU-SHORT", 2, "4.00")

	_, err := svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(ok, 1), line(short, 3)))
	require.Error(t, err)
	assert.True(t, apierror.HasCode(err, apierror.CodeInsufficientStock))

	assert.Equal(t, 10, f.Stock(t, ok.ID))
	assert.Equal(t, 2, f.Stock(t, short.ID))
	assert.Zero(t, f.Count(t, &model.Sale{}))
	assert.Zero(t, f.Count(t, &model.SaleItem{}))
	assert.Zero(t, f.Count(t, &model.StockMovement{}))
}

func TestCreateSale_RepeatedLinesShareStock(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 5, "2.00")

	_, err := svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(p, 3), line(p, 3)))
	assert.True(t, apierror.HasCode(err, apierror.CodeInsufficientStock))
	assert.Equal(t, 5, f.Stock(t, p.ID))

	resp, err := svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(p, 2), line(p, 3)))
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 0, f.Stock(t, p.ID))
	assert.Equal(t, int64(2), f.Count(t, &model.StockMovement{}))
}

func TestCreateSale_RejectsInvalidReferences(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 5, "1.00")
	ctx := context.Background()

	_, err := svc.Create(ctx, f.Cashier.ID, saleReq(uuid.New(), line(p, 1)))
	assert.True(t, apierror.HasCode(err, apierror.CodeCustomerNotFound))

	_, err = svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, dto.SaleItemRequest{ProductID: uuid.NewString(), Quantity: 1}))
	assert.True(t, apierror.HasCode(err, apierror.CodeProductNotFound))

	require.NoError(t, f.DB.Model(p).Update("is_active", false).Error)
	_, err = svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(p, 1)))
	assert.True(t, apierror.HasCode(err, apierror.CodeProductInactive))

	require.NoError(t, f.DB.Model(f.Customer).Update("is_active", false).Error)
	_, err = svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(p, 1)))
	assert.True(t, apierror.HasCode(err, apierror.CodeCustomerInactive))

	_, err = svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(p, 0)))
	assert.True(t, apierror.HasCode(err, apierror.CodeValidation))

	assert.Equal(t, 5, f.Stock(t, p.ID))
	assert.Zero(t, f.Count(t, &model.Sale{}))
}

func TestCreateSale_ItemTotalsSumToSubtotal(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	a := f.Product(t, "A", 10, "9.99")
	b := f.Product(t, "B", 10, "0.05")
	c := f.Product(t, "C", 10, "1.10")

	rate := dec("21")
	req := saleReq(f.Customer.ID,
		dto.SaleItemRequest{ProductID: a.ID.String(), Quantity: 2, DiscountPct: dec("10")},
		dto.SaleItemRequest{ProductID: b.ID.String(), Quantity: 1, DiscountPct: dec("50")},
		dto.SaleItemRequest{ProductID: c.ID.String(), Quantity: 3, DiscountPct: dec("12.5")},
	)
	req.Discount = dec("1.00")
	req.TaxRate = &rate

	resp, err := svc.Create(context.Background(), f.Cashier.ID, req)
	require.NoError(t, err)

	var items []model.SaleItem
	require.NoError(t, f.DB.Where("sale_id = ?", resp.ID).Find(&items).Error)
	require.Len(t, items, 3)
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total)
	}

	var sale model.Sale
	require.NoError(t, f.DB.First(&sale, "id = ?", resp.ID).Error)
	assert.True(t, sum.Equal(sale.Subtotal), "items %s subtotal %s", sum, sale.Subtotal)
	assert.True(t, dec("20.90").Equal(sale.Subtotal)) // 17.98 + 0.03 + 2.89
	assert.True(t, dec("4.18").Equal(sale.Tax))       // 19.90 * 0.21 = 4.179
	assert.True(t, sale.Total.Equal(sale.Subtotal.Sub(sale.Discount).Add(sale.Tax)))
}

func TestCreateSale_UnitPriceOverrideAndDiscountLimit(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 5, "10.00")
	ctx := context.Background()

	override := dec("7.50")
	resp, err := svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID,
		dto.SaleItemRequest{ProductID: p.ID.String(), Quantity: 2, UnitPrice: &override}))
	require.NoError(t, err)
	assert.True(t, dec("15.00").Equal(resp.Subtotal))

	req := saleReq(f.Customer.ID, line(p, 1))
	req.Discount = dec("10.01")
	_, err = svc.Create(ctx, f.Cashier.ID, req)
	assert.True(t, apierror.HasCode(err, apierror.CodeDiscountExceedsSubtotal))
	assert.Equal(t, 3, f.Stock(t, p.ID))
}

func TestCreateSale_ConcurrentSalesNeverOversell(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 5, "1.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(p, 3)))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apierror.HasCode(err, apierror.CodeInsufficientStock), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, f.Stock(t, p.ID))
	assert.Equal(t, int64(1), f.Count(t, &model.Sale{}))
	assert.Equal(t, int64(1), f.Count(t, &model.StockMovement{}))
}

func TestCreateSale_InvoiceNumbersAreUnique(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 10, "1.00")

	pattern := regexp.MustCompile(`^INV-\d{8}-\d{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		resp, err := svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(p, 1)))
		require.NoError(t, err)
		assert.Regexp(t, pattern, resp.InvoiceNumber)
		assert.False(t, seen[resp.InvoiceNumber], "duplicate %s", resp.InvoiceNumber)
		seen[resp.InvoiceNumber] = true
	}
}

func TestCompleteSale(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 5, "10.00")
	ctx := context.Background()

	req := saleReq(f.Customer.ID, line(p, 3))
	paid := dec("5.00")
	req.PaidAmount = &paid
	resp, err := svc.Create(ctx, f.Cashier.ID, req)
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusPending, resp.Status)
	id := uuid.MustParse(resp.ID)

	_, err = svc.Complete(ctx, id, dec("10.00"))
	assert.True(t, apierror.HasCode(err, apierror.CodePaymentInsufficient))

	done, err := svc.Complete(ctx, id, dec("30.00"))
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusCompleted, done.Status)
	assert.True(t, dec("35.00").Equal(done.PaidAmount))
	assert.True(t, dec("5.00").Equal(done.ChangeDue))

	_, err = svc.Complete(ctx, id, dec("1.00"))
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidStatus))
}

func TestCancelSale_RestoresStock(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 5, "10.00")
	ctx := context.Background()

	resp, err := svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(p, 3)))
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	cancelled, err := svc.Cancel(ctx, f.Cashier.ID, id, "customer returned goods")
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.Stock(t, p.ID))

	var inbound model.StockMovement
	require.NoError(t, f.DB.Where("type = ?", model.MovementInbound).First(&inbound).Error)
	assert.Equal(t, 3, inbound.Quantity)
	assert.Equal(t, 2, inbound.StockBefore)
	assert.Equal(t, 5, inbound.StockAfter)

	_, err = svc.Cancel(ctx, f.Cashier.ID, id, "again")
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidStatus))
}

func TestListSalesAndReceipt(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-1", 10, "2.50")
	ctx := context.Background()

	first, err := svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(p, 1)))
	require.NoError(t, err)
	_, err = svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(p, 2)))
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, f.Cashier.ID, uuid.MustParse(first.ID), "mistake")
	require.NoError(t, err)

	all, err := svc.List(ctx, dto.SaleFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	cancelled, err := svc.List(ctx, dto.SaleFilter{Status: model.SaleStatusCancelled, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, cancelled.Data, 1)
	assert.Equal(t, first.ID, cancelled.Data[0].ID)

	_, err = svc.List(ctx, dto.SaleFilter{From: "yesterday"})
	assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))

	pdf, name, err := svc.Receipt(ctx, uuid.MustParse(first.ID))
	require.NoError(t, err)
	assert.Equal(t, "receipt_"+first.InvoiceNumber+".pdf", name)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	_, err = svc.Get(ctx, uuid.New())
	assert.True(t, apierror.HasCode(err, apierror.CodeNotFound))
}

func TestCreateSale_RejectsAmountsFinerThanCents(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "SKU-C", 10, "10.00")
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(r *dto.CreateSaleRequest)
	}{
		{"discount", func(r *dto.CreateSaleRequest) { r.Discount = dec("0.005") }},
		{"unit price", func(r *dto.CreateSaleRequest) { u := dec("1.005"); r.Items[0].UnitPrice = &u }},
		{"paid amount", func(r *dto.CreateSaleRequest) { v := dec("10.001"); r.PaidAmount = &v }},
		{"tax rate", func(r *dto.CreateSaleRequest) { v := dec("21.005"); r.TaxRate = &v }},
		{"line discount", func(r *dto.CreateSaleRequest) { r.Items[0].DiscountPct = dec("12.125") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := saleReq(f.Customer.ID, line(p, 3))
			tc.mutate(&req)
			_, err := svc.Create(ctx, f.Cashier.ID, req)
			assert.True(t, apierror.HasCode(err, apierror.CodeValidation), "got %v", err)
		})
	}
	assert.Equal(t, int64(0), f.Count(t, &model.Sale{}))
	assert.Equal(t, 10, f.Stock(t, p.ID))

	// Trailing zeros are still whole cents
	req := saleReq(f.Customer.ID, line(p, 1))
	req.Discount = dec("1.000")
	sale, err := svc.Create(ctx, f.Cashier.ID, req)
	require.NoError(t, err)
	assert.True(t, dec("9.00").Equal(sale.Total), "total %s", sale.Total)

	zero := decimal.Zero
	pendingReq := saleReq(f.Customer.ID, line(p, 1))
	pendingReq.PaidAmount = &zero
	pending, err := svc.Create(ctx, f.Cashier.ID, pendingReq)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, uuid.MustParse(pending.ID), dec("10.001"))
	assert.True(t, apierror.HasCode(err, apierror.CodeValidation), "got %v", err)
}

// racingProducts simulates another transaction winning the row between the
// stock check and the conditional decrement.
type racingProducts struct {
	repository.ProductRepository
	race func(tx *gorm.DB, id uuid.UUID) error
}

func (r *racingProducts) DecrementStockTx(tx *gorm.DB, id uuid.UUID, _ int) (bool, error) {
	return false, r.race(tx, id)
}

func TestCreateSale_LostDecrementIsClassified(t *testing.T) {
	cases := []struct {
		name string
		race func(tx *gorm.DB, id uuid.UUID) error
		code string
	}{
		{"stock taken", func(tx *gorm.DB, id uuid.UUID) error {
			return tx.Model(&model.Product{}).Where("id = ?", id).Update("stock_quantity", 1).Error
		}, apierror.CodeInsufficientStock},
		{"deactivated", func(tx *gorm.DB, id uuid.UUID) error {
			return tx.Model(&model.Product{}).Where("id = ?", id).Update("is_active", false).Error
		}, apierror.CodeProductInactive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			products := &racingProducts{ProductRepository: repository.NewProductRepository(f.DB), race: tc.race}
			svc := newSaleServiceWith(f, products, nil, nil)
			p := f.Product(t, "SKU-R", 5, "2.00")

			_, err := svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(p, 3)))
			assert.True(t, apierror.HasCode(err, tc.code), "got %v", err)

			assert.Equal(t, 5, f.Stock(t, p.ID))
			assert.Equal(t, int64(0), f.Count(t, &model.Sale{}))
			assert.Equal(t, int64(0), f.Count(t, &model.SaleItem{}))
			assert.Equal(t, int64(0), f.Count(t, &model.StockMovement{}))
		})
	}
}

func TestSale_InvalidatesPriceChecksAfterCommit(t *testing.T) {
	f := testutil.NewFixture(t)
	prices := &fakePriceCache{}
	svc := newSaleServiceWith(f, repository.NewProductRepository(f.DB), nil, prices)
	withBarcode := f.Product(t, "SKU-B", 5, "1.50")
	require.NoError(t, f.DB.Model(withBarcode).Update("barcode", "7790009990001").Error)
	noBarcode := f.Product(t, "SKU-N", 5, "1.50")
	ctx := context.Background()

	_, err := svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(withBarcode, 6)))
	require.Error(t, err)
	assert.Empty(t, prices.barcodes, "a rolled back sale must not touch the cache")

	sale, err := svc.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(withBarcode, 1), line(noBarcode, 1), line(withBarcode, 1)))
	require.NoError(t, err)
	assert.Equal(t, []string{"7790009990001"}, prices.barcodes)

	_, err = svc.Cancel(ctx, f.Cashier.ID, uuid.MustParse(sale.ID), "wrong customer")
	require.NoError(t, err)
	assert.Equal(t, []string{"7790009990001", "7790009990001"}, prices.barcodes)
}

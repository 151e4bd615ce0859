package service_test

import (
	"context"
	"testing"

	"inventrack/internal/apierror"
	"inventrack/internal/dto"
	"inventrack/internal/model"
	"inventrack/internal/repository"
	"inventrack/internal/service"
	"inventrack/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductService(f *testutil.Fixture) service.ProductService {
	return service.NewProductService(
		repository.NewProductRepository(f.DB),
		repository.NewCategoryRepository(f.DB),
		repository.NewSupplierRepository(f.DB),
		repository.NewStockMovementRepository(f.DB),
		repository.NewPriceHistoryRepository(f.DB),
		nil,
	)
}

func productReq(f *testutil.Fixture, sku string) dto.CreateProductRequest {
	return dto.CreateProductRequest{
		SKU:           sku,
		Name:          "Widget " + sku,
		Price:         dec("4.99"),
		CostPrice:     dec("2.10"),
		StockQuantity: 8,
		MinStockLevel: 3,
		CategoryID:    f.Category.ID.String(),
		SupplierID:    f.Supplier.ID.String(),
	}
}

func TestCreateProduct(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newProductService(f)
	ctx := context.Background()

	barcode := "7790001112223"
	req := productReq(f, " SKU-100 ")
	req.Barcode = &barcode
	p, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "SKU-100", p.SKU)
	assert.True(t, p.IsActive)
	assert.False(t, p.LowStock)

	_, err = svc.Create(ctx, productReq(f, "SKU-100"))
	assert.True(t, apierror.HasCode(err, apierror.CodeConflict))

	dup := productReq(f, "SKU-101")
	dup.Barcode = &barcode
	_, err = svc.Create(ctx, dup)
	assert.True(t, apierror.HasCode(err, apierror.CodeConflict))

	byCode, err := svc.GetByBarcode(ctx, barcode)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byCode.ID)
}

func TestCreateProduct_RejectsBadReferences(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newProductService(f)
	ctx := context.Background()

	req := productReq(f, "SKU-1")
	req.CategoryID = uuid.NewString()
	_, err := svc.Create(ctx, req)
	assert.True(t, apierror.HasCode(err, apierror.CodeNotFound))

	require.NoError(t, f.DB.Model(f.Supplier).Update("is_active", false).Error)
	_, err = svc.Create(ctx, productReq(f, "SKU-2"))
	assert.True(t, apierror.HasCode(err, apierror.CodeSupplierInactive))

	req = productReq(f, "SKU-3")
	req.CategoryID = "not-a-uuid"
	_, err = svc.Create(ctx, req)
	assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))
}

func TestUpdateProduct_RecordsPriceHistory(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newProductService(f)
	ctx := context.Background()
	p := f.Product(t, "SKU-1", 4, "10.00")

	name := "Renamed"
	_, err := svc.Update(ctx, f.Cashier.ID, p.ID, dto.UpdateProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Zero(t, f.Count(t, &model.PriceHistory{}))

	price := dec("12.50")
	updated, err := svc.Update(ctx, f.Cashier.ID, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 4, updated.StockQuantity)

	history, err := svc.PriceHistory(ctx, p.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, dec("10.00").Equal(history[0].OldPrice))
	assert.True(t, price.Equal(history[0].NewPrice))
	assert.Equal(t, f.Cashier.ID.String(), history[0].UserID)
}

func TestAdjustStock(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newProductService(f)
	ctx := context.Background()
	p := f.Product(t, "SKU-1", 4, "1.00")

	resp, err := svc.AdjustStock(ctx, f.Cashier.ID, p.ID, dto.AdjustStockRequest{Delta: 6, Type: model.MovementInbound, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.StockQuantity)

	_, err = svc.AdjustStock(ctx, f.Cashier.ID, p.ID, dto.AdjustStockRequest{Delta: -11, Reason: "shrinkage"})
	assert.True(t, apierror.HasCode(err, apierror.CodeInsufficientStock))
	assert.Equal(t, 10, f.Stock(t, p.ID))

	_, err = svc.AdjustStock(ctx, f.Cashier.ID, p.ID, dto.AdjustStockRequest{Delta: -2, Type: model.MovementInbound, Reason: "wrong"})
	assert.True(t, apierror.HasCode(err, apierror.CodeValidation))

	resp, err = svc.AdjustStock(ctx, f.Cashier.ID, p.ID, dto.AdjustStockRequest{Delta: -7, Reason: "count"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.StockQuantity)

	assert.Equal(t, int64(2), f.Count(t, &model.StockMovement{}))
	var adj model.StockMovement
	require.NoError(t, f.DB.Where("type = ?", model.MovementAdjustment).First(&adj).Error)
	assert.Equal(t, -7, adj.Quantity)
	assert.Equal(t, 10, adj.StockBefore)
	assert.Equal(t, 3, adj.StockAfter)
}

func TestDeleteProduct(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newProductService(f)
	sales := newSaleService(f, nil)
	ctx := context.Background()

	unused := f.Product(t, "UNUSED", 1, "1.00")
	require.NoError(t, svc.Delete(ctx, unused.ID))
	_, err := svc.GetByID(ctx, unused.ID)
	assert.True(t, apierror.HasCode(err, apierror.CodeProductNotFound))

	sold := f.Product(t, "SOLD", 5, "1.00")
	_, err = sales.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(sold, 1)))
	require.NoError(t, err)

	err = svc.Delete(ctx, sold.ID)
	assert.True(t, apierror.HasCode(err, apierror.CodeProductInUse))
	require.NoError(t, svc.Deactivate(ctx, sold.ID))

	got, err := svc.GetByID(ctx, sold.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestListProducts_LowStockFilter(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newProductService(f)
	ctx := context.Background()

	low := f.Product(t, "LOW", 1, "1.00")
	require.NoError(t, f.DB.Model(low).Update("min_stock_level", 5).Error)
	f.Product(t, "FULL", 50, "1.00")

	list, err := svc.List(ctx, dto.ProductFilter{LowStock: true, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "LOW", list.Data[0].SKU)
	assert.True(t, list.Data[0].LowStock)
}

func TestProductPrices_RejectFinerThanCents(t *testing.T) {
	f := testutil.NewFixture(t)
	svc := newProductService(f)
	ctx := context.Background()

	req := productReq(f, "SKU-P1")
	req.Price = dec("1.005")
	_, err := svc.Create(ctx, req)
	assert.True(t, apierror.HasCode(err, apierror.CodeValidation), "got %v", err)

	req = productReq(f, "SKU-P1")
	req.CostPrice = dec("0.333")
	_, err = svc.Create(ctx, req)
	assert.True(t, apierror.HasCode(err, apierror.CodeValidation), "got %v", err)
	assert.Zero(t, f.Count(t, &model.Product{}))

	p := f.Product(t, "SKU-P2", 1, "3.00")
	price := dec("3.999")
	_, err = svc.Update(ctx, f.Cashier.ID, p.ID, dto.UpdateProductRequest{Price: &price})
	assert.True(t, apierror.HasCode(err, apierror.CodeValidation), "got %v", err)
	cost := dec("1.0001")
	_, err = svc.Update(ctx, f.Cashier.ID, p.ID, dto.UpdateProductRequest{CostPrice: &cost})
	assert.True(t, apierror.HasCode(err, apierror.CodeValidation), "got %v", err)
	assert.Zero(t, f.Count(t, &model.PriceHistory{}))
}

func TestAdjustStock_InvalidatesPriceCheck(t *testing.T) {
	f := testutil.NewFixture(t)
	prices := &fakePriceCache{}
	svc := service.NewProductService(
		repository.NewProductRepository(f.DB),
		repository.NewCategoryRepository(f.DB),
		repository.NewSupplierRepository(f.DB),
		repository.NewStockMovementRepository(f.DB),
		repository.NewPriceHistoryRepository(f.DB),
		prices,
	)
	p := f.Product(t, "SKU-AC", 2, "1.00")
	require.NoError(t, f.DB.Model(p).Update("barcode", "7790007770007").Error)

	_, err := svc.AdjustStock(context.Background(), f.Cashier.ID, p.ID, dto.AdjustStockRequest{Delta: 3, Type: model.MovementInbound, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, []string{"7790007770007"}, prices.barcodes)
}

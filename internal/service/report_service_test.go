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

func TestReports_ExcludeCancelledSales(t *testing.T) {
	f := testutil.NewFixture(t)
	sales := newSaleService(f, nil)
	reports := service.NewReportService(repository.NewReportRepository(f.DB))
	ctx := context.Background()

	a := f.Product(t, "A", 20, "2.50")
	b := f.Product(t, "B", 20, "10.00")

	_, err := sales.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(a, 4), line(b, 1)))
	require.NoError(t, err)
	_, err = sales.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(a, 2)))
	require.NoError(t, err)
	cancelled, err := sales.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(b, 5)))
	require.NoError(t, err)
	_, err = sales.Cancel(ctx, f.Cashier.ID, uuid.MustParse(cancelled.ID), "void")
	require.NoError(t, err)

	summary, err := reports.SalesSummary(ctx, dto.ReportRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.SaleCount)
	assert.True(t, dec("25.00").Equal(summary.Total), "total %s", summary.Total)
	assert.Equal(t, summary.From, summary.To)

	top, err := reports.TopProducts(ctx, dto.ReportRange{Limit: 5})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "A", top[0].SKU)
	assert.Equal(t, int64(6), top[0].Quantity)
	assert.True(t, dec("15.00").Equal(top[0].Revenue))
	assert.Equal(t, int64(1), top[1].Quantity)

	_, err = reports.SalesSummary(ctx, dto.ReportRange{From: "2026-02-10", To: "2026-02-01"})
	assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))
}

func TestInventory_MovementsAndAlerts(t *testing.T) {
	f := testutil.NewFixture(t)
	sales := newSaleService(f, nil)
	inventory := service.NewInventoryService(repository.NewProductRepository(f.DB), repository.NewStockMovementRepository(f.DB))
	ctx := context.Background()

	p := f.Product(t, "A", 6, "1.00")
	require.NoError(t, f.DB.Model(p).Update("min_stock_level", 3).Error)
	other := f.Product(t, "B", 6, "1.00")

	_, err := sales.Create(ctx, f.Cashier.ID, saleReq(f.Customer.ID, line(p, 5), line(other, 1)))
	require.NoError(t, err)

	list, err := inventory.ListMovements(ctx, dto.MovementFilter{ProductID: p.ID.String()})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, model.MovementOutbound, list.Data[0].Type)
	assert.Equal(t, "Product A", list.Data[0].ProductName)
	assert.NotNil(t, list.Data[0].ReferenceID)

	_, err = inventory.ListMovements(ctx, dto.MovementFilter{ProductID: "nope"})
	assert.True(t, apierror.HasCode(err, apierror.CodeBadRequest))

	alerts, err := inventory.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "A", alerts[0].SKU)
	assert.Equal(t, 2, alerts[0].Shortfall)
}

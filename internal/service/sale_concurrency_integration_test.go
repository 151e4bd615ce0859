//go:build integration

// Concurrency tests against a real PostgreSQL via testcontainers.
// Run with: go test -tags integration ./internal/service/... -run Postgres -v

package service_test

import (
	"context"
	"sync"
	"testing"

	"inventrack/internal/apierror"
	"inventrack/internal/dto"
	"inventrack/internal/infra"
	"inventrack/internal/model"
	"inventrack/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func postgresFixture(t *testing.T) *testutil.Fixture {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("inventrack_test"),
		tcPostgres.WithUsername("inventrack"),
		tcPostgres.WithPassword("inventrack"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	url, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(infra.DriverPostgres, url)
	require.NoError(t, err)
	return testutil.NewFixtureFromDB(t, db)
}

func TestPostgres_ConcurrentSalesNeverOversell(t *testing.T) {
	f := postgresFixture(t)
	svc := newSaleService(f, nil)
	p := f.Product(t, "HOT", 5, "1.00")

	const buyers = 12
	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, line(p, 1)))
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
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, f.Stock(t, p.ID))
	assert.Equal(t, int64(5), f.Count(t, &model.Sale{}))
	assert.Equal(t, int64(5), f.Count(t, &model.StockMovement{}))
}

func TestPostgres_OpposingLineOrderDoesNotDeadlock(t *testing.T) {
	f := postgresFixture(t)
	svc := newSaleService(f, nil)
	a := f.Product(t, "A", 100, "1.00")
	b := f.Product(t, "B", 100, "1.00")

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items := []dto.SaleItemRequest{line(a, 1), line(b, 1)}
			if i%2 == 1 {
				items[0], items[1] = items[1], items[0]
			}
			_, errs[i] = svc.Create(context.Background(), f.Cashier.ID, saleReq(f.Customer.ID, items...))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 80, f.Stock(t, a.ID))
	assert.Equal(t, 80, f.Stock(t, b.ID))

	var invoices []string
	require.NoError(t, f.DB.Model(&model.Sale{}).Pluck("invoice_number", &invoices).Error)
	seen := make(map[string]bool, len(invoices))
	for _, n := range invoices {
		assert.False(t, seen[n], "duplicate invoice %s", n)
		seen[n] = true
	}
}

package infra_test

import (
	"context"
	"testing"

	"inventrack/internal/infra"
	"inventrack/internal/model"
	"inventrack/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	ctx := context.Background()

	require.NoError(t, infra.Seed(ctx, db, cfg))
	require.NoError(t, infra.Seed(ctx, db, cfg))

	count := func(m interface{}, where string, args ...interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(m).Where(where, args...).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 1, count(&model.User{}, "username = ?", cfg.AdminUsername))
	assert.EqualValues(t, 1, count(&model.Category{}, "name = ?", infra.DefaultCategoryName))
	assert.EqualValues(t, 1, count(&model.Supplier{}, "name = ?", infra.DefaultSupplierName))
	assert.EqualValues(t, 1, count(&model.Customer{}, "name = ?", infra.WalkInCustomerName))
	assert.EqualValues(t, 1, count(&model.InvoiceSequence{}, "name = ?", model.SalesSequence))

	var admin model.User
	require.NoError(t, db.Where("username = ?", cfg.AdminUsername).First(&admin).Error)
	assert.Equal(t, model.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(cfg.AdminPassword)))
	cost, err := bcrypt.Cost([]byte(admin.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, infra.BcryptCost, cost)
}

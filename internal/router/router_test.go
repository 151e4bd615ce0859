package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventrack/internal/apierror"
	"inventrack/internal/model"
	"inventrack/internal/router"
	"inventrack/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	engine *gin.Engine
	fx     *testutil.Fixture
	token  string // admin access token
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fx := testutil.NewFixture(t)
	cfg := testutil.Config()
	env := &testEnv{engine: router.New(cfg, fx.DB, nil), fx: fx}

	w := env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": cfg.AdminUsername, "password": cfg.AdminPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decode(t, w, &login)
	require.NotEmpty(t, login.AccessToken)
	env.token = login.AccessToken
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierror.APIError
	decode(t, w, &body)
	return body.Code
}

func mustUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func cashierToken(t *testing.T, fx *testutil.Fixture) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": fx.Cashier.ID.String(), "username": fx.Cashier.Username, "role": model.RoleCashier,
		"token_type": "access", "exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testutil.Config().JWTSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) createProduct(t *testing.T, sku, barcode string, stock int) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/products", map[string]interface{}{
		"sku":            sku,
		"barcode":        barcode,
		"name":           "Cola 500ml",
		"price":          "10.00",
		"cost_price":     "6.00",
		"stock_quantity": stock,
		"category_id":    e.fx.Category.ID.String(),
		"supplier_id":    e.fx.Supplier.ID.String(),
	}, e.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p struct {
		ID string `json:"id"`
	}
	decode(t, w, &p)
	return p.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestFullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)
	productID := env.createProduct(t, "COLA-500", "7790001000001", 5)

	w := env.do(t, http.MethodPost, "/v1/sales", map[string]interface{}{
		"customer_id":    env.fx.Customer.ID.String(),
		"payment_method": "cash",
		"items":          []map[string]interface{}{{"product_id": productID, "quantity": 3}},
		"paid_amount":    "50.00",
	}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sale struct {
		ID            string          `json:"id"`
		InvoiceNumber string          `json:"invoice_number"`
		Total         decimal.Decimal `json:"total"`
		ChangeDue     decimal.Decimal `json:"change_due"`
		Status        string          `json:"status"`
		Items         []struct {
			Quantity int `json:"quantity"`
		} `json:"items"`
	}
	decode(t, w, &sale)
	assert.Equal(t, model.SaleStatusCompleted, sale.Status)
	assert.True(t, decimal.RequireFromString("30").Equal(sale.Total))
	assert.True(t, decimal.RequireFromString("20").Equal(sale.ChangeDue))
	require.Len(t, sale.Items, 1)

	w = env.do(t, http.MethodGet, "/v1/products/"+productID, nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	var product struct {
		StockQuantity int `json:"stock_quantity"`
	}
	decode(t, w, &product)
	assert.Equal(t, 2, product.StockQuantity)

	// Second sale oversells: rejected, stock untouched
	w = env.do(t, http.MethodPost, "/v1/sales", map[string]interface{}{
		"customer_id":    env.fx.Customer.ID.String(),
		"payment_method": "card",
		"items":          []map[string]interface{}{{"product_id": productID, "quantity": 3}},
	}, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierror.CodeInsufficientStock, errorCode(t, w))
	assert.Equal(t, 2, env.fx.Stock(t, mustUUID(t, productID)))

	w = env.do(t, http.MethodGet, "/v1/sales/"+sale.ID+"/receipt", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), sale.InvoiceNumber)

	w = env.do(t, http.MethodGet, "/v1/inventory/movements?product_id="+productID, nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	var movements struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &movements)
	assert.Equal(t, int64(1), movements.Total)

	w = env.do(t, http.MethodDelete, "/v1/products/"+productID, nil, env.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierror.CodeProductInUse, errorCode(t, w))

	w = env.do(t, http.MethodPost, "/v1/sales/"+sale.ID+"/cancel", map[string]string{"reason": "customer changed mind"}, env.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 5, env.fx.Stock(t, mustUUID(t, productID)))
}

func TestValidationErrors(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/sales", map[string]interface{}{
		"customer_id":    env.fx.Customer.ID.String(),
		"payment_method": "barter",
		"items":          []map[string]interface{}{{"product_id": env.fx.Customer.ID.String(), "quantity": 0}},
	}, env.token)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body apierror.ValidationError
	decode(t, w, &body)
	assert.Equal(t, apierror.CodeValidation, body.Code)
	assert.Equal(t, "oneof", body.Fields["payment_method"])
	assert.Equal(t, "required", body.Fields["items[0].quantity"])

	req := httptest.NewRequest(http.MethodPost, "/v1/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+env.token)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apierror.CodeBadRequest, errorCode(t, rec))

	w = env.do(t, http.MethodGet, "/v1/products/not-a-uuid", nil, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthorization(t *testing.T) {
	env := setupTestEnv(t)
	cashier := cashierToken(t, env.fx)

	w := env.do(t, http.MethodGet, "/v1/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/v1/products", nil, cashier)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/products", map[string]string{"sku": "X"}, cashier)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/v1/users", nil, cashier)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/v1/auth/me", nil, cashier)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Username string `json:"username"`
	}
	decode(t, w, &me)
	assert.Equal(t, "cashier", me.Username)

	w = env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierror.CodeUnauthorized, errorCode(t, w))
}

func TestPublicEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	env.createProduct(t, "COLA-500", "7790001000001", 7)

	w := env.do(t, http.MethodGet, "/v1/price/7790001000001", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var price struct {
		SKU     string `json:"sku"`
		InStock int    `json:"in_stock"`
	}
	decode(t, w, &price)
	assert.Equal(t, "COLA-500", price.SKU)
	assert.Equal(t, 7, price.InStock)

	w = env.do(t, http.MethodGet, "/v1/price/0000", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apierror.CodeProductNotFound, errorCode(t, w))

	w = env.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	decode(t, w, &health)
	assert.Equal(t, "connected", health["db"])
	assert.Equal(t, "disabled", health["redis"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

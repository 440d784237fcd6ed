package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"medimart/m/domain"
	"medimart/m/internal/api"
	"medimart/m/internal/ledger"
	"medimart/m/internal/migrations"
	"medimart/m/internal/seed"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	migrations.Run(db)
	seed.EnsureDefaultUsers(db)
	handler := api.New(db, "test_secret", ledger.New(db, "johrabad"))
	return handler.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler, name, password string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"name": name, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createProductHTTP(t *testing.T, router http.Handler, token string, inventory int64) domain.Product {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/products", token, map[string]any{
		"name":          "Paracetamol",
		"category":      "tablet",
		"description":   "Pain relief",
		"price_primary": 100,
		"price_other":   150,
		"inventory":     inventory,
		"batch_no":      "B-1021",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Product domain.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Product
}

func TestLoginAndVerify(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router, "admin", "thisisadmin")

	rec := doJSON(t, router, http.MethodGet, "/auth/verify", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"name": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	router := setupRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSupplierCannotManageProducts(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router, "supplier", "thisissupplier")
	rec := doJSON(t, router, http.MethodPost, "/products", token, map[string]any{
		"name": "X", "category": "c", "description": "d",
		"price_primary": 1, "price_other": 2, "inventory": 1, "batch_no": "b",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaleAndDebtFlow(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router, "admin", "thisisadmin")
	product := createProductHTTP(t, router, token, 10)

	// Partial sale opens a debt.
	rec := doJSON(t, router, http.MethodPost, "/sales", token, map[string]any{
		"items":         []map[string]any{{"product_id": product.ID, "quantity": 2}},
		"type":          "partial",
		"paid_amount":   100,
		"customer_name": "Bilal",
		"shop_name":     "City Pharmacy",
		"city":          "lahore",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saleResp struct {
		SoldItem domain.SoldItem `json:"sold_item"`
		Debt     *domain.Debt    `json:"debt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saleResp))
	require.NotNil(t, saleResp.Debt)
	assert.True(t, saleResp.SoldItem.Remaining.Equal(saleResp.Debt.Remaining))

	// Listing shows the sale with aggregates.
	rec = doJSON(t, router, http.MethodGet, "/sales", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var salesList struct {
		SoldItems []domain.SoldItem   `json:"sold_items"`
		Totals    ledger.ReportTotals `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &salesList))
	require.Len(t, salesList.SoldItems, 1)
	assert.True(t, salesList.Totals.Outstanding.Equal(saleResp.Debt.Remaining))

	// Overpayment clamps, closes and removes the debt.
	rec = doJSON(t, router, http.MethodPut, "/debts/"+saleResp.Debt.ID, token, map[string]any{
		"payment": 250,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var payResp struct {
		Debt     *domain.Debt    `json:"debt"`
		SoldItem domain.SoldItem `json:"sold_item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payResp))
	assert.Nil(t, payResp.Debt)
	assert.True(t, payResp.SoldItem.DebtCleared)

	rec = doJSON(t, router, http.MethodGet, "/debts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var debtsList struct {
		Debts []domain.Debt `json:"debts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &debtsList))
	assert.Empty(t, debtsList.Debts)
}

func TestSaleErrorStatusMapping(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router, "admin", "thisisadmin")
	product := createProductHTTP(t, router, token, 5)

	// Insufficient stock -> 400 with the available quantity in the message.
	rec := doJSON(t, router, http.MethodPost, "/sales", token, map[string]any{
		"items":         []map[string]any{{"product_id": product.ID, "quantity": 10}},
		"type":          "full",
		"customer_name": "Bilal",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Available: 5")

	// Unknown product -> 404.
	rec = doJSON(t, router, http.MethodPost, "/sales", token, map[string]any{
		"items":         []map[string]any{{"product_id": "missing", "quantity": 1}},
		"type":          "full",
		"customer_name": "Bilal",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown debt -> 404.
	rec = doJSON(t, router, http.MethodPut, "/debts/missing", token, map[string]any{"payment": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doJSON(t, router, http.MethodDelete, "/debts/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Empty cart -> 400.
	rec = doJSON(t, router, http.MethodPost, "/sales", token, map[string]any{
		"items":         []map[string]any{},
		"type":          "full",
		"customer_name": "Bilal",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportSales(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router, "admin", "thisisadmin")
	product := createProductHTTP(t, router, token, 10)

	rec := doJSON(t, router, http.MethodPost, "/sales", token, map[string]any{
		"items":         []map[string]any{{"product_id": product.ID, "quantity": 1}},
		"type":          "full",
		"customer_name": "Bilal",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/reports/sales/export", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())

	// Suppliers cannot export.
	supplierToken := login(t, router, "supplier", "thisissupplier")
	rec = doJSON(t, router, http.MethodGet, "/reports/sales/export", supplierToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteSale(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router, "admin", "thisisadmin")
	product := createProductHTTP(t, router, token, 10)

	rec := doJSON(t, router, http.MethodPost, "/sales", token, map[string]any{
		"items":         []map[string]any{{"product_id": product.ID, "quantity": 1}},
		"type":          "full",
		"customer_name": "Bilal",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var saleResp struct {
		SoldItem domain.SoldItem `json:"sold_item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saleResp))

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/sales/%s", saleResp.SoldItem.ID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/sales", token, nil)
	var salesList struct {
		SoldItems []domain.SoldItem `json:"sold_items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &salesList))
	assert.Empty(t, salesList.SoldItems)
}

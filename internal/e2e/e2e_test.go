package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/tillpoint/internal/auth/domain"
	authrepo "github.com/smallbiznis/tillpoint/internal/auth/repository"
	authservice "github.com/smallbiznis/tillpoint/internal/auth/service"
	billingdomain "github.com/smallbiznis/tillpoint/internal/billing/domain"
	billingrepo "github.com/smallbiznis/tillpoint/internal/billing/repository"
	billingservice "github.com/smallbiznis/tillpoint/internal/billing/service"
	"github.com/smallbiznis/tillpoint/internal/cart/memstore"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/tillpoint/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/tillpoint/internal/catalog/service"
	"github.com/smallbiznis/tillpoint/internal/clock"
	"github.com/smallbiznis/tillpoint/internal/config"
	dashboardservice "github.com/smallbiznis/tillpoint/internal/dashboard/service"
	"github.com/smallbiznis/tillpoint/internal/observability"
	"github.com/smallbiznis/tillpoint/internal/providers/pdf"
	"github.com/smallbiznis/tillpoint/internal/server"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	fake    *clock.FakeClock
	httpSrv *httptest.Server
	baseURL string
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.httpSrv.Close()
	os.Exit(code)
}

func startEnv() (*testEnv, error) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := conn.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&catalogdomain.Product{},
		&billingdomain.Bill{},
		&billingdomain.BillItem{},
		&billingdomain.SalesLog{},
	); err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, err
	}

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	cfg := config.Config{SessionTTLHours: 24}

	settings, err := config.NewStoreSettingsHolder()
	if err != nil {
		return nil, err
	}

	authSvc := authservice.New(authservice.Params{
		DB:          conn,
		Log:         log,
		Cfg:         cfg,
		Clock:       fake,
		GenID:       node,
		Repo:        authrepo.Provide(),
		SessionRepo: authrepo.ProvideSession(),
	})
	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    conn,
		Log:   log,
		GenID: node,
		Repo:  catalogrepo.Provide(),
	})
	billingSvc := billingservice.New(billingservice.Params{
		DB:          conn,
		Log:         log,
		Clock:       fake,
		GenID:       node,
		Repo:        billingrepo.Provide(),
		CatalogRepo: catalogrepo.Provide(),
		UserRepo:    authrepo.Provide(),
		Settings:    settings,
		PDF:         pdf.NewPDFProvider(),
	})
	dashboardSvc := dashboardservice.New(dashboardservice.Params{
		DB:          conn,
		Log:         log,
		Clock:       fake,
		BillingRepo: billingrepo.Provide(),
		BillingSvc:  billingSvc,
		Settings:    settings,
	})

	engine := server.NewEngine(observability.Config{}, nil)
	server.NewServer(server.ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		Authsvc:      authSvc,
		CatalogSvc:   catalogSvc,
		BillingSvc:   billingSvc,
		DashboardSvc: dashboardSvc,
		Carts:        memstore.New(),
	})

	srv := httptest.NewServer(engine)
	return &testEnv{
		db:      conn,
		fake:    fake,
		httpSrv: srv,
		baseURL: srv.URL,
	}, nil
}

// signupAndLogin registers a fresh store and returns the bearer token plus the
// assigned store code. Each test gets its own store so tests stay independent.
func signupAndLogin(t *testing.T, email, storeName string) (string, string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, "/auth/signup", map[string]any{
		"email":      email,
		"password":   "secret-pass-1",
		"store_name": storeName,
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d: %s", resp.StatusCode, string(body))
	}
	var user struct {
		StoreCode string `json:"store_code"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}

	resp, body = doJSON(t, http.MethodPost, "/auth/login", map[string]any{
		"email":    email,
		"password": "secret-pass-1",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d: %s", resp.StatusCode, string(body))
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if strings.TrimSpace(login.Token) == "" {
		t.Fatalf("expected session token")
	}
	return login.Token, user.StoreCode
}

func createProduct(t *testing.T, token, name, barcode string, price float64, stock int64) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, "/api/products", map[string]any{
		"name":    name,
		"barcode": barcode,
		"price":   price,
		"stock":   stock,
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product failed: %d: %s", resp.StatusCode, string(body))
	}
	var product struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &product); err != nil {
		t.Fatalf("decode product response: %v", err)
	}
	return product.ID
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestE2E_AuthRequired(t *testing.T) {
	resp, body := doJSON(t, http.MethodGet, "/api/products", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d: %s", resp.StatusCode, string(body))
	}
}

func TestE2E_ScanToCheckoutFlow(t *testing.T) {
	token, storeCode := signupAndLogin(t, "flow@example.com", "Flow Mart")

	riceID := createProduct(t, token, "Basmati Rice 5kg", "8901030", 100.00, 10)
	createProduct(t, token, "Cooking Oil 1L", "8902345", 50.00, 10)

	// Barcode scan resolves the product.
	resp, body := doJSON(t, http.MethodGet, "/api/products/barcode/8901030", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("barcode lookup failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodGet, "/api/products/barcode/0000000", nil, token)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown barcode, got %d: %s", resp.StatusCode, string(body))
	}

	// Build the cart: two rice by repeated scan, then one oil.
	resp, body = doJSON(t, http.MethodPost, "/api/cart/items", map[string]any{"barcode": "8901030"}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add cart item failed: %d: %s", resp.StatusCode, string(body))
	}
	doJSON(t, http.MethodPost, "/api/cart/items", map[string]any{"barcode": "8901030"}, token)
	doJSON(t, http.MethodPost, "/api/cart/items", map[string]any{"barcode": "8902345"}, token)

	resp, body = doJSON(t, http.MethodGet, "/api/cart", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get cart failed: %d: %s", resp.StatusCode, string(body))
	}
	var cartView struct {
		Items      []struct{ Quantity int64 } `json:"items"`
		Subtotal   float64                    `json:"subtotal"`
		TaxTotal   float64                    `json:"gst_total"`
		GrandTotal float64                    `json:"grand_total"`
	}
	if err := json.Unmarshal(body, &cartView); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cartView.Items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(cartView.Items))
	}
	if cartView.Subtotal != 250.00 || cartView.TaxTotal != 38.50 || cartView.GrandTotal != 288.50 {
		t.Fatalf("unexpected totals: %+v", cartView)
	}

	resp, body = doJSON(t, http.MethodPost, "/api/cart/checkout", map[string]any{
		"payment_method": "upi",
		"customer_name":  "Asha",
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout failed: %d: %s", resp.StatusCode, string(body))
	}
	var bill struct {
		ID         string  `json:"id"`
		BillNumber string  `json:"bill_number"`
		GrandTotal float64 `json:"grand_total"`
	}
	if err := json.Unmarshal(body, &bill); err != nil {
		t.Fatalf("decode bill: %v", err)
	}
	wantNumber := storeCode + "-20250601-001"
	if bill.BillNumber != wantNumber {
		t.Fatalf("expected bill number %s, got %s", wantNumber, bill.BillNumber)
	}
	if bill.GrandTotal != 288.50 {
		t.Fatalf("expected grand total 288.50, got %v", bill.GrandTotal)
	}

	// The cart is cleared only after the bill is accepted.
	resp, body = doJSON(t, http.MethodGet, "/api/cart", nil, token)
	if err := json.Unmarshal(body, &cartView); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cartView.Items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d lines", len(cartView.Items))
	}

	// Stock was deducted atomically with the bill.
	resp, body = doJSON(t, http.MethodGet, "/api/products/"+riceID, nil, token)
	var rice struct {
		Stock int64 `json:"stock"`
	}
	if err := json.Unmarshal(body, &rice); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if rice.Stock != 8 {
		t.Fatalf("expected stock 8 after checkout, got %d", rice.Stock)
	}

	// Receipt renders as PDF.
	req, _ := http.NewRequest(http.MethodGet, env.baseURL+"/api/bills/"+bill.ID+"/receipt", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	receiptResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("receipt request failed: %v", err)
	}
	defer receiptResp.Body.Close()
	if receiptResp.StatusCode != http.StatusOK {
		t.Fatalf("receipt failed: %d", receiptResp.StatusCode)
	}
	if ct := receiptResp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	raw, _ := io.ReadAll(receiptResp.Body)
	if len(raw) == 0 {
		t.Fatalf("expected non-empty receipt body")
	}

	// Dashboard reflects the sale.
	resp, body = doJSON(t, http.MethodGet, "/api/dashboard/stats", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard stats failed: %d: %s", resp.StatusCode, string(body))
	}
	var stats struct {
		TodaySales        float64 `json:"today_sales"`
		TodayTransactions int64   `json:"today_transactions"`
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TodaySales != 288.50 || stats.TodayTransactions != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestE2E_CheckoutBlockedOnStaleCart(t *testing.T) {
	token, _ := signupAndLogin(t, "stale@example.com", "Stale Mart")
	createProduct(t, token, "Sugar 1kg", "8909999", 45.00, 2)

	resp, body := doJSON(t, http.MethodPost, "/api/cart/items", map[string]any{"barcode": "8909999"}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add cart item failed: %d: %s", resp.StatusCode, string(body))
	}

	// Ask for more than the snapshot says is on the shelf.
	var added struct {
		Items []struct {
			ProductID string `json:"product_id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &added); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	productID := added.Items[0].ProductID

	resp, body = doJSON(t, http.MethodPut, "/api/cart/items/"+productID, map[string]any{"quantity": 5}, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set quantity failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodPost, "/api/cart/checkout", map[string]any{"payment_method": "cash"}, token)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for stale cart, got %d: %s", resp.StatusCode, string(body))
	}
	var payload struct {
		Error struct {
			Type       string `json:"type"`
			Violations []struct {
				Code string `json:"code"`
			} `json:"violations"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Type != "cart_not_eligible" {
		t.Fatalf("expected cart_not_eligible, got %s", payload.Error.Type)
	}
	if len(payload.Error.Violations) != 1 || payload.Error.Violations[0].Code != "insufficient_stock" {
		t.Fatalf("unexpected violations: %+v", payload.Error.Violations)
	}

	// The cart survives the rejection for the cashier to fix up.
	resp, body = doJSON(t, http.MethodGet, "/api/cart", nil, token)
	var cartView struct {
		Items []struct{ Quantity int64 } `json:"items"`
	}
	if err := json.Unmarshal(body, &cartView); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cartView.Items) != 1 || cartView.Items[0].Quantity != 5 {
		t.Fatalf("expected cart preserved after rejection, got %+v", cartView.Items)
	}
}

func TestE2E_DirectBillSubmitRejectedForUnknownProduct(t *testing.T) {
	token, _ := signupAndLogin(t, "direct@example.com", "Direct Mart")

	resp, body := doJSON(t, http.MethodPost, "/api/bills", map[string]any{
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": "123456789", "quantity": 1},
		},
	}, token)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for unknown product, got %d: %s", resp.StatusCode, string(body))
	}
	var payload struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if payload.Error.Type != "checkout_rejected" {
		t.Fatalf("expected checkout_rejected, got %s", payload.Error.Type)
	}
}

func TestE2E_LogoutRevokesSession(t *testing.T) {
	token, _ := signupAndLogin(t, "logout@example.com", "Logout Mart")

	resp, body := doJSON(t, http.MethodPost, "/auth/logout", nil, token)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout failed: %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodGet, "/auth/me", nil, token)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d: %s", resp.StatusCode, string(body))
	}
}

func doJSON(t *testing.T, method, path string, payload any, token string) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode json: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, env.baseURL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

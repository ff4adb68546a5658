package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	authdomain "github.com/smallbiznis/tillpoint/internal/auth/domain"
	billingdomain "github.com/smallbiznis/tillpoint/internal/billing/domain"
	billingrepo "github.com/smallbiznis/tillpoint/internal/billing/repository"
	billingservice "github.com/smallbiznis/tillpoint/internal/billing/service"
	authrepo "github.com/smallbiznis/tillpoint/internal/auth/repository"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/tillpoint/internal/catalog/repository"
	"github.com/smallbiznis/tillpoint/internal/cart"
	"github.com/smallbiznis/tillpoint/internal/clock"
	"github.com/smallbiznis/tillpoint/internal/config"
	"github.com/smallbiznis/tillpoint/internal/dashboard/domain"
	"github.com/smallbiznis/tillpoint/internal/providers/pdf"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	svc     domain.Service
	billing billingdomain.Service
	db      *gorm.DB
	node    *snowflake.Node
	fake    *clock.FakeClock
	ctx     context.Context
	owner   *authdomain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&authdomain.User{},
		&catalogdomain.Product{},
		&billingdomain.Bill{},
		&billingdomain.BillItem{},
		&billingdomain.SalesLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	settings, err := config.NewStoreSettingsHolder()
	require.NoError(t, err)

	owner := &authdomain.User{
		ID:           node.Generate(),
		Email:        "owner@example.com",
		PasswordHash: "x",
		StoreName:    "Corner Mart",
		StoreCode:    "CORNER",
		CreatedAt:    fake.Now(),
		UpdatedAt:    fake.Now(),
	}
	require.NoError(t, conn.Create(owner).Error)

	billingSvc := billingservice.New(billingservice.Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Clock:       fake,
		GenID:       node,
		Repo:        billingrepo.Provide(),
		CatalogRepo: catalogrepo.Provide(),
		UserRepo:    authrepo.Provide(),
		Settings:    settings,
		PDF:         &pdf.NoOpProvider{},
	})

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		Clock:       fake,
		BillingRepo: billingrepo.Provide(),
		BillingSvc:  billingSvc,
		Settings:    settings,
	})

	return &testEnv{
		svc:     svc,
		billing: billingSvc,
		db:      conn,
		node:    node,
		fake:    fake,
		ctx:     usercontext.WithUserID(context.Background(), owner.ID.Int64()),
		owner:   owner,
	}
}

func (e *testEnv) createProduct(t *testing.T, name string, priceMinor, stock int64) *catalogdomain.Product {
	t.Helper()
	p := &catalogdomain.Product{
		ID:            e.node.Generate(),
		UserID:        e.owner.ID,
		Name:          name,
		Barcode:       name,
		PriceMinor:    priceMinor,
		Stock:         stock,
		MinStockAlert: 10,
		GSTRateBP:     1800,
		CreatedAt:     e.fake.Now(),
		UpdatedAt:     e.fake.Now(),
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) submit(t *testing.T, p *catalogdomain.Product, qty int64) *billingdomain.Response {
	t.Helper()
	resp, err := e.billing.Submit(e.ctx, cart.CheckoutRequest{
		Items:         []cart.LineItem{{ProductID: p.ID.String(), Quantity: qty}},
		PaymentMethod: cart.PaymentCash,
	})
	require.NoError(t, err)
	return resp
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	tea := env.createProduct(t, "Tea", 10000, 50)
	env.createProduct(t, "Salt", 5000, 3) // below min stock alert

	env.submit(t, tea, 2) // ₹200 + ₹36 GST

	// Yesterday's bill must not count toward today.
	env.fake.Advance(-48 * time.Hour)
	env.submit(t, tea, 1)
	env.fake.Advance(48 * time.Hour)

	stats, err := env.svc.Stats(env.ctx)
	require.NoError(t, err)

	assert.Equal(t, 236.00, stats.TodaySales)
	assert.Equal(t, int64(1), stats.TodayTransactions)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.LowStockCount)
	// 47 tea at ₹100 plus 3 salt at ₹50.
	assert.Equal(t, 4850.00, stats.InventoryValue)

	_, err = env.svc.Stats(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestRecentBills_HonorsConfiguredLimit(t *testing.T) {
	env := newTestEnv(t)
	tea := env.createProduct(t, "Tea", 10000, 50)

	for i := 0; i < 7; i++ {
		env.submit(t, tea, 1)
		env.fake.Advance(time.Minute)
	}

	recent, err := env.svc.RecentBills(env.ctx)
	require.NoError(t, err)
	// Default recent-bills limit is 5, newest first.
	require.Len(t, recent, 5)
	assert.Equal(t, "CORNER-20250601-007", recent[0].BillNumber)
	assert.Equal(t, "CORNER-20250601-003", recent[4].BillNumber)
}

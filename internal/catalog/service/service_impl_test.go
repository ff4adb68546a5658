package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"github.com/smallbiznis/tillpoint/internal/catalog/repository"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func userCtx(node *snowflake.Node) (context.Context, snowflake.ID) {
	userID := node.Generate()
	return usercontext.WithUserID(context.Background(), userID.Int64()), userID
}

func TestCreate_StoresMinorUnits(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	rate := 12.5
	resp, err := svc.Create(ctx, domain.CreateRequest{
		Name:    "Masala Tea",
		Barcode: "8901234567890",
		Price:   99.99,
		Stock:   25,
		GSTRate: &rate,
	})
	require.NoError(t, err)

	assert.Equal(t, 99.99, resp.Price)
	assert.Equal(t, 12.5, resp.GSTRate)
	assert.Equal(t, int64(25), resp.Stock)
	assert.Equal(t, int64(10), resp.MinStockAlert)

	snap, err := svc.Snapshot(ctx, resp.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 9999, snap.UnitPrice)
	assert.Equal(t, int64(1250), snap.TaxRateBP)
	assert.Equal(t, int64(25), snap.Stock)
}

func TestCreate_RejectsDuplicateBarcode(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "A", Barcode: "123", Price: 10, Stock: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "B", Barcode: "123", Price: 20, Stock: 1})
	assert.ErrorIs(t, err, domain.ErrBarcodeExists)
}

func TestCreate_AllowsSameBarcodeAcrossStores(t *testing.T) {
	svc, node := newTestService(t)
	ctxA, _ := userCtx(node)
	ctxB, _ := userCtx(node)

	_, err := svc.Create(ctxA, domain.CreateRequest{Name: "A", Barcode: "123", Price: 10, Stock: 1})
	require.NoError(t, err)

	_, err = svc.Create(ctxB, domain.CreateRequest{Name: "A", Barcode: "123", Price: 10, Stock: 1})
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	_, err := svc.Create(ctx, domain.CreateRequest{Name: "", Barcode: "1", Price: 10, Stock: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "A", Barcode: "", Price: 10, Stock: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidBarcode)

	_, err = svc.Create(ctx, domain.CreateRequest{Name: "A", Barcode: "1", Price: 0, Stock: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	bad := 101.0
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "A", Barcode: "1", Price: 10, Stock: 1, GSTRate: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTRate)

	_, err = svc.Create(context.Background(), domain.CreateRequest{Name: "A", Barcode: "1", Price: 10, Stock: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)
}

func TestGetByBarcode(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "A", Barcode: "999", Price: 10, Stock: 1})
	require.NoError(t, err)

	resp, err := svc.GetByBarcode(ctx, "999")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)

	_, err = svc.GetByBarcode(ctx, "000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_SearchAndPagination(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	for _, name := range []string{"Sugar 1kg", "Brown Sugar", "Salt"} {
		_, err := svc.Create(ctx, domain.CreateRequest{Name: name, Barcode: name, Price: 10, Stock: 1})
		require.NoError(t, err)
	}

	matches, err := svc.List(ctx, domain.ListRequest{Search: "sugar"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	page, err := svc.List(ctx, domain.ListRequest{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	empty, err := svc.List(ctx, domain.ListRequest{Search: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "A", Barcode: "1", Price: 10, Stock: 5})
	require.NoError(t, err)

	newPrice := 12.5
	updated, err := svc.Update(ctx, created.ID, domain.UpdateRequest{Price: &newPrice})
	require.NoError(t, err)

	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, "A", updated.Name)
	assert.Equal(t, int64(5), updated.Stock)
}

func TestDelete(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "A", Barcode: "1", Price: 10, Stock: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLowStock(t *testing.T) {
	svc, node := newTestService(t)
	ctx, _ := userCtx(node)

	alert := int64(5)
	_, err := svc.Create(ctx, domain.CreateRequest{Name: "Low", Barcode: "1", Price: 10, Stock: 3, MinStockAlert: &alert})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Name: "Fine", Barcode: "2", Price: 10, Stock: 50, MinStockAlert: &alert})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Low", low[0].Name)
}

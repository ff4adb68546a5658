package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/tillpoint/internal/cart"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetByBarcode(ctx context.Context, barcode string) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	LowStock(ctx context.Context) ([]Response, error)

	// Snapshot captures the product's current price/tax/stock for a cart
	// session; the snapshot goes stale the moment stock moves elsewhere.
	Snapshot(ctx context.Context, id string) (*cart.Snapshot, error)
	SnapshotByBarcode(ctx context.Context, barcode string) (*cart.Snapshot, error)
}

type CreateRequest struct {
	Name          string         `json:"name"`
	Barcode       string         `json:"barcode"`
	Price         float64        `json:"price"`
	Stock         int64          `json:"stock"`
	MinStockAlert *int64         `json:"min_stock_alert"`
	Category      *string        `json:"category"`
	ImageBase64   *string        `json:"image_base64"`
	GSTRate       *float64       `json:"gst_rate"`
	Metadata      map[string]any `json:"metadata"`
}

type UpdateRequest struct {
	Name          *string  `json:"name"`
	Barcode       *string  `json:"barcode"`
	Price         *float64 `json:"price"`
	Stock         *int64   `json:"stock"`
	MinStockAlert *int64   `json:"min_stock_alert"`
	Category      *string  `json:"category"`
	ImageBase64   *string  `json:"image_base64"`
	GSTRate       *float64 `json:"gst_rate"`
}

type ListRequest struct {
	Search string
	Skip   int
	Limit  int
}

// Response is the API shape: price and gst_rate as decimals, minor units
// stay internal.
type Response struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	Barcode       string         `json:"barcode"`
	Price         float64        `json:"price"`
	Stock         int64          `json:"stock"`
	MinStockAlert int64          `json:"min_stock_alert"`
	Category      *string        `json:"category,omitempty"`
	ImageBase64   *string        `json:"image_base64,omitempty"`
	GSTRate       float64        `json:"gst_rate"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

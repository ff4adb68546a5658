package domain

import (
	"context"
	"io"
	"time"

	"github.com/smallbiznis/tillpoint/internal/cart"
)

type Service interface {
	// Submit persists a checkout atomically: stock re-validation, totals,
	// bill numbering, items, and sales logs commit together or not at all.
	Submit(ctx context.Context, req cart.CheckoutRequest) (*Response, error)

	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Receipt(ctx context.Context, id string) (io.Reader, error)
}

type ListRequest struct {
	Skip  int
	Limit int
}

type ItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Barcode     string  `json:"barcode"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	GSTRate     float64 `json:"gst_rate"`
	ItemTotal   float64 `json:"item_total"`
	GSTAmount   float64 `json:"gst_amount"`
}

// Response is the API shape of a bill: amounts as decimals, minor units
// stay internal.
type Response struct {
	ID            string         `json:"id"`
	BillNumber    string         `json:"bill_number"`
	CustomerName  *string        `json:"customer_name,omitempty"`
	PaymentMethod string         `json:"payment_method"`
	Items         []ItemResponse `json:"items"`
	Subtotal      float64        `json:"subtotal"`
	TaxTotal      float64        `json:"gst_total"`
	GrandTotal    float64        `json:"grand_total"`
	CreatedAt     time.Time      `json:"created_at"`
}

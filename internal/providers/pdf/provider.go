package pdf

import (
	"context"
	"io"
)

// ReceiptItem is one printed line on a receipt. Amounts arrive
// preformatted so the renderer stays currency-agnostic.
type ReceiptItem struct {
	Name      string
	Quantity  int64
	UnitPrice string
	GSTRate   string
	Amount    string
}

// ReceiptData carries everything needed to render a bill receipt.
type ReceiptData struct {
	StoreName    string
	StoreAddress string
	BillNumber   string
	Date         string
	Payment      string
	CustomerName string

	Items []ReceiptItem

	Subtotal   string
	TaxTotal   string
	GrandTotal string

	FooterNote string
}

// Provider renders bill receipts.
type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

// NoOpProvider is used where receipt rendering is disabled.
type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	return nil, nil
}

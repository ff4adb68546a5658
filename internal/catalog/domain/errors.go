package domain

import "errors"

var (
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidBarcode    = errors.New("invalid_barcode")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidStock      = errors.New("invalid_stock")
	ErrInvalidGSTRate    = errors.New("invalid_gst_rate")
	ErrBarcodeExists     = errors.New("barcode_exists")
	ErrNotFound          = errors.New("not_found")
	ErrInsufficientStock = errors.New("insufficient_stock")
)

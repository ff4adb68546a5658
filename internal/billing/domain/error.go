package domain

import (
	"errors"
	"strings"

	"github.com/smallbiznis/tillpoint/internal/cart"
)

var (
	ErrNotFound   = errors.New("bill_not_found")
	ErrInvalidID  = errors.New("invalid_bill_id")
	ErrEmptyBill  = errors.New("empty_bill")
	ErrInvalidQty = errors.New("invalid_quantity")
)

// RejectedError is returned when submission fails authoritative stock
// validation. Nothing is persisted and no stock moves; the reasons list
// every offending product.
type RejectedError struct {
	Reasons []cart.Violation
}

func (e *RejectedError) Error() string {
	if len(e.Reasons) == 0 {
		return "bill rejected"
	}
	parts := make([]string, 0, len(e.Reasons))
	for _, r := range e.Reasons {
		parts = append(parts, r.String())
	}
	return "bill rejected: " + strings.Join(parts, "; ")
}

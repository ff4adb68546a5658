package cart

import (
	"errors"
	"fmt"
	"strings"
)

// PaymentMethod enumerates the accepted tender types.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

var ErrInvalidPaymentMethod = errors.New("invalid_payment_method")

// ParsePaymentMethod validates a payment method string. Nothing outside the
// enumerated set is recognized.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case PaymentCash:
		return PaymentCash, nil
	case PaymentCard:
		return PaymentCard, nil
	case PaymentUPI:
		return PaymentUPI, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}

// ViolationCode classifies why a cart fails checkout validation.
type ViolationCode string

const (
	ViolationEmptyCart         ViolationCode = "empty_cart"
	ViolationInsufficientStock ViolationCode = "insufficient_stock"
	ViolationProductNotFound   ViolationCode = "product_not_found"
)

// Violation is one reason the cart is not checkout-eligible.
type Violation struct {
	Code           ViolationCode `json:"code"`
	ProductID      string        `json:"product_id,omitempty"`
	ProductName    string        `json:"product_name,omitempty"`
	Requested      int64         `json:"requested,omitempty"`
	AvailableStock int64         `json:"available_stock,omitempty"`
}

func (v Violation) String() string {
	switch v.Code {
	case ViolationEmptyCart:
		return "cart is empty"
	case ViolationProductNotFound:
		return fmt.Sprintf("product %s no longer exists", v.ProductID)
	default:
		return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
			v.ProductName, v.Requested, v.AvailableStock)
	}
}

// ValidationError carries the full violation list when checkout is blocked.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "cart validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}

// LineItem is the immutable billing line derived from a cart line at
// checkout time. ItemTotal and TaxAmount are fixed here and never
// recomputed from the cart again.
type LineItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Barcode     string `json:"barcode"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   Money  `json:"price"`
	TaxRateBP   int64  `json:"gst_rate_bp"`
	ItemTotal   Money  `json:"item_total"`
	TaxAmount   Money  `json:"gst_amount"`
}

// CheckoutRequest is the payload submitted to the billing service. Building
// it does not mutate the cart, so a failed submission leaves the cart intact
// for retry.
type CheckoutRequest struct {
	Items         []LineItem    `json:"items"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CustomerName  string        `json:"customer_name,omitempty"`
}

// ValidateForCheckout returns every reason the cart cannot check out. An
// empty cart yields exactly the EmptyCart violation. Stock checks use the
// snapshot captured at add time; the billing service re-validates
// authoritatively and may still reject.
func (s *Session) ValidateForCheckout() []Violation {
	if s.IsEmpty() {
		return []Violation{{Code: ViolationEmptyCart}}
	}

	var violations []Violation
	for i := range s.lines {
		line := &s.lines[i]
		if line.Quantity > line.Stock {
			violations = append(violations, Violation{
				Code:           ViolationInsufficientStock,
				ProductID:      line.ProductID,
				ProductName:    line.Name,
				Requested:      line.Quantity,
				AvailableStock: line.Stock,
			})
		}
	}
	return violations
}

// BuildCheckoutRequest maps every cart line to an immutable bill line item.
// It fails with a ValidationError when the cart is not checkout-eligible and
// with ErrInvalidPaymentMethod for unknown tender types.
func (s *Session) BuildCheckoutRequest(method PaymentMethod, customerName string) (*CheckoutRequest, error) {
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}
	if violations := s.ValidateForCheckout(); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	items := make([]LineItem, 0, len(s.lines))
	for i := range s.lines {
		line := &s.lines[i]
		itemTotal := line.UnitPrice * Money(line.Quantity)
		items = append(items, LineItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Barcode:     line.Barcode,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRateBP:   line.TaxRateBP,
			ItemTotal:   itemTotal,
			TaxAmount:   TaxOf(itemTotal, line.TaxRateBP),
		})
	}

	return &CheckoutRequest{
		Items:         items,
		PaymentMethod: method,
		CustomerName:  strings.TrimSpace(customerName),
	}, nil
}

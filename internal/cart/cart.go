// Package cart implements the in-memory cart and billing engine: line
// accumulation, tax-inclusive totals, stock validation and checkout request
// assembly. The engine performs no I/O; catalog lookups and bill submission
// belong to its callers.
package cart

// Snapshot captures a product's identity and pricing as of the moment it is
// added to the cart. Stock is authoritative at snapshot time only and may go
// stale; checkout validation against it is advisory.
type Snapshot struct {
	ProductID string
	Name      string
	Barcode   string
	UnitPrice Money
	TaxRateBP int64
	Stock     int64
}

// Line is one product plus the quantity selected during the open session.
type Line struct {
	Snapshot
	Quantity int64
}

// Totals is the recomputed summary over all cart lines.
type Totals struct {
	Subtotal   Money
	TaxTotal   Money
	GrandTotal Money
}

// Session owns one open cart. It is single-writer: exactly one cashier edits
// one cart, so the session itself carries no locking.
type Session struct {
	lines []Line
}

// NewSession returns an empty, open cart session.
func NewSession() *Session {
	return &Session{}
}

// Add merges a product snapshot into the cart. An existing line for the same
// product gains one unit; otherwise a new quantity-1 line is appended,
// preserving insertion order. Add always succeeds.
func (s *Session) Add(snap Snapshot) {
	for i := range s.lines {
		if s.lines[i].ProductID == snap.ProductID {
			s.SetQuantity(snap.ProductID, s.lines[i].Quantity+1)
			return
		}
	}
	s.lines = append(s.lines, Line{Snapshot: snap, Quantity: 1})
}

// SetQuantity replaces the quantity on the matching line. A quantity of zero
// or less removes the line. Unknown product IDs are a no-op; introducing new
// lines is Add's job.
func (s *Session) SetQuantity(productID string, quantity int64) {
	if quantity <= 0 {
		s.Remove(productID)
		return
	}
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			return
		}
	}
}

// Remove deletes the line for productID if present.
func (s *Session) Remove(productID string) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Session) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of cart lines.
func (s *Session) Len() int {
	return len(s.lines)
}

// IsEmpty reports whether the cart holds no lines.
func (s *Session) IsEmpty() bool {
	return len(s.lines) == 0
}

// Clear resets the session to open and empty. Callers invoke this only after
// the billing service has confirmed acceptance of a checkout request, or on
// an explicit reset.
func (s *Session) Clear() {
	s.lines = nil
}

// Totals recomputes subtotal, tax and grand total from scratch. Per-line tax
// is rounded once at the basis-point division; sums carry full minor-unit
// precision, so GrandTotal always equals Subtotal + TaxTotal and the result
// is independent of line order.
func (s *Session) Totals() Totals {
	var t Totals
	for i := range s.lines {
		itemTotal := s.lines[i].UnitPrice * Money(s.lines[i].Quantity)
		t.Subtotal += itemTotal
		t.TaxTotal += TaxOf(itemTotal, s.lines[i].TaxRateBP)
	}
	t.GrandTotal = t.Subtotal + t.TaxTotal
	return t
}

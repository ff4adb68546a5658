package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFixture(id string, price float64, rate float64, stock int64) Snapshot {
	return Snapshot{
		ProductID: id,
		Name:      "Product " + id,
		Barcode:   "890" + id,
		UnitPrice: MoneyFromDecimal(price),
		TaxRateBP: BasisPointsFromPercent(rate),
		Stock:     stock,
	}
}

func TestAdd_MergesSameProduct(t *testing.T) {
	s := NewSession()
	snap := snapshotFixture("p1", 100, 18, 10)

	s.Add(snap)
	s.Add(snap)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Quantity)
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 10))
	s.Add(snapshotFixture("p2", 50, 5, 10))
	s.Add(snapshotFixture("p3", 25, 12, 10))
	s.Add(snapshotFixture("p2", 50, 5, 10))

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, "p2", lines[1].ProductID)
	assert.Equal(t, "p3", lines[2].ProductID)
	assert.Equal(t, int64(2), lines[1].Quantity)
}

func TestSetQuantity_ZeroOrNegativeRemoves(t *testing.T) {
	for _, qty := range []int64{0, -1} {
		s := NewSession()
		s.Add(snapshotFixture("p1", 100, 18, 10))

		s.SetQuantity("p1", qty)

		assert.True(t, s.IsEmpty())
	}
}

func TestSetQuantity_UnknownProductIsNoOp(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 10))

	s.SetQuantity("missing", 3)

	lines := s.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].ProductID)
	assert.Equal(t, int64(1), lines[0].Quantity)
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 10))

	s.Remove("missing")
	assert.Equal(t, 1, s.Len())

	s.Remove("p1")
	assert.True(t, s.IsEmpty())
}

func TestTotals_ReferenceScenario(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 10))
	s.SetQuantity("p1", 2)
	s.Add(snapshotFixture("p2", 50, 5, 10))

	totals := s.Totals()

	assert.Equal(t, "250.00", totals.Subtotal.String())
	assert.Equal(t, "38.50", totals.TaxTotal.String())
	assert.Equal(t, "288.50", totals.GrandTotal.String())
}

func TestTotals_OrderIndependent(t *testing.T) {
	forward := NewSession()
	forward.Add(snapshotFixture("p1", 99.99, 18, 10))
	forward.Add(snapshotFixture("p2", 12.49, 5, 10))
	forward.Add(snapshotFixture("p3", 0.99, 28, 10))

	reversed := NewSession()
	reversed.Add(snapshotFixture("p3", 0.99, 28, 10))
	reversed.Add(snapshotFixture("p2", 12.49, 5, 10))
	reversed.Add(snapshotFixture("p1", 99.99, 18, 10))

	assert.Equal(t, forward.Totals(), reversed.Totals())
}

func TestTotals_GrandEqualsSubtotalPlusTax(t *testing.T) {
	cases := []struct {
		price float64
		qty   int64
		rate  float64
	}{
		{0, 1, 0},
		{0.01, 3, 18},
		{99.99, 7, 12.5},
		{1234.56, 100, 28},
	}

	s := NewSession()
	for i, c := range cases {
		snap := snapshotFixture(string(rune('a'+i)), c.price, c.rate, 1000)
		s.Add(snap)
		s.SetQuantity(snap.ProductID, c.qty)

		totals := s.Totals()
		assert.Equal(t, totals.Subtotal+totals.TaxTotal, totals.GrandTotal)
	}
}

func TestTotals_RecomputedAfterEveryMutation(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 10, 0, 10))
	assert.Equal(t, MoneyFromDecimal(10), s.Totals().GrandTotal)

	s.SetQuantity("p1", 5)
	assert.Equal(t, MoneyFromDecimal(50), s.Totals().GrandTotal)

	s.Remove("p1")
	assert.Equal(t, Money(0), s.Totals().GrandTotal)
}

func TestValidateForCheckout_EmptyCart(t *testing.T) {
	s := NewSession()

	violations := s.ValidateForCheckout()

	require.Len(t, violations, 1)
	assert.Equal(t, ViolationEmptyCart, violations[0].Code)
}

func TestValidateForCheckout_InsufficientStock(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 5))
	s.SetQuantity("p1", 6)
	s.Add(snapshotFixture("p2", 50, 5, 10))

	violations := s.ValidateForCheckout()

	require.Len(t, violations, 1)
	assert.Equal(t, ViolationInsufficientStock, violations[0].Code)
	assert.Equal(t, "Product p1", violations[0].ProductName)
	assert.Equal(t, int64(6), violations[0].Requested)
	assert.Equal(t, int64(5), violations[0].AvailableStock)

	_, err := s.BuildCheckoutRequest(PaymentCash, "")
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, violations, vErr.Violations)
}

func TestBuildCheckoutRequest_Success(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 10))
	s.SetQuantity("p1", 2)
	s.Add(snapshotFixture("p2", 50, 5, 10))

	req, err := s.BuildCheckoutRequest(PaymentUPI, "Jane Doe")
	require.NoError(t, err)

	assert.Equal(t, PaymentUPI, req.PaymentMethod)
	assert.Equal(t, "Jane Doe", req.CustomerName)
	require.Len(t, req.Items, 2)

	assert.Equal(t, MoneyFromDecimal(200), req.Items[0].ItemTotal)
	assert.Equal(t, MoneyFromDecimal(36), req.Items[0].TaxAmount)
	assert.Equal(t, MoneyFromDecimal(50), req.Items[1].ItemTotal)
	assert.Equal(t, MoneyFromDecimal(2.50), req.Items[1].TaxAmount)

	// Building the request must not consume the cart.
	assert.Equal(t, 2, s.Len())
}

func TestBuildCheckoutRequest_RejectsUnknownPaymentMethod(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 10))

	_, err := s.BuildCheckoutRequest(PaymentMethod("cheque"), "")

	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"cash", "card", "upi", " UPI "} {
		_, err := ParsePaymentMethod(raw)
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"", "cheque", "credit"} {
		_, err := ParsePaymentMethod(raw)
		assert.ErrorIs(t, err, ErrInvalidPaymentMethod, raw)
	}
}

func TestClear_ReturnsToOpenEmpty(t *testing.T) {
	s := NewSession()
	s.Add(snapshotFixture("p1", 100, 18, 10))

	s.Clear()

	assert.True(t, s.IsEmpty())
	violations := s.ValidateForCheckout()
	require.Len(t, violations, 1)
	assert.Equal(t, ViolationEmptyCart, violations[0].Code)
}

func TestMoneyConversions(t *testing.T) {
	assert.Equal(t, Money(10000), MoneyFromDecimal(100))
	assert.Equal(t, Money(9999), MoneyFromDecimal(99.99))
	assert.Equal(t, Money(1), MoneyFromDecimal(0.005))
	assert.Equal(t, 99.99, Money(9999).Decimal())
	assert.Equal(t, "0.05", Money(5).String())

	assert.Equal(t, int64(1800), BasisPointsFromPercent(18))
	assert.Equal(t, int64(1250), BasisPointsFromPercent(12.5))
	assert.Equal(t, 12.5, PercentFromBasisPoints(1250))
}

func TestTaxRounding_HalfUpAtDivision(t *testing.T) {
	// 0.01 at 5%: 1 paise * 500bp = 500 → rounds to 0.01? No: 500/10000 = 0.05 → rounds to 0.
	assert.Equal(t, Money(0), TaxOf(Money(1), 500))
	// 0.10 at 5%: 10 * 500 = 5000 → exactly half, rounds up to 1 paise.
	assert.Equal(t, Money(1), TaxOf(Money(10), 500))
	assert.Equal(t, Money(0), TaxOf(Money(0), 1800))
	assert.Equal(t, Money(0), TaxOf(Money(100), 0))
}

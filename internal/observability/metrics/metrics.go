package metrics

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	billsCreated      metric.Int64Counter
	billAmount        metric.Int64Counter
	checkoutRejected  metric.Int64Counter
	stockDeducted     metric.Int64Counter
	barcodeLookups    metric.Int64Counter
	rateLimitAllowed  metric.Int64Counter
	rateLimitRejected metric.Int64Counter
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "tillpoint"
	}
	meter := provider.Meter(name)

	billsCreated, err := meter.Int64Counter("tillpoint_bills_created_total")
	if err != nil {
		return nil, err
	}
	billAmount, err := meter.Int64Counter("tillpoint_bill_amount_minor_units_total")
	if err != nil {
		return nil, err
	}
	checkoutRejected, err := meter.Int64Counter("tillpoint_checkout_rejected_total")
	if err != nil {
		return nil, err
	}
	stockDeducted, err := meter.Int64Counter("tillpoint_stock_deducted_total")
	if err != nil {
		return nil, err
	}
	barcodeLookups, err := meter.Int64Counter("tillpoint_barcode_lookups_total")
	if err != nil {
		return nil, err
	}
	rateLimitAllowed, err := meter.Int64Counter("tillpoint_rate_limit_allowed_total")
	if err != nil {
		return nil, err
	}
	rateLimitRejected, err := meter.Int64Counter("tillpoint_rate_limit_rejected_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		billsCreated:      billsCreated,
		billAmount:        billAmount,
		checkoutRejected:  checkoutRejected,
		stockDeducted:     stockDeducted,
		barcodeLookups:    barcodeLookups,
		rateLimitAllowed:  rateLimitAllowed,
		rateLimitRejected: rateLimitRejected,
	}, nil
}

// RecordBillCreated counts a persisted bill and its grand total.
func (m *Metrics) RecordBillCreated(ctx context.Context, paymentMethod string, totalMinor int64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("payment_method", strings.TrimSpace(paymentMethod)))
	m.billsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.billAmount.Add(ctx, totalMinor, metric.WithAttributes(attrs...))
}

// RecordCheckoutRejected counts checkout submissions the billing service declined.
func (m *Metrics) RecordCheckoutRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.checkoutRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordStockDeducted counts units removed from inventory at checkout.
func (m *Metrics) RecordStockDeducted(ctx context.Context, quantity int64) {
	if m == nil {
		return
	}
	m.stockDeducted.Add(ctx, quantity)
}

// RecordBarcodeLookup counts scan-driven product lookups.
func (m *Metrics) RecordBarcodeLookup(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.barcodeLookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitAllowed counts rate limit allow decisions.
func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("endpoint", strings.TrimSpace(endpoint)))
	m.rateLimitAllowed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRateLimitRejected counts rate limit deny decisions.
func (m *Metrics) RecordRateLimitRejected(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)
	m.rateLimitRejected.Add(ctx, 1, metric.WithAttributes(attrs...))
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"payment_method": {},
	"endpoint":       {},
	"status_code":    {},
	"outcome":        {},
	"reason":         {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

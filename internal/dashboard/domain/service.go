// Package domain contains core types for the dashboard service.
package domain

import (
	"context"
	"errors"

	billingdomain "github.com/smallbiznis/tillpoint/internal/billing/domain"
)

var ErrInvalidUser = errors.New("invalid_user")

// Stats is the storefront overview for the current day.
type Stats struct {
	TodaySales        float64 `json:"today_sales"`
	TodayTransactions int64   `json:"today_transactions"`
	TotalProducts     int64   `json:"total_products"`
	LowStockCount     int64   `json:"low_stock_count"`
	InventoryValue    float64 `json:"inventory_value"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
	RecentBills(ctx context.Context) ([]billingdomain.Response, error)
}

package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	Skip  int
	Limit int
}

// DayStats aggregates bill totals over a time window.
type DayStats struct {
	TotalMinor int64
	Count      int64
}

type Repository interface {
	CreateBill(ctx context.Context, db *gorm.DB, bill *Bill) error
	CreateSalesLogs(ctx context.Context, db *gorm.DB, logs []SalesLog) error

	// CountForRange returns how many bills the user created in [start, end).
	CountForRange(ctx context.Context, db *gorm.DB, userID snowflake.ID, start, end time.Time) (int64, error)

	FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*Bill, error)

	// List returns bills newest first, items preloaded.
	List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter ListFilter) ([]Bill, error)

	// StatsForRange sums grand totals and counts bills in [start, end).
	StatsForRange(ctx context.Context, db *gorm.DB, userID snowflake.ID, start, end time.Time) (DayStats, error)
}

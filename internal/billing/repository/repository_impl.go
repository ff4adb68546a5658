package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tillpoint/internal/billing/domain"
	"github.com/smallbiznis/tillpoint/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateBill(ctx context.Context, db *gorm.DB, bill *domain.Bill) error {
	return db.WithContext(ctx).Create(bill).Error
}

func (r *repo) CreateSalesLogs(ctx context.Context, db *gorm.DB, logs []domain.SalesLog) error {
	if len(logs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&logs).Error
}

func (r *repo) CountForRange(ctx context.Context, db *gorm.DB, userID snowflake.ID, start, end time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Bill{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Count(&count).Error
	return count, err
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID, id snowflake.ID) (*domain.Bill, error) {
	var bill domain.Bill
	err := db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND id = ?", userID, id).
		First(&bill).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, userID snowflake.ID, filter domain.ListFilter) ([]domain.Bill, error) {
	var bills []domain.Bill
	stmt := db.WithContext(ctx).
		Model(&domain.Bill{}).
		Preload("Items").
		Where("user_id = ?", userID)

	stmt = option.Apply(stmt,
		option.WithSortBy("created_at", "desc", map[string]bool{"created_at": true}),
		option.WithSkipLimit(filter.Skip, filter.Limit),
	)

	if err := stmt.Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) StatsForRange(ctx context.Context, db *gorm.DB, userID snowflake.ID, start, end time.Time) (domain.DayStats, error) {
	var row struct {
		Total int64
		Count int64
	}
	err := db.WithContext(ctx).
		Model(&domain.Bill{}).
		Select("COALESCE(SUM(grand_total_minor), 0) AS total, COUNT(*) AS count").
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Scan(&row).Error
	if err != nil {
		return domain.DayStats{}, err
	}
	return domain.DayStats{TotalMinor: row.Total, Count: row.Count}, nil
}

package service

import (
	"context"
	"time"

	billingdomain "github.com/smallbiznis/tillpoint/internal/billing/domain"
	"github.com/smallbiznis/tillpoint/internal/cart"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"github.com/smallbiznis/tillpoint/internal/clock"
	"github.com/smallbiznis/tillpoint/internal/config"
	"github.com/smallbiznis/tillpoint/internal/dashboard/domain"
	"github.com/smallbiznis/tillpoint/internal/usercontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	BillingRepo billingdomain.Repository
	BillingSvc  billingdomain.Service
	Settings    *config.StoreSettingsHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	billingRepo billingdomain.Repository
	billingSvc  billingdomain.Service
	settings    *config.StoreSettingsHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("dashboard.service"),
		clock:       p.Clock,
		billingRepo: p.BillingRepo,
		billingSvc:  p.BillingSvc,
		settings:    p.Settings,
	}
}

func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	userID, ok := usercontext.UserIDFromContext(ctx)
	if !ok || userID == 0 {
		return nil, domain.ErrInvalidUser
	}

	now := s.clock.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	today, err := s.billingRepo.StatsForRange(ctx, s.db, userID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	var totalProducts int64
	if err := s.db.WithContext(ctx).
		Model(&catalogdomain.Product{}).
		Where("user_id = ?", userID).
		Count(&totalProducts).Error; err != nil {
		return nil, err
	}

	var lowStockCount int64
	if err := s.db.WithContext(ctx).
		Model(&catalogdomain.Product{}).
		Where("user_id = ? AND stock <= min_stock_alert", userID).
		Count(&lowStockCount).Error; err != nil {
		return nil, err
	}

	var inventoryValueMinor int64
	if err := s.db.WithContext(ctx).
		Model(&catalogdomain.Product{}).
		Select("COALESCE(SUM(price_minor * stock), 0)").
		Where("user_id = ?", userID).
		Scan(&inventoryValueMinor).Error; err != nil {
		return nil, err
	}

	return &domain.Stats{
		TodaySales:        cart.Money(today.TotalMinor).Decimal(),
		TodayTransactions: today.Count,
		TotalProducts:     totalProducts,
		LowStockCount:     lowStockCount,
		InventoryValue:    cart.Money(inventoryValueMinor).Decimal(),
	}, nil
}

func (s *Service) RecentBills(ctx context.Context) ([]billingdomain.Response, error) {
	limit := s.settings.Current().RecentBillsLimit
	return s.billingSvc.List(ctx, billingdomain.ListRequest{Limit: limit})
}

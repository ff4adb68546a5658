package migration

import (
	"context"
	"strings"
	"time"

	authdomain "github.com/smallbiznis/tillpoint/internal/auth/domain"
	billingdomain "github.com/smallbiznis/tillpoint/internal/billing/domain"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"github.com/smallbiznis/tillpoint/internal/config"
	"github.com/smallbiznis/tillpoint/internal/ratelimit"
	"github.com/smallbiznis/tillpoint/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type invokeParams struct {
	fx.In

	DB      *gorm.DB
	Cfg     config.Config
	Limiter *ratelimit.LoginLimiter `optional:"true"`
}

const seedLockTTL = 30 * time.Second

var Module = fx.Module("migrations",
	fx.Invoke(func(p invokeParams) error {
		if strings.EqualFold(p.Cfg.DBType, "postgres") {
			sqlDB, err := p.DB.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres targets (sqlite dev runs, mysql) take the
			// gorm-derived schema instead of the SQL migrations.
			if err := p.DB.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&catalogdomain.Product{},
				&billingdomain.Bill{},
				&billingdomain.BillItem{},
				&billingdomain.SalesLog{},
			); err != nil {
				return err
			}
		}

		if !p.Cfg.SeedDemoStore {
			return nil
		}
		return seedDemoStore(p.DB, p.Limiter)
	}),
)

// seedDemoStore runs the demo seed, holding a distributed lock when Redis
// is available so concurrent replicas don't race on first boot.
func seedDemoStore(db *gorm.DB, limiter *ratelimit.LoginLimiter) error {
	locker := limiter.Locker()
	if locker == nil {
		return seed.EnsureDemoStore(db)
	}

	ctx := context.Background()
	token, ok, err := locker.TryLock(ctx, "seed:demo_store", seedLockTTL)
	if err != nil || !ok {
		// Another replica is seeding; the seed is idempotent anyway.
		return nil
	}
	defer func() { _ = locker.Release(ctx, "seed:demo_store", token) }()

	return seed.EnsureDemoStore(db)
}

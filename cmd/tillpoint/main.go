package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tillpoint/internal/auth"
	"github.com/smallbiznis/tillpoint/internal/billing"
	"github.com/smallbiznis/tillpoint/internal/cart/memstore"
	"github.com/smallbiznis/tillpoint/internal/catalog"
	"github.com/smallbiznis/tillpoint/internal/clock"
	"github.com/smallbiznis/tillpoint/internal/config"
	"github.com/smallbiznis/tillpoint/internal/dashboard"
	"github.com/smallbiznis/tillpoint/internal/migration"
	"github.com/smallbiznis/tillpoint/internal/observability"
	"github.com/smallbiznis/tillpoint/internal/providers"
	"github.com/smallbiznis/tillpoint/internal/ratelimit"
	"github.com/smallbiznis/tillpoint/internal/server"
	"github.com/smallbiznis/tillpoint/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,
		migration.Module,

		// Domains
		auth.Module,
		catalog.Module,
		memstore.Module,
		billing.Module,
		dashboard.Module,
		providers.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

func registerSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

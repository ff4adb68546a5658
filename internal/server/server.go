package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	authdomain "github.com/smallbiznis/tillpoint/internal/auth/domain"
	billingdomain "github.com/smallbiznis/tillpoint/internal/billing/domain"
	"github.com/smallbiznis/tillpoint/internal/cart/memstore"
	catalogdomain "github.com/smallbiznis/tillpoint/internal/catalog/domain"
	"github.com/smallbiznis/tillpoint/internal/config"
	dashboarddomain "github.com/smallbiznis/tillpoint/internal/dashboard/domain"
	"github.com/smallbiznis/tillpoint/internal/observability"
	obslogger "github.com/smallbiznis/tillpoint/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/tillpoint/internal/observability/metrics"
	obstracing "github.com/smallbiznis/tillpoint/internal/observability/tracing"
	"github.com/smallbiznis/tillpoint/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	authsvc      authdomain.Service
	catalogSvc   catalogdomain.Service
	billingSvc   billingdomain.Service
	dashboardSvc dashboarddomain.Service
	carts        *memstore.Store
	loginLimiter *ratelimit.LoginLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Authsvc      authdomain.Service
	CatalogSvc   catalogdomain.Service
	BillingSvc   billingdomain.Service
	DashboardSvc dashboarddomain.Service
	Carts        *memstore.Store
	LoginLimiter *ratelimit.LoginLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		authsvc:      p.Authsvc,
		catalogSvc:   p.CatalogSvc,
		billingSvc:   p.BillingSvc,
		dashboardSvc: p.DashboardSvc,
		carts:        p.Carts,
		loginLimiter: p.LoginLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/login", s.Login)
	auth.POST("/logout", s.AuthRequired(), s.Logout)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/low-stock", s.ListLowStockProducts)
	api.GET("/products/barcode/:barcode", s.GetProductByBarcode)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	// -------- Cart --------
	api.GET("/cart", s.GetCart)
	api.POST("/cart/items", s.AddCartItem)
	api.PUT("/cart/items/:product_id", s.SetCartItemQuantity)
	api.DELETE("/cart/items/:product_id", s.RemoveCartItem)
	api.DELETE("/cart", s.ClearCart)
	api.POST("/cart/checkout", s.CheckoutCart)

	// -------- Bills --------
	api.POST("/bills", s.CreateBill)
	api.GET("/bills", s.ListBills)
	api.GET("/bills/:id", s.GetBillByID)
	api.GET("/bills/:id/receipt", s.GetBillReceipt)

	// -------- Dashboard --------
	api.GET("/dashboard/stats", s.GetDashboardStats)
	api.GET("/dashboard/recent-bills", s.GetRecentBills)
}

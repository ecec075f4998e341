package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cashregisterstore "github.com/smallbiznis/tilldesk/internal/cashregister/store"
	catalogstore "github.com/smallbiznis/tilldesk/internal/catalog/store"
	collectionstore "github.com/smallbiznis/tilldesk/internal/collection/store"
	"github.com/smallbiznis/tilldesk/internal/config"
	inventorystore "github.com/smallbiznis/tilldesk/internal/inventory/store"
	"github.com/smallbiznis/tilldesk/internal/observability"
	obsmiddleware "github.com/smallbiznis/tilldesk/internal/observability/logger"
	priceadjustmentstore "github.com/smallbiznis/tilldesk/internal/priceadjustment/store"
	purchasingstore "github.com/smallbiznis/tilldesk/internal/purchasing/store"
	referencestore "github.com/smallbiznis/tilldesk/internal/reference/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// Server owns the route handlers; each delegates to its domain store.
type Server struct {
	engine *gin.Engine
	cfg    config.Config

	priceAdjustments *priceadjustmentstore.Store
	inventory        *inventorystore.Store
	registers        *cashregisterstore.Store
	purchasing       *purchasingstore.Store
	collections      *collectionstore.Store
	reference        *referencestore.Store
	catalog          *catalogstore.Store
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	PriceAdjustments *priceadjustmentstore.Store
	Inventory        *inventorystore.Store
	Registers        *cashregisterstore.Store
	Purchasing       *purchasingstore.Store
	Collections      *collectionstore.Store
	Reference        *referencestore.Store
	Catalog          *catalogstore.Store
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		priceAdjustments: p.PriceAdjustments,
		inventory:        p.Inventory,
		registers:        p.Registers,
		purchasing:       p.Purchasing,
		collections:      p.Collections,
		reference:        p.Reference,
		catalog:          p.Catalog,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api/v1")

	adjustments := api.Group("/price-adjustments")
	adjustments.POST("", s.createPriceAdjustment)
	adjustments.GET("/product/:id/history", s.priceAdjustmentHistory)
	adjustments.GET("/recent", s.recentPriceAdjustments)
	adjustments.GET("/date-range", s.priceAdjustmentsByDateRange)
	adjustments.DELETE("", s.clearPriceAdjustments)
	adjustments.DELETE("/product/:id/history", s.clearPriceAdjustmentHistory)

	counts := api.Group("/inventory-counts")
	counts.POST("", s.createInventoryCount)
	counts.GET("/location/:location", s.inventoryCountsByLocation)
	counts.GET("/recent", s.recentInventoryCounts)
	counts.GET("/variance/:product_id", s.inventoryVarianceByProduct)

	sessions := api.Group("/register-sessions")
	sessions.POST("", s.openRegisterSession)
	sessions.POST("/:id/close", s.closeRegisterSession)
	sessions.GET("/register/:register_id", s.registerSessionHistory)
	sessions.GET("/recent", s.recentRegisterSessions)
	sessions.GET("/open", s.openRegisterSessions)

	orders := api.Group("/purchase-orders")
	orders.GET("", s.listPurchaseOrders)
	orders.GET("/outstanding", s.outstandingPurchaseOrders)
	orders.POST("/:id/payments", s.createPurchasePayment)
	orders.GET("/:id/payments", s.purchasePaymentsByOrder)

	collections := api.Group("/collections")
	collections.POST("", s.createCollection)
	collections.GET("/customer/:customer_id", s.collectionsByCustomer)
	collections.GET("/recent", s.recentCollections)

	reference := api.Group("/reference")
	reference.GET("/payment-methods", s.listPaymentMethods)
	reference.GET("/currencies", s.listCurrencies)
	reference.POST("/refresh", s.refreshReference)

	api.GET("/products/:id", s.catalogProduct)
}

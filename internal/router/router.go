package router

import (
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/config"
	"github.com/wukjhc-create/elta-crm-sub009/internal/handler"
	"github.com/wukjhc-create/elta-crm-sub009/internal/infra"
	"github.com/wukjhc-create/elta-crm-sub009/internal/middleware"
	"github.com/wukjhc-create/elta-crm-sub009/internal/repository"
	"github.com/wukjhc-create/elta-crm-sub009/internal/service"
	"github.com/wukjhc-create/elta-crm-sub009/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// The supplier client and breaker registry arrive from main so the
// resolver and the health board observe the same circuit state.
func New(
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	client infra.SupplierPriceClient,
	breakers *infra.BreakerRegistry,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewSupplierProductRepository(db)
	cacheRepo := repository.NewPriceCacheRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	bracketRepo := repository.NewVolumeBracketRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)
	acceptedRepo := repository.NewAcceptedPriceRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	cacheSvc := service.NewPriceCacheService(cacheRepo, productRepo, cfg.CacheMaxAge())
	resolverSvc := service.NewPriceResolverService(
		productRepo, customerRepo, bracketRepo, syncLogRepo,
		cacheSvc, client, dispatcher,
		cfg.PriceTimeout(), cfg.CacheMaxAge(), cfg.DefaultMarginPercent,
	)
	comparisonSvc := service.NewPriceComparisonService(productRepo, resolverSvc, cfg.ComparatorMaxParallel)
	marginSvc := service.NewMarginService(acceptedRepo, productRepo, cfg.MinMarginPercent)
	healthSvc := service.NewSupplierHealthService(supplierRepo, syncLogRepo, cacheRepo, breakers, cfg.HealthWindowSize)

	// ── Handlers ─────────────────────────────────────────────────────────────
	pricingH := handler.NewPricingHandler(resolverSvc, marginSvc, cacheSvc, dispatcher)
	comparisonH := handler.NewComparisonHandler(comparisonSvc, rdb, cfg.CompareCacheTTL())
	suppliersH := handler.NewSuppliersHandler(healthSvc)
	historyH := handler.NewPriceHistoryHandler(marginSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb, dispatcher))

	v1 := r.Group("/v1")
	{
		prices := v1.Group("/prices")
		{
			prices.GET("/resolve", pricingH.ResolvePrice)
			prices.GET("/compare", comparisonH.ComparePrices)
			prices.POST("/margins", pricingH.AnalyzeMargins)
			prices.POST("/suggest", pricingH.SuggestPrice)
			prices.GET("/cached", pricingH.CachedPrices)
			prices.POST("/cache/invalidate", pricingH.InvalidateCache)
			prices.POST("/cache/refresh", pricingH.RefreshCache)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("/health", suppliersH.ListHealth)
			suppliers.GET("/:id/health", suppliersH.GetHealth)
		}

		v1.GET("/price-history", historyH.List)
		v1.POST("/price-history", historyH.Record)
	}

	// Swagger UI — only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

package router

import (
	"inventapro/internal/config"
	"inventapro/internal/handler"
	"inventapro/internal/infra"
	"inventapro/internal/middleware"
	"inventapro/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps are the collaborators the HTTP surface needs. Storage is nil when
// blobs live on local disk.
type Deps struct {
	DB       handler.Pinger
	Redis    *redis.Client
	Storage  *infra.Breaker
	Limiter  *middleware.IPRateLimiter
	Imports  service.ProductImportService
	Jobs     service.ImportJobService
	Products service.ProductService
	Stock    service.StockService
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis/BlobStore
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.ErrorHandler())
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware())
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	importsH := handler.NewImportsHandler(d.Imports, d.Jobs, cfg.MaxUploadBytes(), cfg.ImportTimeout)
	productsH := handler.NewProductsHandler(d.Products)
	stockH := handler.NewStockHandler(d.Stock)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.Storage))

	// Protected routes; tokens are issued by the admin backend
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		readers := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleManager, middleware.RoleViewer)
		admin := middleware.RequireRole(middleware.RoleAdmin)

		imp := v1.Group("/products/import", admin)
		{
			imp.POST("", importsH.Import)
			imp.GET("/template", importsH.Template)
			imp.GET("/jobs/:id", importsH.Job)
			imp.GET("/logs", importsH.Logs)
			imp.GET("/dead-letters", handler.DeadLetters(d.Redis))
		}

		prods := v1.Group("/products", readers)
		{
			prods.GET("", productsH.List)
			prods.GET("/:id", productsH.Get)
			prods.GET("/:id/barcode", productsH.Barcode)
			prods.GET("/:id/barcode-label", productsH.BarcodeLabel)
		}

		v1.GET("/stock/movements", middleware.RequireRole(middleware.RoleAdmin, middleware.RoleManager), stockH.Movements)
	}

	// Swagger UI outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

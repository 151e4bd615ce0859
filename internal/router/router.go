package router

import (
	"time"

	"inventrack/internal/config"
	"inventrack/internal/handler"
	"inventrack/internal/middleware"
	"inventrack/internal/model"
	"inventrack/internal/repository"
	"inventrack/internal/service"
	"inventrack/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb may be nil: the price cache and receipt e-mails are then disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Receipt jobs need the Redis queue; a nil interface keeps the sale flow from enqueueing.
	var receipts service.ReceiptQueue
	if rdb != nil {
		receipts = worker.NewDispatcher(rdb)
	}

	prices := service.NewPriceCache(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	categorySvc := service.NewCategoryService(categoryRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, supplierRepo, movementRepo, historyRepo, prices)
	saleSvc := service.NewSaleService(saleRepo, productRepo, customerRepo, movementRepo, receipts, prices, cfg.TaxRate(), cfg.StoreName)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo)
	reportSvc := service.NewReportService(reportRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	productsH := handler.NewProductsHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	priceH := handler.NewPriceLookupHandler(productSvc, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check, no auth required
	r.GET("/v1/price/:barcode", priceH.GetByBarcode)

	anyRole := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleCashier)
	managers := middleware.RequireRole(model.RoleAdmin, model.RoleManager)
	admins := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/auth/me", anyRole, authH.Me)

		users := v1.Group("/users", admins)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}

		// Products: everyone reads, managers write
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.GET("/products/:id/price-history", managers, productsH.PriceHistory)
		products := v1.Group("/products", managers)
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
			products.PATCH("/:id/stock", productsH.AdjustStock)
			products.PATCH("/:id/deactivate", productsH.Deactivate)
			products.PATCH("/:id/reactivate", productsH.Reactivate)
		}

		v1.GET("/categories", anyRole, categoriesH.List)
		v1.GET("/categories/:id", anyRole, categoriesH.Get)
		categories := v1.Group("/categories", managers)
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Deactivate)
		}

		suppliers := v1.Group("/suppliers", managers)
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.Get)
			suppliers.PUT("/:id", suppliersH.Update)
			suppliers.DELETE("/:id", suppliersH.Deactivate)
		}

		// Cashiers register customers at the till; only managers remove them
		customers := v1.Group("/customers")
		{
			customers.POST("", anyRole, customersH.Create)
			customers.GET("", anyRole, customersH.List)
			customers.GET("/:id", anyRole, customersH.Get)
			customers.PUT("/:id", anyRole, customersH.Update)
			customers.DELETE("/:id", managers, customersH.Deactivate)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", anyRole, salesH.Create)
			sales.GET("", anyRole, salesH.List)
			sales.GET("/:id", anyRole, salesH.Get)
			sales.GET("/:id/receipt", anyRole, salesH.Receipt)
			sales.POST("/:id/complete", anyRole, salesH.Complete)
			sales.POST("/:id/cancel", managers, salesH.Cancel)
		}

		inventory := v1.Group("/inventory", managers)
		{
			inventory.GET("/movements", inventoryH.Movements)
			inventory.GET("/alerts", inventoryH.Alerts)
		}

		reports := v1.Group("/reports", managers)
		{
			reports.GET("/sales-summary", reportsH.SalesSummary)
			reports.GET("/top-products", reportsH.TopProducts)
		}
	}

	// Swagger UI, only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

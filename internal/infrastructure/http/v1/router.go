// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"storefront/internal/domain/catalog/product"
	"storefront/internal/domain/inventory"
	"storefront/internal/domain/orders"
	"storefront/internal/infrastructure/http/v1/handlers"
	"storefront/internal/infrastructure/http/v1/middleware"
	"storefront/internal/infrastructure/storage/postgres"
	"storefront/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool for health checks; nil when running on the in-memory backend
	Pool *postgres.Pool

	ProductService   *product.Service
	OrderService     *orders.Service
	InventoryService *inventory.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	base := handlers.NewBaseHandler()
	productHandler := handlers.NewProductHandler(base, cfg.ProductService)
	orderHandler := handlers.NewOrderHandler(base, cfg.OrderService)
	inventoryHandler := handlers.NewInventoryHandler(base, cfg.InventoryService)

	// API v1
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		productHandler.RegisterRoutes(products)
		products.POST("/:id/inventory", inventoryHandler.AdjustStock)

		orderHandler.RegisterRoutes(v1.Group("/orders"))

		v1.GET("/customers/:customerId/orders", orderHandler.ListByCustomer)
	}

	return router
}

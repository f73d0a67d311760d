// Package main is the entry point for the storefront API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/core/tx"
	"storefront/internal/domain/audit"
	"storefront/internal/domain/catalog/product"
	"storefront/internal/domain/inventory"
	"storefront/internal/domain/orders"
	v1 "storefront/internal/infrastructure/http/v1"
	"storefront/internal/infrastructure/storage/memory"
	"storefront/internal/infrastructure/storage/postgres"
	"storefront/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	driver := getEnv("STORAGE_DRIVER", "postgres")
	log.Infow("starting storefront server", "storage", driver)

	var (
		productRepo product.Repository
		orderRepo   orders.Repository
		txManager   tx.Manager
		auditor     audit.Recorder
		pool        *postgres.Pool
	)

	switch driver {
	case "postgres":
		poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
		if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
			poolCfg.MaxConns = int32(maxConns)
		}

		pool, err = postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()
		log.Info("database connection established")

		pgTxManager := postgres.NewTxManager(pool)
		txManager = pgTxManager
		productRepo = postgres.NewProductRepo(pgTxManager)
		orderRepo = postgres.NewOrderRepo(pgTxManager)

		auditService, err := postgres.NewAuditService(pgTxManager)
		if err != nil {
			log.Fatalw("failed to initialize audit service", "error", err)
		}
		auditor = auditService

	case "memory":
		store := memory.NewStore()
		txManager = memory.NewTxManager(store)
		productRepo = memory.NewProductRepo(store)
		orderRepo = memory.NewOrderRepo(store)
		auditor = audit.Nop{}

	default:
		log.Fatalw("unknown storage driver", "driver", driver)
	}

	// --- Domain services ---
	productService := product.NewService(productRepo, txManager, auditor)
	orderService := orders.NewService(orderRepo, productRepo, txManager, auditor)
	inventoryService := inventory.NewService(productRepo, txManager, auditor)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		Pool:             pool,
		ProductService:   productService,
		OrderService:     orderService,
		InventoryService: inventoryService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// Periodic pool stats for operators
	if pool != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				postgres.LogPoolStats(ctx, pool.Pool)
			}
		}()
	}

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

// Package main provides a CLI tool for creating the schema and seeding demo data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront/internal/core/id"
	"storefront/internal/domain/catalog/product"
	"storefront/internal/infrastructure/storage/postgres"
	"storefront/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := applySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema is up to date")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoProducts(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo products", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func applySchema(ctx context.Context, pool *postgres.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL,
			price      NUMERIC(15,2) NOT NULL CHECK (price > 0),
			description TEXT,
			category   TEXT NOT NULL,
			stock      BIGINT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			version    INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id          UUID PRIMARY KEY,
			customer_id TEXT NOT NULL,
			status      TEXT NOT NULL,
			version     INTEGER NOT NULL DEFAULT 1,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id, created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS order_items (
			order_id   UUID NOT NULL REFERENCES orders (id),
			line_no    INTEGER NOT NULL,
			product_id UUID NOT NULL,
			name       TEXT NOT NULL,
			price      NUMERIC(15,2) NOT NULL,
			quantity   BIGINT NOT NULL CHECK (quantity > 0),
			PRIMARY KEY (order_id, line_no)
		)`,

		`CREATE TABLE IF NOT EXISTS sys_audit (
			id                 UUID PRIMARY KEY,
			entity_type        TEXT NOT NULL,
			entity_id          UUID NOT NULL,
			action             TEXT NOT NULL,
			changes            JSONB,
			changes_compressed BYTEA,
			compression_algo   TEXT NOT NULL DEFAULT 'none',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sys_audit_entity ON sys_audit (entity_type, entity_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}

	return nil
}

func seedDemoProducts(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	demo := []struct {
		name     string
		price    string
		category string
		stock    int64
	}{
		{"Mechanical Keyboard", "129.90", "peripherals", 40},
		{"Wireless Mouse", "49.50", "peripherals", 120},
		{"27in Monitor", "319.00", "displays", 25},
		{"USB-C Dock", "89.00", "accessories", 60},
		{"Laptop Stand", "35.00", "accessories", 80},
	}

	for _, d := range demo {
		var existingID id.ID
		err := pool.QueryRow(ctx,
			`SELECT id FROM products WHERE name = $1`, d.name,
		).Scan(&existingID)
		if err == nil {
			log.Infow("product already exists", "name", d.name, "id", existingID)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("check product exists: %w", err)
		}

		price, err := decimal.NewFromString(d.price)
		if err != nil {
			return fmt.Errorf("parse price for %s: %w", d.name, err)
		}

		p := product.New(d.name, price, d.category, d.stock)
		_, err = pool.Exec(ctx, `
			INSERT INTO products (id, name, price, description, category, stock, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, p.ID, p.Name, p.Price, p.Description, p.Category, p.Stock, p.Version, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", d.name, err)
		}

		log.Infow("product seeded", "name", d.name, "id", p.ID)
	}

	return nil
}

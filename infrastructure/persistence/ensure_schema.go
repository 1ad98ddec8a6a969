package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureSchema creates the portal tables when they are missing. Safe to call
// at startup; every statement is idempotent.
func EnsureSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS portal_users (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			user_name TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'vendor',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			vendor_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL,
			compare_at_price TEXT,
			sku TEXT NOT NULL DEFAULT '',
			barcode TEXT NOT NULL DEFAULT '',
			inventory_quantity INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			weight DOUBLE PRECISION,
			weight_unit TEXT NOT NULL DEFAULT '',
			vendor_display_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			publish_state TEXT,
			publish_note TEXT,
			platform_product_id TEXT,
			platform_variant_id TEXT,
			image_urls TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_vendor_id ON products (vendor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_products_status ON products (status)`,
		`CREATE TABLE IF NOT EXISTS storefront_credentials (
			id BIGSERIAL PRIMARY KEY,
			storefront_id TEXT NOT NULL UNIQUE,
			access_token TEXT NOT NULL,
			expires_at TIMESTAMPTZ,
			scopes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema failed: %w", err)
		}
	}
	return nil
}

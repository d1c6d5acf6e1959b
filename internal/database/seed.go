package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SeedProduct is a catalog row inserted by Seed.
type SeedProduct struct {
	Name  string
	Slug  string
	SKU      string
	Category string
	Price    decimal.Decimal
	Stock    int
}

// SampleProducts is the demo catalog.
var SampleProducts = []SeedProduct{
	{Name: "Hydrating Face Serum", Slug: "hydrating-face-serum", SKU: "HFS-001", Category: "Skincare", Price: decimal.RequireFromString("45.99"), Stock: 45},
	{Name: "Moisturizing Cream", Slug: "moisturizing-cream", SKU: "MC-001", Category: "Skincare", Price: decimal.RequireFromString("38.50"), Stock: 67},
	{Name: "Lip Gloss Pro", Slug: "lip-gloss-pro", SKU: "LG-PRO-001", Category: "Makeup", Price: decimal.RequireFromString("12.99"), Stock: 145},
	{Name: "Lipstick Collection", Slug: "lipstick-collection", SKU: "LS-001", Category: "Makeup", Price: decimal.RequireFromString("25.99"), Stock: 89},
	{Name: "Foundation Base", Slug: "foundation-base", SKU: "FB-001", Category: "Makeup", Price: decimal.RequireFromString("24.99"), Stock: 89},
	{Name: "Blush Pink Dream", Slug: "blush-pink-dream", SKU: "BPD-001", Category: "Makeup", Price: decimal.RequireFromString("14.99"), Stock: 167},
}

// Seed inserts products that are not already present, matched by slug, and
// returns the number of rows inserted.
func Seed(ctx context.Context, pool *pgxpool.Pool, products []SeedProduct, logger zerolog.Logger) (int, error) {
	query := `
		INSERT INTO products (name, slug, sku, category, price, stock, is_active)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, TRUE)
		ON CONFLICT (slug) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.Name, p.Slug, p.SKU, p.Category, p.Price, p.Stock)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for _, p := range products {
		tag, err := results.Exec()
		if err != nil {
			logger.Error().Err(err).Str("slug", p.Slug).Msg("failed to seed product")
			return inserted, fmt.Errorf("failed to seed product %s: %w", p.Slug, err)
		}
		inserted += int(tag.RowsAffected())
	}

	logger.Info().
		Int("inserted", inserted).
		Int("skipped", len(products)-inserted).
		Msg("catalog seeded")

	return inserted, nil
}

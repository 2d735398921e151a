package main

import (
	"context"
	"fmt"
	"os"

	"fashion-shop/internal/config"
	"fashion-shop/internal/database"
	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type sampleProduct struct {
	name     string
	slug     string
	category string
	price    int64
	sale     int64
	sizes    map[string]int // size -> stock
}

var catalog = []sampleProduct{
	{name: "Linen Shirt", slug: "linen-shirt", category: "shirts", price: 350000, sale: 290000, sizes: map[string]int{"S": 10, "M": 25, "L": 15}},
	{name: "Denim Jacket", slug: "denim-jacket", category: "outerwear", price: 890000, sizes: map[string]int{"M": 8, "L": 6}},
	{name: "Silk Scarf", slug: "silk-scarf", category: "accessories", price: 190000, sizes: map[string]int{"One size": 40}},
}

// Connects with the server's configuration, applies migrations and inserts
// a small catalogue for local development. Existing slugs are left alone.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := database.Migrate(cfg.Database.ConnectionString(), zerolog.Nop()); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeding database: %s\n", dbName)

	for _, p := range catalog {
		inserted, err := seed(ctx, conn, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed %s: %v\n", p.slug, err)
			os.Exit(1)
		}
		if inserted {
			fmt.Printf("  + %s (%d variants)\n", p.slug, len(p.sizes))
		} else {
			fmt.Printf("  = %s already present\n", p.slug)
		}
	}
}

func seed(ctx context.Context, conn *pgx.Conn, p sampleProduct) (bool, error) {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	price := decimal.NewFromInt(p.price)
	sale := price
	if p.sale > 0 {
		sale = decimal.NewFromInt(p.sale)
	}
	total := 0
	for _, stock := range p.sizes {
		total += stock
	}

	productID := uuid.New()
	tag, err := tx.Exec(ctx, `
		INSERT INTO products (id, name, slug, category, price, price_sale, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slug) DO NOTHING
	`, productID, p.name, p.slug, p.category, price, sale, total)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	batch := &pgx.Batch{}
	for size, stock := range p.sizes {
		batch.Queue(`
			INSERT INTO variants (id, product_id, attributes, price, price_sale, quantity, weight, length, width, height)
			VALUES ($1, $2, $3, $4, $5, $6, 300, 30, 25, 3)
		`, uuid.New(), productID, []model.Attribute{{Name: "Size", Value: size}}, price, sale, stock)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

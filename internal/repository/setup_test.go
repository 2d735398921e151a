package repository

import (
	"context"
	"testing"
	"time"

	"fashion-shop/internal/database"
	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container with the schema migrated.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := database.Open(ctx, connStr, database.DefaultPoolOptions())
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

type seededVariant struct {
	ProductID uuid.UUID
	VariantID uuid.UUID
}

// seedVariant inserts a product with a single variant holding stock units.
func seedVariant(t *testing.T, pool *pgxpool.Pool, name string, price string, stock int) seededVariant {
	t.Helper()
	ctx := context.Background()

	s := seededVariant{ProductID: uuid.New(), VariantID: uuid.New()}
	p := decimal.RequireFromString(price)

	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, slug, price, price_sale, quantity)
		VALUES ($1, $2, $3, $4, $4, $5)
	`, s.ProductID, name, name+"-"+s.ProductID.String()[:8], p, stock)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO variants (id, product_id, attributes, price, price_sale, quantity, weight, length, width, height)
		VALUES ($1, $2, $3, $4, $4, $5, 200, 30, 20, 2)
	`, s.VariantID, s.ProductID, []model.Attribute{{Name: "Size", Value: "M"}}, p, stock)
	require.NoError(t, err)

	return s
}

func variantQuantity(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()
	var qty int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT quantity FROM variants WHERE id = $1`, id).Scan(&qty))
	return qty
}

func productCounters(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) (quantity, totalSales int) {
	t.Helper()
	err := pool.QueryRow(context.Background(), `SELECT quantity, total_sales FROM products WHERE id = $1`, id).
		Scan(&quantity, &totalSales)
	require.NoError(t, err)
	return quantity, totalSales
}

// newTestOrder builds a placed order for one line of the seeded variant.
func newTestOrder(s seededVariant, userID uuid.UUID, qty int) *model.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	price := decimal.NewFromInt(250)
	subtotal := price.Mul(decimal.NewFromInt(int64(qty)))
	shipping := decimal.NewFromInt(15000)
	totals := model.ComputeTotals(subtotal, shipping, decimal.Zero)

	order := &model.Order{
		ID:       uuid.New(),
		UserID:   userID,
		Username: "buyer",
		ShippingAddress: model.ShippingAddress{
			Name: "Buyer", Phone: "0900000000", Address: "1 Street",
			ProvinceID: 202, DistrictID: 1442, WardCode: "20101",
		},
		TotalProductPrice: totals.ProductPrice,
		ShippingPrice:     totals.ShippingPrice,
		TotalDiscount:     totals.Discount,
		TotalPayment:      totals.Payment,
		Status:            model.StatusPlaced,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.Items = []model.OrderItem{{
		ID:         uuid.New(),
		OrderID:    order.ID,
		ProductID:  s.ProductID,
		VariantID:  s.VariantID,
		Name:       "Linen Shirt (M)",
		Attributes: []model.Attribute{{Name: "Size", Value: "M"}},
		Price:      price,
		Quantity:   qty,
	}}
	order.StatusHistory = []model.StatusEntry{{Status: model.StatusPlaced, Description: "order placed", CreatedAt: now}}
	return order
}

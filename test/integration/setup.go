package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"fashion-shop/internal/cache"
	"fashion-shop/internal/database"
	"fashion-shop/internal/handler"
	"fashion-shop/internal/middleware"
	"fashion-shop/internal/model"
	"fashion-shop/internal/payment"
	"fashion-shop/internal/repository"
	"fashion-shop/internal/router"
	"fashion-shop/internal/service"
	"fashion-shop/internal/shipping"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const jwtSecret = "integration-secret"

// SetupTestDB starts a PostgreSQL container, applies the migrations and
// returns a pool that is closed when the test ends.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(connStr, zerolog.Nop()))

	pool, err := database.Open(ctx, connStr, database.DefaultPoolOptions())
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return pool
}

// SeedVariant inserts a product with one size M variant and returns the
// variant id.
func SeedVariant(t *testing.T, pool *pgxpool.Pool, name string, price int64, stock int) (productID, variantID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	productID, variantID = uuid.New(), uuid.New()
	p := decimal.NewFromInt(price)

	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, slug, price, price_sale, quantity)
		VALUES ($1, $2, $3, $4, $4, $5)
	`, productID, name, name+"-"+productID.String()[:8], p, stock)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO variants (id, product_id, attributes, price, price_sale, quantity, weight, length, width, height)
		VALUES ($1, $2, $3, $4, $4, $5, 200, 30, 20, 2)
	`, variantID, productID, []model.Attribute{{Name: "Size", Value: "M"}}, p, stock)
	require.NoError(t, err)

	return productID, variantID
}

// VariantStock reads the current stock of a variant.
func VariantStock(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()
	var qty int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT quantity FROM variants WHERE id = $1`, id).Scan(&qty))
	return qty
}

// FakeCarrier answers the carrier endpoints the service calls.
type FakeCarrier struct {
	*httptest.Server

	mu        sync.Mutex
	shipments int
}

func (c *FakeCarrier) Shipments() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shipments
}

func newFakeCarrier(t *testing.T) *FakeCarrier {
	t.Helper()
	c := &FakeCarrier{}

	reply := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 200, "message": "Success", "data": data})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/master-data/province", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []shipping.Province{{ID: 202, Name: "Ho Chi Minh"}})
	})
	mux.HandleFunc("/master-data/district", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []shipping.District{{ID: 1442, ProvinceID: 202, Name: "District 1"}})
	})
	mux.HandleFunc("/master-data/ward", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []shipping.Ward{{Code: "20101", DistrictID: 1442, Name: "Ben Nghe"}})
	})
	mux.HandleFunc("/v2/shipping-order/fee", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"total": 15000})
	})
	mux.HandleFunc("/v2/shipping-order/leadtime", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"leadtime": time.Now().Add(72 * time.Hour).Unix()})
	})
	mux.HandleFunc("/v2/shipping-order/create", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		c.shipments++
		c.mu.Unlock()
		reply(w, map[string]any{"order_code": "GHN-TEST-1", "total_fee": 15000})
	})
	mux.HandleFunc("/v2/a5/gen-token", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"token": "print-token"})
	})

	c.Server = httptest.NewServer(mux)
	t.Cleanup(c.Close)
	return c
}

// FakeGateway answers payment creation. While failing is set it rejects
// every request the way the gateway reports a business error.
type FakeGateway struct {
	*httptest.Server

	mu      sync.Mutex
	failing bool
}

func (g *FakeGateway) SetFailing(failing bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failing = failing
}

func newFakeGateway(t *testing.T) *FakeGateway {
	t.Helper()
	g := &FakeGateway{}

	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			OrderID string `json:"orderId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		g.mu.Lock()
		failing := g.failing
		g.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if failing {
			_ = json.NewEncoder(w).Encode(map[string]any{"resultCode": 1005, "message": "Transaction rejected"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"resultCode": 0,
			"message":    "Successful.",
			"payUrl":     "https://pay.test/checkout/" + body.OrderID,
		})
	}))
	t.Cleanup(g.Close)
	return g
}

// Env is a running API wired to a real database and fake providers.
type Env struct {
	Pool    *pgxpool.Pool
	Carrier *FakeCarrier
	Gateway *FakeGateway
	Handler http.Handler
}

// SetupEnv builds the full HTTP stack the way the server binary does.
func SetupEnv(t *testing.T) *Env {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	logger := zerolog.Nop()
	pool := SetupTestDB(t)
	carrierSrv := newFakeCarrier(t)
	gatewaySrv := newFakeGateway(t)

	orders := repository.NewOrderRepository(pool, logger)
	inventory := repository.NewInventoryRepository(pool, logger)
	discounts := repository.NewDiscountRepository(pool, logger)
	payments := repository.NewPaymentRepository(pool, logger)
	deliveries := repository.NewDeliveryRepository(pool, logger)
	carts := repository.NewCartRepository(pool, logger)
	products := repository.NewProductRepository(pool, logger)

	carrier := shipping.NewClient(shipping.Config{
		BaseURL:        carrierSrv.URL,
		PrintURL:       carrierSrv.URL + "/print",
		Token:          "carrier-token",
		ShopID:         1,
		ServiceID:      53320,
		FromDistrictID: 1454,
		Timeout:        5 * time.Second,
	}, logger)
	directory := shipping.NewCachedDirectory(carrier, cache.Nop{}, time.Hour, logger)

	gateway := payment.NewClient(payment.Config{
		Endpoint:    gatewaySrv.URL,
		PartnerCode: "TESTPARTNER",
		AccessKey:   "access",
		SecretKey:   "secret",
		RedirectURL: "https://shop.test",
		IPNURL:      "https://api.shop.test",
		RequestType: "captureWallet",
		Lang:        "en",
		Timeout:     5 * time.Second,
	}, logger)

	discountService := service.NewDiscountService(discounts, inventory, nil, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		Orders:     orders,
		Inventory:  inventory,
		Discounts:  discounts,
		Payments:   payments,
		Deliveries: deliveries,
		Carts:      carts,
		Carrier:    carrier,
		Directory:  directory,
		Gateway:    gateway,
		ServiceID:  53320,
	}, logger)

	h := router.New(router.Handlers{
		Product:  handler.NewProductHandler(service.NewProductService(products, logger), logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Discount: handler.NewDiscountHandler(discountService, logger),
		Cart:     handler.NewCartHandler(service.NewCartService(carts, inventory, logger), logger),
		Delivery: handler.NewDeliveryHandler(service.NewDeliveryService(carrier, directory, inventory, logger), logger),
	}, jwtSecret, logger)

	return &Env{Pool: pool, Carrier: carrierSrv, Gateway: gatewaySrv, Handler: h}
}

// Token signs a bearer token for a new caller with role.
func Token(t *testing.T, role model.Role) (string, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	claims := middleware.Claims{
		Name: string(role) + "-user",
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return signed, id
}

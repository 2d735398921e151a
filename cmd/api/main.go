package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fashion-shop/internal/cache"
	"fashion-shop/internal/config"
	"fashion-shop/internal/database"
	"fashion-shop/internal/discount"
	"fashion-shop/internal/events"
	"fashion-shop/internal/handler"
	"fashion-shop/internal/payment"
	"fashion-shop/internal/repository"
	"fashion-shop/internal/router"
	"fashion-shop/internal/service"
	"fashion-shop/internal/shipping"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting fashion-shop API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	inventoryRepo := repository.NewInventoryRepository(pool, logger)
	discountRepo := repository.NewDiscountRepository(pool, logger)
	paymentRepo := repository.NewPaymentRepository(pool, logger)
	deliveryRepo := repository.NewDeliveryRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)

	var addressCache cache.Cache = cache.Nop{}
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, address lookups will not be cached")
		} else {
			defer client.Close()
			addressCache = cache.NewRedisCache(client, cfg.Redis.Prefix)
		}
	}

	carrier := shipping.NewClient(shipping.Config{
		BaseURL:        cfg.Shipping.BaseURL,
		PrintURL:       cfg.Shipping.PrintURL,
		Token:          cfg.Shipping.Token,
		ShopID:         cfg.Shipping.ShopID,
		ServiceID:      cfg.Shipping.ServiceID,
		FromDistrictID: cfg.Shipping.FromDistrictID,
		Timeout:        cfg.Shipping.Timeout,
	}, logger)
	directory := shipping.NewCachedDirectory(carrier, addressCache, cfg.Shipping.CacheTTL, logger)

	gateway := payment.NewClient(payment.Config{
		Endpoint:    cfg.Payment.Endpoint,
		PartnerCode: cfg.Payment.PartnerCode,
		AccessKey:   cfg.Payment.AccessKey,
		SecretKey:   cfg.Payment.SecretKey,
		RedirectURL: cfg.Payment.RedirectURL,
		IPNURL:      cfg.Payment.IPNURL,
		RequestType: cfg.Payment.RequestType,
		Lang:        cfg.Payment.Lang,
		Timeout:     cfg.Payment.Timeout,
	}, logger)

	publisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	productService := service.NewProductService(productRepo, logger)
	discountService := service.NewDiscountService(discountRepo, inventoryRepo, nil, logger)
	cartService := service.NewCartService(cartRepo, inventoryRepo, logger)
	deliveryService := service.NewDeliveryService(carrier, directory, inventoryRepo, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		Orders:     orderRepo,
		Inventory:  inventoryRepo,
		Discounts:  discountRepo,
		Payments:   paymentRepo,
		Deliveries: deliveryRepo,
		Carts:      cartRepo,
		Carrier:    carrier,
		Directory:  directory,
		Gateway:    gateway,
		Publisher:  publisher,
		ServiceID:  cfg.Shipping.ServiceID,
	}, logger)

	if err := importDiscountCodes(ctx, cfg.DiscountImport, discountService, logger); err != nil {
		return err
	}

	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Discount: handler.NewDiscountHandler(discountService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Delivery: handler.NewDeliveryHandler(deliveryService, logger),
	}, cfg.Auth.JWTSecret, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) (events.Publisher, error) {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled")
		return events.Nop{}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	return publisher, nil
}

// importDiscountCodes upserts the configured definition files, reading from
// S3 first when enabled and falling back to the local file system.
func importDiscountCodes(ctx context.Context, cfg config.DiscountImportConfig, store discount.Store, logger zerolog.Logger) error {
	if len(cfg.Files) == 0 {
		return nil
	}

	loader := discount.NewFileLoader(logger)
	if cfg.S3Enabled {
		s3Loader, err := discount.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = discount.NewFallbackLoader(s3Loader, loader, cfg.S3Prefix, logger)
		}
	}

	n, err := discount.NewImporter(loader, store, logger).Import(ctx, cfg.Files)
	if err != nil {
		return fmt.Errorf("failed to import discount codes: %w", err)
	}
	logger.Info().Int("codes", n).Msg("discount codes imported")
	return nil
}

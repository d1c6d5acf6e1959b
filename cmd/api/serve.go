package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sleek-shop/internal/cache"
	"sleek-shop/internal/config"
	"sleek-shop/internal/database"
	"sleek-shop/internal/events"
	"sleek-shop/internal/handler"
	"sleek-shop/internal/middleware"
	"sleek-shop/internal/pricing"
	"sleek-shop/internal/repository"
	"sleek-shop/internal/router"
	"sleek-shop/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting sleek-shop API server")

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
	dashboardRepo := repository.NewDashboardRepository(pool, logger)

	rates, err := loadRateTable(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load pricing rates: %w", err)
	}
	logger.Info().
		Str("tax_rate", rates.TaxRate.String()).
		Int("shipping_methods", len(rates.ShippingFees)).
		Msg("pricing rates loaded")

	// A nil store disables idempotency keys.
	var store service.IdempotencyStore
	if cfg.Redis.Enabled {
		rdb, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		store = cache.NewRedisIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL, logger)
	} else {
		logger.Info().Msg("idempotency keys disabled (redis disabled)")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafka, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize kafka publisher: %w", err)
		}
		publisher = kafka
	}
	defer publisher.Close()

	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, pricing.NewCalculator(rates), store, publisher, logger)
	dashboardService := service.NewDashboardService(dashboardRepo, logger)

	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, logger)

	mux := router.New(productHandler, orderHandler, dashboardHandler, auth, router.Options{
		CORSOrigin: cfg.Server.CORSOrigin,
		Health:     pool.Ping,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
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
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
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

// loadRateTable resolves the pricing table from the configured file, trying
// S3 first when enabled, and applies any tax rate override.
func loadRateTable(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pricing.RateTable, error) {
	loader := pricing.NewFileLoader(logger)

	if cfg.S3.Enabled {
		s3Loader, err := pricing.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			loader = pricing.NewFallbackLoader(s3Loader, loader, cfg.S3.Prefix, logger)
		}
	}

	table, err := pricing.LoadRates(ctx, loader, cfg.Pricing.RatesFile)
	if err != nil {
		return nil, err
	}

	if cfg.Pricing.TaxRate != "" {
		return table.WithTaxRate(cfg.Pricing.TaxRate)
	}
	return table, nil
}

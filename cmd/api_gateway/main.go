package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jar-backoffice/internal/api_gateway"
	"github.com/jar-backoffice/internal/api_gateway/handler"
	"github.com/jar-backoffice/internal/api_gateway/middleware"
	"github.com/jar-backoffice/internal/api_gateway/service"
	"github.com/jar-backoffice/internal/bookkeeping"
	"github.com/jar-backoffice/internal/config"
	"github.com/jar-backoffice/internal/data/cache"
	"github.com/jar-backoffice/internal/data/mongo"
	"github.com/jar-backoffice/internal/data/postgres"
	"github.com/jar-backoffice/internal/logger"
	"github.com/jar-backoffice/internal/platform/auth"
	"github.com/jar-backoffice/internal/platform/metrics"
	"github.com/jar-backoffice/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("backoffice")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	location := cfg.BusinessLocation()

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	redisClient, err := persistence.NewRedisClient(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		log.Error("Failed to initialize token manager", "error", err)
		os.Exit(1)
	}

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.NewRegistry()
	}

	// Repositories
	customerRepo := postgres.NewCustomerRepository(log, postgresDB)
	productRepo := postgres.NewProductRepository(log, postgresDB)
	salesRepo := postgres.NewSalesRepository(log, postgresDB)
	paymentRepo := postgres.NewPaymentRepository(log, postgresDB)
	jarRepo := postgres.NewJarRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	sequenceRepo := postgres.NewSequenceRepository(log, postgresDB)
	reportRepo := postgres.NewReportRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	locationRepo := postgres.NewLocationRepository(log, postgresDB)
	groupRepo := postgres.NewExpenseGroupRepository(log, postgresDB)
	expenseRepo := postgres.NewExpenseRepository(log, postgresDB)
	statementRepo := mongo.NewStatementRepository(log, mongoDB.Database())
	listCache := cache.NewListCache(log, redisClient, cfg.Redis.CacheTTL, registry)

	// Ledger writes
	outboxManager := bookkeeping.NewOutboxManager(outboxRepo, log)
	chainer := bookkeeping.NewBalanceChainer(postgresDB, customerRepo, ledgerRepo, outboxManager, registry, location, log)

	// Services
	clock := service.Clock{Location: location}
	customerService := service.NewCustomerService(log, postgresDB, customerRepo, sequenceRepo, locationRepo, listCache, clock)
	productService := service.NewProductService(log, productRepo, listCache)
	saleService := service.NewSaleService(log, postgresDB, chainer, salesRepo, productRepo, jarRepo, paymentRepo, sequenceRepo, clock)
	paymentService := service.NewPaymentService(log, postgresDB, chainer, paymentRepo, salesRepo, clock)
	jarService := service.NewJarService(log, jarRepo, customerRepo, clock)
	ledgerService := service.NewLedgerService(log, chainer, ledgerRepo, customerRepo, statementRepo)
	reportService := service.NewReportService(log, reportRepo, locationRepo)
	locationService := service.NewLocationService(log, locationRepo)
	expenseService := service.NewExpenseService(log, groupRepo, expenseRepo, locationRepo, clock)

	var limiter *middleware.ClientLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = middleware.NewClientLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	server := api_gateway.NewServer(log, cfg, api_gateway.Handlers{
		Customers: handler.NewCustomerHandler(log, customerService, clock),
		Products:  handler.NewProductHandler(log, productService),
		Sales:     handler.NewSaleHandler(log, saleService, clock),
		Payments:  handler.NewPaymentHandler(log, paymentService, clock),
		Jars:      handler.NewJarHandler(log, jarService, clock),
		Ledger:    handler.NewLedgerHandler(log, ledgerService, jarService),
		Reports:   handler.NewReportHandler(log, reportService, clock),
		Locations: handler.NewLocationHandler(log, locationService),
		Expenses:  handler.NewExpenseHandler(log, expenseService, clock),
	}, api_gateway.RouterOptions{
		Tokens:      tokens,
		Limiter:     limiter,
		Metrics:     registry,
		MetricsPath: cfg.Metrics.Path,
		Readiness: map[string]func(ctx context.Context) error{
			"postgres": postgresDB.Ping,
			"mongodb":  mongoDB.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	})
	log.Info("REST server initialized", "time_zone", location.String())

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before closing the stores they use
	var shutdownErr error
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		shutdownErr = err
	}

	postgresDB.Close()

	if err := redisClient.Close(); err != nil {
		log.Error("Error closing Redis client", "error", err)
		shutdownErr = err
	}

	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
		shutdownErr = err
	}

	if serverErr != nil || shutdownErr != nil {
		log.Error("Server shutdown completed with errors")
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}

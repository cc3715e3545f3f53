package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jar-backoffice/internal/config"
	"github.com/jar-backoffice/internal/data/mongo"
	"github.com/jar-backoffice/internal/data/postgres"
	"github.com/jar-backoffice/internal/ledger_relay/consumer"
	"github.com/jar-backoffice/internal/ledger_relay/outbox_poller"
	"github.com/jar-backoffice/internal/ledger_relay/service"
	"github.com/jar-backoffice/internal/logger"
	"github.com/jar-backoffice/internal/platform/messaging/consumers"
	"github.com/jar-backoffice/internal/platform/messaging/producers"
	"github.com/jar-backoffice/internal/platform/metrics"
	"github.com/jar-backoffice/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_relay")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting ledger relay",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	registry := metrics.NewRegistry()

	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	statementRepo := mongo.NewStatementRepository(log, mongoDB.Database())
	if err := statementRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure statement indexes", "error", err)
		os.Exit(1)
	}

	eventProducer, err := producers.NewLedgerEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize ledger event producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ producer", "error", err)
		os.Exit(1)
	}
	// A nil *DLQProducer must not become a non-nil interface
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	publisher := outbox_poller.NewBreakerPublisher(
		outboxRepo,
		eventProducer,
		outbox_poller.BreakerSettings{
			Failures: cfg.Outbox.BreakerFailures,
			Timeout:  cfg.Outbox.BreakerTimeout,
		},
		log,
	)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, publisher, deadLetters, registry, log)

	projector := service.NewStatementProjector(statementRepo, registry, log)
	projectionPool, err := service.NewWorkerPoolProjectionService(
		projector,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to create projection worker pool", "error", err)
		os.Exit(1)
	}
	eventHandler := consumer.NewLedgerEventHandler(log, projectionPool, deadLetters)
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	errChan := make(chan error, 2)
	var wg sync.WaitGroup

	if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.LedgerTopic, cfg.Kafka.ConsumerGroup, eventHandler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to ledger events", "error", err)
		os.Exit(1)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, registry.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           mux,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
		}
		go func() {
			log.Info("Serving relay metrics", "port", cfg.Server.Port, "path", cfg.Metrics.Path)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()
	select {
	case <-wgChan:
		log.Info("Outbox poller stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error stopping metrics server", "error", err)
		}
	}
	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	projectionPool.Shutdown()
	if err := eventProducer.Close(); err != nil {
		log.Error("Error closing ledger event producer", "error", err)
	}
	if err := dlqProducer.Close(); err != nil {
		log.Error("Error closing DLQ producer", "error", err)
	}
	postgresDB.Close()
	if err := mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Ledger relay stopped with error", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Ledger relay stopped")
}

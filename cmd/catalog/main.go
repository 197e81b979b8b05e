package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/craftspace/catalog/internal/api/handlers/event"
	"github.com/craftspace/catalog/internal/api/handlers/product"
	"github.com/craftspace/catalog/internal/api/handlers/profile"
	"github.com/craftspace/catalog/internal/api/handlers/subscriptionbox"
	"github.com/craftspace/catalog/internal/api/handlers/workshop"
	"github.com/craftspace/catalog/internal/api/router"
	"github.com/craftspace/catalog/internal/api/server"
	"github.com/craftspace/catalog/internal/config"
	"github.com/craftspace/catalog/internal/infra/kafka/consumer"
	"github.com/craftspace/catalog/internal/infra/kafka/producer"
	auditmsg "github.com/craftspace/catalog/internal/kafka/handlers/audit"
	"github.com/craftspace/catalog/internal/processor"
	orphanrepo "github.com/craftspace/catalog/internal/repository/orphan"
	recordrepo "github.com/craftspace/catalog/internal/repository/record"
	auditsvc "github.com/craftspace/catalog/internal/service/audit"
	"github.com/craftspace/catalog/internal/service/subscription"
	"github.com/craftspace/catalog/internal/service/upsert"
	imagestore "github.com/craftspace/catalog/internal/storage/image"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config")

	// Connect to PostgreSQL (master and slaves).
	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Retry strategy for the audit queue infrastructure.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Initialize image storage (MinIO).
	blobs, err := imagestore.NewStorage(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.BucketName, cfg.Storage.UseSSL)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
	}

	// Repositories, audit pipeline, and the upsert orchestrator.
	records := recordrepo.NewRepository(db)
	orphans := orphanrepo.NewRepository(db)

	p := producer.New(&cfg.Kafka, strategy)
	audit := auditsvc.NewRecorder(p)

	orchestrator := upsert.New(blobs, records, audit)
	lifecycle := subscription.NewService(records)
	prepare := processor.New(cfg.Upload.MaxDimension, cfg.Upload.WatermarkText, cfg.Upload.FontPath)

	// Per-entity form controllers.
	handlers := router.Handlers{
		Events:    event.NewHandler(orchestrator, records, prepare, audit),
		Workshops: workshop.NewHandler(orchestrator, records, prepare, audit),
		Products:  product.NewHandler(orchestrator, records, prepare, audit),
		Boxes:     subscriptionbox.NewHandler(orchestrator, records, prepare, audit, lifecycle),
		Profiles:  profile.NewHandler(orchestrator, records, prepare, audit),
	}

	// Kafka consumer persisting orphaned-blob events for manual cleanup.
	auditHandler := auditmsg.NewHandler(orphans)
	c := consumer.New(&cfg.Kafka, strategy, auditHandler)

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// Start HTTP server in a separate goroutine.
	r := router.Setup(handlers)
	s := server.New(cfg.Server.HTTPPort, r)
	go func() {
		if err := s.ListenAndServe(); err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for the consumer goroutine to finish.
	wg.Wait()

	// Graceful shutdown with timeout for HTTP server.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}
	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	// Close master and slave databases.
	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}
	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	// Close Kafka producer and consumer clients.
	if err = p.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
	}
	if err = c.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
	}
}

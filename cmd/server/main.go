// Command server runs the back-content HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	eventapp "github.com/scholarly/backcontent/internal/application/event"
	identityapp "github.com/scholarly/backcontent/internal/application/identity"
	journalapp "github.com/scholarly/backcontent/internal/application/journal"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/auth"
	"github.com/scholarly/backcontent/internal/infrastructure/cache"
	"github.com/scholarly/backcontent/internal/infrastructure/citation"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/scholarly/backcontent/internal/infrastructure/crossref"
	"github.com/scholarly/backcontent/internal/infrastructure/event"
	"github.com/scholarly/backcontent/internal/infrastructure/jats"
	"github.com/scholarly/backcontent/internal/infrastructure/logger"
	"github.com/scholarly/backcontent/internal/infrastructure/messaging"
	"github.com/scholarly/backcontent/internal/infrastructure/metrics"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence"
	"github.com/scholarly/backcontent/internal/infrastructure/storage"
	"github.com/scholarly/backcontent/internal/infrastructure/telemetry"
	"github.com/scholarly/backcontent/internal/interfaces/http/handler"
	"github.com/scholarly/backcontent/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const (
	busWorkers   = 4
	busQueueSize = 256
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: time.RFC3339,
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	rootCtx := context.Background()

	tp, err := telemetry.NewTracerProvider(rootCtx, telemetry.NewConfig(cfg.Telemetry, version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.DBName),
	)

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.NewDBTracingConfig(cfg.Telemetry), log); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	stores := cache.NewStores(rootCtx, cfg.Redis, log)
	defer func() {
		if err := stores.Close(); err != nil {
			log.Warn("Failed to close cache stores", zap.Error(err))
		}
	}()

	objects, err := newObjectStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	resolver, err := crossref.NewClient(crossref.NewConfig(cfg.Crossref), log, crossref.WithCache(stores.Responses))
	if err != nil {
		log.Fatal("Failed to initialize Crossref client", zap.Error(err))
	}
	scraper := citation.NewScraper(citation.NewConfig(cfg.Scraper), log)

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder(cfg.Metrics)
	}

	bus := event.NewInMemoryEventBus(log, event.WithWorkers(busWorkers, busQueueSize))

	// Repositories
	articleRepo := persistence.NewGormArticleRepository(db.DB)
	galleyRepo := persistence.NewGormGalleyRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)
	issueRepo := persistence.NewGormIssueRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	articleService := backcontent.NewArticleService(txScope, articleRepo, galleyRepo, issueRepo, accountRepo, log)
	authorService := backcontent.NewAuthorService(txScope, articleRepo, accountRepo, log)
	galleyService := backcontent.NewGalleyService(articleRepo, galleyRepo, objects, jats.NewRenderer(), log)
	galleyConfig := backcontent.DefaultGalleyServiceConfig()
	if cfg.Storage.DownloadURLExpiry > 0 {
		galleyConfig.DownloadURLExpiry = cfg.Storage.DownloadURLExpiry
	}
	galleyService.SetConfig(galleyConfig)
	importService := backcontent.NewImportService(txScope, resolver, scraper, jats.NewParser(), galleyService, log)
	publicationService := backcontent.NewPublicationService(txScope, log)
	wizardService := backcontent.NewWizardService(articleService, authorService, galleyService, publicationService)

	articleService.SetEventPublisher(bus)
	importService.SetEventPublisher(bus)
	publicationService.SetEventPublisher(bus)
	if recorder != nil {
		articleService.SetMetrics(recorder)
		galleyService.SetMetrics(recorder)
		importService.SetMetrics(recorder)
		publicationService.SetMetrics(recorder)
	}

	journalService := journalapp.NewJournalService(journalRepo, issueRepo, log)
	accountService := identityapp.NewAccountService(accountRepo, journalRepo, log)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(accountRepo, jwtService, log)

	// Event handlers
	notifier := eventapp.NewPublicationNotifier(log, eventapp.DefaultActivityCapacity)
	bus.Subscribe(notifier, submission.EventTypeArticlePublished, submission.EventTypeArticleCreated)
	if recorder != nil {
		bus.Subscribe(recorder.NewEventCounter(), submission.EventTypeArticlePublished, submission.EventTypeArticleCreated)
	}

	nc, err := connectForwarder(cfg, bus, stores, log)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	if nc != nil {
		defer func() {
			if err := nc.Drain(); err != nil {
				log.Warn("NATS drain failed", zap.Error(err))
			}
		}()
	}

	if err := bus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bus.Stop(ctx); err != nil {
			log.Warn("Event bus did not drain", zap.Error(err))
		}
	}()

	routerOpts := router.Options{
		Config:  cfg,
		JWT:     jwtService,
		Metrics: recorder,
		Logger:  log,
	}
	if served, ok := objects.(http.Handler); ok {
		routerOpts.Objects = served
	}
	engine, stopRouter := router.NewEngine(routerOpts, router.Handlers{
		Articles: handler.NewArticleHandler(articleService, wizardService, publicationService),
		Authors:  handler.NewAuthorHandler(authorService),
		Galleys:  handler.NewGalleyHandler(galleyService),
		Imports:  handler.NewImportHandler(importService),
		Journals: handler.NewJournalHandler(journalService),
		Accounts: handler.NewAccountHandler(accountService, authService),
		System:   handler.NewSystemHandler(cfg.App.Name, version, db, notifier),
	})
	defer stopRouter()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		log.Info("Shutting down server...")
	case err := <-serverErr:
		log.Error("Server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage picks S3 when a bucket is configured
func newObjectStorage(cfg *config.Config, log *zap.Logger) (backcontent.ObjectStorage, error) {
	if cfg.Storage.Bucket == "" {
		log.Warn("No storage bucket configured, galley files are kept in memory")
		return storage.NewMemoryObjectStorage("http://localhost:" + cfg.App.Port + "/objects"), nil
	}
	s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	return s3, nil
}

// connectForwarder subscribes a NATS forwarder for published articles.
// It returns a nil connection when messaging is disabled.
func connectForwarder(cfg *config.Config, bus *event.InMemoryEventBus, stores *cache.Stores, log *zap.Logger) (*nats.Conn, error) {
	if !cfg.Messaging.Enabled {
		return nil, nil
	}
	nc, err := messaging.Connect(cfg.Messaging, log)
	if err != nil {
		return nil, err
	}

	forwarded := []string{submission.EventTypeArticlePublished, submission.EventTypeArticleCreated}
	forwarder := messaging.NewForwarder(nc, event.NewDefaultSerializer(), cfg.Messaging.SubjectPrefix, log, forwarded...)
	bus.Subscribe(event.NewIdempotentHandler(forwarder, stores.Idempotency, log), forwarded...)
	return nc, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/scholarly/backcontent/internal/application/backcontent"
	identityapp "github.com/scholarly/backcontent/internal/application/identity"
	journalapp "github.com/scholarly/backcontent/internal/application/journal"
	"github.com/scholarly/backcontent/internal/domain/shared"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/infrastructure/cache"
	"github.com/scholarly/backcontent/internal/infrastructure/citation"
	"github.com/scholarly/backcontent/internal/infrastructure/config"
	"github.com/scholarly/backcontent/internal/infrastructure/crossref"
	"github.com/scholarly/backcontent/internal/infrastructure/event"
	"github.com/scholarly/backcontent/internal/infrastructure/jats"
	"github.com/scholarly/backcontent/internal/infrastructure/logger"
	"github.com/scholarly/backcontent/internal/infrastructure/messaging"
	"github.com/scholarly/backcontent/internal/infrastructure/persistence"
	"github.com/scholarly/backcontent/internal/infrastructure/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services is what the commands operate on
type services struct {
	journals    *journalapp.JournalService
	accounts    *identityapp.AccountService
	imports     *backcontent.ImportService
	publication *backcontent.PublicationService
}

type commandContext struct {
	configFlag *string
	logLevel   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	log     *zap.Logger

	svcOnce sync.Once
	svc     *services
	svcErr  error

	closers []func() error
}

func newCommandContext(configFlag, logLevel *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		logLevel:   logLevel,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if c.config != nil {
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.LoadFile(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *zap.Logger {
	c.logOnce.Do(func() {
		if c.log != nil {
			return
		}
		level := "warn"
		if c.logLevel != nil && *c.logLevel != "" {
			level = *c.logLevel
		}
		log, err := logger.New(&logger.Config{
			Level:      level,
			Format:     "console",
			Output:     "stderr",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			log = zap.NewNop()
		}
		c.log = log
		c.closers = append(c.closers, func() error {
			_ = log.Sync()
			return nil
		})
	})
	return c.log
}

// ensureServices connects to the database and builds the application services.
// Published events are forwarded to NATS when messaging is enabled.
func (c *commandContext) ensureServices(ctx context.Context) (*services, error) {
	c.svcOnce.Do(func() {
		if c.svc != nil {
			return
		}
		cfg, err := c.ensureConfig()
		if err != nil {
			c.svcErr = err
			return
		}
		c.svc, c.svcErr = c.openServices(ctx, cfg)
	})
	return c.svc, c.svcErr
}

func (c *commandContext) openServices(ctx context.Context, cfg *config.Config) (*services, error) {
	log := c.logger()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	c.closers = append(c.closers, db.Close)

	stores := cache.NewStores(ctx, cfg.Redis, log)
	c.closers = append(c.closers, stores.Close)

	resolver, err := crossref.NewClient(crossref.NewConfig(cfg.Crossref), log, crossref.WithCache(stores.Responses))
	if err != nil {
		return nil, err
	}

	var objects backcontent.ObjectStorage = storage.NewMemoryObjectStorage("memory://galleys")
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			return nil, err
		}
		objects = s3
	}

	bus := event.NewInMemoryEventBus(log)
	if cfg.Messaging.Enabled {
		nc, err := messaging.Connect(cfg.Messaging, log)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, nc.Drain)
		types := []string{submission.EventTypeArticlePublished, submission.EventTypeArticleCreated}
		fwd := messaging.NewForwarder(nc, event.NewDefaultSerializer(), cfg.Messaging.SubjectPrefix, log, types...)
		bus.Subscribe(event.NewIdempotentHandler(fwd, stores.Idempotency, log), types...)
	}

	return newServices(db.DB, resolver, citation.NewScraper(citation.NewConfig(cfg.Scraper), log), objects, bus, log), nil
}

// newServices wires the services the commands need over db
func newServices(
	db *gorm.DB,
	resolver backcontent.DOIResolver,
	scraper backcontent.CitationScraper,
	objects backcontent.ObjectStorage,
	publisher shared.EventPublisher,
	log *zap.Logger,
) *services {
	articles := persistence.NewGormArticleRepository(db)
	galleys := persistence.NewGormGalleyRepository(db)
	journals := persistence.NewGormJournalRepository(db)
	issues := persistence.NewGormIssueRepository(db)
	accounts := persistence.NewGormAccountRepository(db)
	tx := persistence.NewGormTransactionScope(db)

	galleySvc := backcontent.NewGalleyService(articles, galleys, objects, jats.NewRenderer(), log)
	importSvc := backcontent.NewImportService(tx, resolver, scraper, jats.NewParser(), galleySvc, log)
	importSvc.SetEventPublisher(publisher)
	publicationSvc := backcontent.NewPublicationService(tx, log)
	publicationSvc.SetEventPublisher(publisher)

	return &services{
		journals:    journalapp.NewJournalService(journals, issues, log),
		accounts:    identityapp.NewAccountService(accounts, journals, log),
		imports:     importSvc,
		publication: publicationSvc,
	}
}

// journalID resolves a journal code or UUID
func (c *commandContext) journalID(ctx context.Context, svc *services, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	j, err := svc.journals.GetJournalByCode(ctx, ref)
	if err != nil {
		return uuid.Nil, fmt.Errorf("journal %q: %w", ref, err)
	}
	return j.ID, nil
}

// accountID resolves an account email or UUID; an empty ref yields nil
func (c *commandContext) accountID(ctx context.Context, svc *services, ref string) (*uuid.UUID, error) {
	if ref == "" {
		return nil, nil
	}
	if id, err := uuid.Parse(ref); err == nil {
		return &id, nil
	}
	a, err := svc.accounts.FindByEmail(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", ref, err)
	}
	return &a.ID, nil
}

func (c *commandContext) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// commandTimeout bounds one command's work against remote services
const commandTimeout = 2 * time.Minute

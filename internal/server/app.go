// Package server builds the SEO reporter's dependencies and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/seo-reporter/internal/api"
	"github.com/JakeFAU/seo-reporter/internal/audit"
	"github.com/JakeFAU/seo-reporter/internal/auth"
	"github.com/JakeFAU/seo-reporter/internal/clock/system"
	"github.com/JakeFAU/seo-reporter/internal/config"
	"github.com/JakeFAU/seo-reporter/internal/hash/sha256"
	"github.com/JakeFAU/seo-reporter/internal/id/sessionid"
	"github.com/JakeFAU/seo-reporter/internal/id/uuid"
	"github.com/JakeFAU/seo-reporter/internal/journal"
	"github.com/JakeFAU/seo-reporter/internal/leads"
	"github.com/JakeFAU/seo-reporter/internal/logging"
	"github.com/JakeFAU/seo-reporter/internal/metrics"
	"github.com/JakeFAU/seo-reporter/internal/outreach"
	"github.com/JakeFAU/seo-reporter/internal/policy/ratelimit"
	gcppublisher "github.com/JakeFAU/seo-reporter/internal/publisher/pubsub"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
	gcsstorage "github.com/JakeFAU/seo-reporter/internal/storage/gcs"
	localstorage "github.com/JakeFAU/seo-reporter/internal/storage/local"
	memorystorage "github.com/JakeFAU/seo-reporter/internal/storage/memory"
	pgstore "github.com/JakeFAU/seo-reporter/internal/storage/postgres"
	"github.com/JakeFAU/seo-reporter/internal/telemetry"
	"github.com/JakeFAU/seo-reporter/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

// Webhook endpoint names double as metric labels.
const (
	auditWebhook  = "audit"
	scrapeWebhook = "scrape"
	emailWebhook  = "email"
)

// App contains the application's dependencies.
type App struct {
	cfg             *config.Config
	logger          *zap.Logger
	store           reporter.Store
	apiServer       *api.Server
	pubsubClient    *pubsub.Client
	pubsubPublisher *pubsub.Publisher
	storage         *storage.Client
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.NewWithLevel(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	metrics.Init()
	telemetry.SetupPropagation()

	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application dependencies", zap.Int("server_port", cfg.Server.Port))

	if err := setupStore(ctx, app); err != nil {
		return nil, err
	}
	blobs, err := setupStorage(ctx, app)
	if err != nil {
		app.closeInfrastructure()
		return nil, err
	}
	publisher, err := setupPublisher(ctx, app)
	if err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	clock := system.New()
	ids := uuid.New()

	var jrnl *journal.Journal
	if blobs != nil || publisher != nil {
		jrnl = journal.New(journal.Config{
			Prefix: cfg.Storage.Prefix,
			Topic:  cfg.PubSub.TopicName,
		}, blobs, publisher, sha256.New(), clock, logger.Named("journal"))
	}

	client := webhook.New(webhook.Config{Timeout: cfg.Webhooks.Timeout}, logger.Named("webhook"))
	auditSvc := audit.NewService(
		client,
		webhook.Endpoint{Name: auditWebhook, URL: cfg.Webhooks.AuditURL, Setting: "N8N_AUDIT_WEBHOOK_URL"},
		app.store,
		ids,
		clock,
		jrnl,
		logger.Named("audit"),
	)
	persister := leads.NewPersister(app.store, ids, clock, logger.Named("leads"))
	leadSvc := leads.NewService(
		client,
		webhook.Endpoint{Name: scrapeWebhook, URL: cfg.Webhooks.ScrapeURL, Setting: "N8N_SCRAPE_WEBHOOK_URL"},
		sessionid.New(),
		persister,
		jrnl,
		logger.Named("leads"),
	)
	outreachSvc := outreach.NewService(
		client,
		webhook.Endpoint{Name: emailWebhook, URL: cfg.Webhooks.EmailURL, Setting: "N8N_SEND_EMAIL_WEBHOOK_URL"},
		jrnl,
		logger.Named("outreach"),
	)

	app.apiServer = api.NewServer(api.Deps{
		Store:    app.store,
		Audits:   auditSvc,
		Leads:    leadSvc,
		Outreach: outreachSvc,
		Auth: auth.NewResolver(app.store, clock, auth.Config{
			Secret:     cfg.Auth.Secret,
			CookieName: cfg.Auth.CookieName,
		}),
	}, api.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		APIKey:         cfg.Server.APIKey,
		AuditRateLimit: ratelimit.Config{
			RPS:   cfg.Server.AuditRateLimitRPS,
			Burst: cfg.Server.AuditRateLimitBurst,
		},
	}, logger.Named("api"))

	return app, nil
}

// Handler exposes the HTTP handler (primarily for testing).
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run serves HTTP until ctx is canceled or a termination signal arrives, then
// shuts down and releases resources.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	runErr := g.Wait()
	return errors.Join(runErr, a.Close())
}

// Close releases every client the app opened.
func (a *App) Close() error {
	a.closeInfrastructure()
	a.logger.Info("shutdown complete")
	if err := a.logger.Sync(); err != nil {
		a.logger.Debug("logger sync failed", zap.Error(err))
	}
	return nil
}

func (a *App) closeInfrastructure() {
	if a.pubsubPublisher != nil {
		a.pubsubPublisher.Stop()
		a.pubsubPublisher = nil
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
		a.pubsubClient = nil
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
		a.storage = nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

func setupStore(ctx context.Context, app *App) error {
	if app.cfg.Database.DSN == "" {
		app.logger.Warn("no database DSN configured, using in-memory store")
		app.store = memorystorage.NewStore()
		return nil
	}
	store, err := openPostgres(ctx, app.cfg)
	if err != nil {
		return err
	}
	app.store = store
	app.logger.Info("postgres store initialized", zap.Int32("max_conns", app.cfg.Database.MaxConns))
	return nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*pgstore.Store, error) {
	store, err := pgstore.New(ctx, pgstore.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres store init failed: %w", err)
	}
	return store, nil
}

// setupStorage returns nil when payload archiving is disabled.
func setupStorage(ctx context.Context, app *App) (reporter.BlobStore, error) {
	switch app.cfg.Storage.Backend {
	case config.StorageGCS:
		app.logger.Info("using GCS storage backend", zap.String("bucket", app.cfg.Storage.Bucket))
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client init failed: %w", err)
		}
		app.storage = client
		blobStore, err := gcsstorage.New(client, gcsstorage.Config{Bucket: app.cfg.Storage.Bucket})
		if err != nil {
			return nil, fmt.Errorf("gcs blob store init failed: %w", err)
		}
		return blobStore, nil
	case config.StorageLocal:
		app.logger.Info("using local storage backend", zap.String("path", app.cfg.Storage.Local.BaseDir))
		blobStore, err := localstorage.New(app.cfg.Storage.Local)
		if err != nil {
			return nil, fmt.Errorf("local blob store init failed: %w", err)
		}
		return blobStore, nil
	case config.StorageMemory:
		app.logger.Info("using in-memory storage backend")
		return memorystorage.NewBlobStore(), nil
	default:
		app.logger.Info("payload archiving disabled")
		return nil, nil
	}
}

// setupPublisher returns nil when no Pub/Sub topic is configured.
func setupPublisher(ctx context.Context, app *App) (reporter.Publisher, error) {
	if !app.cfg.PubSubEnabled() {
		app.logger.Info("no Pub/Sub topic configured, domain events disabled")
		return nil, nil
	}
	client, err := pubsub.NewClient(ctx, app.cfg.PubSub.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("pubsub client init failed: %w", err)
	}
	app.pubsubClient = client
	app.pubsubPublisher = client.Publisher(app.cfg.PubSub.TopicName)
	app.logger.Info(
		"Pub/Sub publisher initialized",
		zap.String("project", app.cfg.PubSub.ProjectID),
		zap.String("topic", app.cfg.PubSub.TopicName),
	)
	return gcppublisher.New(app.pubsubPublisher), nil
}

// Migrate applies the embedded schema to the configured database.
func Migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn (DATABASE_URL) is required to migrate")
	}
	store, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema applied")
	return nil
}

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

	"github.com/okian/dormscore/internal/adapters/http/api"
	"github.com/okian/dormscore/internal/adapters/http/site"
	"github.com/okian/dormscore/internal/adapters/http/swagger"
	"github.com/okian/dormscore/internal/adapters/repository"
	app "github.com/okian/dormscore/internal/app"
	"github.com/okian/dormscore/internal/config"
	"github.com/okian/dormscore/internal/domain/scoring"
	"github.com/okian/dormscore/pkg/logger"
	"github.com/okian/dormscore/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Re-initialize with the configured format, then apply the level
	_ = logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat)))
	loggerInstance := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Runtime collectors on the same registry served at /metrics
	metrics.GetRegistry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := run(ctx, cfg, loggerInstance); err != nil {
		loggerInstance.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves HTTP until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	engine, err := scoring.LoadEngine(cfg.PolicyFile)
	if err != nil {
		return err
	}
	completion, err := cfg.Completion()
	if err != nil {
		return err
	}

	b := buildBackend(ctx, cfg, log)
	defer b.Close()

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithEngine(engine),
		app.WithProvider(b.provider),
		app.WithInvalidator(b.invalidator),
		app.WithCriteriaSource(b.criteria),
		app.WithSemester(cfg.Semester),
		app.WithCompletionDate(completion),
		app.WithNoticeLimitMax(cfg.NoticeLimitMax),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newHandler registers every route and wraps the mux with request IDs.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()

	// Landing page on /, API reference on /api-docs
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)

	// Config.Validate already rejected malformed entries.
	trusted, _ := cfg.TrustedProxyPrefixes()

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc,
		api.WithRevalidationSecret(cfg.RevalidationSecret),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithTrustedProxies(trusted...),
		api.WithNoticeLimitMax(cfg.NoticeLimitMax),
	)
	apiServer.Register(ctx, mux)

	return api.RequestIDMiddleware(mux)
}

// backend is the catalog chain: fallback over an optional cache over an
// optional Postgres store, bottoming out at the bundled tables.
type backend struct {
	provider    repository.Provider
	invalidator repository.Invalidator
	criteria    repository.CriteriaSource
	closers     []func() error
}

// Close releases store connections.
func (b *backend) Close() {
	for _, c := range b.closers {
		_ = c()
	}
}

func buildBackend(ctx context.Context, cfg *config.Config, log logger.Logger) *backend {
	b := &backend{}

	var primary repository.Provider = repository.NewStaticProvider()
	if cfg.PostgresDSN != "" {
		db, err := repository.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Warn(ctx, "postgres unavailable; serving bundled catalog", logger.Error(err))
		} else {
			pg := repository.NewPostgresProvider(db, repository.WithSemester(cfg.Semester))
			primary = pg
			b.criteria = pg
			b.closers = append(b.closers, db.Close)
			log.Info(ctx, "postgres catalog enabled", logger.String("semester", cfg.Semester))
		}
	}

	if cfg.RedisAddr != "" {
		client := repository.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cached := repository.NewCachedProvider(primary, client,
			repository.WithTTL(cfg.CatalogCacheTTL()),
			repository.WithCacheLogger(log.Named("cache")),
		)
		primary = cached
		b.invalidator = cached
		b.closers = append(b.closers, client.Close)
		log.Info(ctx, "catalog cache enabled", logger.String("addr", cfg.RedisAddr), logger.Duration("ttl", cfg.CatalogCacheTTL()))
	}

	b.provider = repository.NewFallbackProvider(primary, repository.WithFallbackLogger(log.Named("fallback")))
	return b
}

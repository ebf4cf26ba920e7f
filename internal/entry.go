// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/starford/webcraft/internal/api"
	"github.com/starford/webcraft/internal/assistant"
	"github.com/starford/webcraft/internal/backend"
	"github.com/starford/webcraft/internal/cache"
	"github.com/starford/webcraft/internal/catalog"
	"github.com/starford/webcraft/internal/chat"
	"github.com/starford/webcraft/internal/dataaccess"
	"github.com/starford/webcraft/internal/mcpserver"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/ratelimit"
	"github.com/starford/webcraft/internal/sse"
	"github.com/starford/webcraft/internal/storage"
	"github.com/starford/webcraft/internal/store"
	"github.com/starford/webcraft/internal/studio"
)

// newLogger builds the process logger: JSON for machines, tint for
// humans. Colour is only used on a terminal.
func newLogger(cfg ApplicationConfig, out io.Writer) *slog.Logger {
	if cfg.LogFormat == LogFormatText {
		noColor := true
		if f, ok := out.(*os.File); ok {
			noColor = !isatty.IsTerminal(f.Fd())
			out = colorable.NewColorable(f)
		}
		return slog.New(tint.NewHandler(out, &tint.Options{
			Level:      cfg.LogLevel,
			TimeFormat: "15:04:05.000",
			NoColor:    noColor,
		}))
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

// components is everything the HTTP and MCP surfaces share.
type components struct {
	db      *store.DB
	cache   cache.Cache
	broker  *sse.Broker
	client  *dataaccess.Client
	chats   *chat.Manager
	studio  *studio.Service
	assets  storage.Provider
	catalog *catalog.Source
}

func (c *components) Close() {
	c.chats.Close()
	c.broker.Close()
	if err := c.cache.Close(); err != nil {
		slog.Warn("cache close failed", slog.String("error", err.Error()))
	}
	closeProvider(c.assets)
	if c.catalog != nil {
		closeProvider(c.catalog.Docs)
	}
	if err := c.db.Close(); err != nil {
		slog.Warn("db close failed", slog.String("error", err.Error()))
	}
}

// closeProvider releases p when it holds a directory handle.
func closeProvider(p storage.Provider) {
	if cl, ok := p.(io.Closer); ok {
		_ = cl.Close()
	}
}

func setup(ctx context.Context, cfg *Config, logger *slog.Logger) (_ *components, err error) {
	c := &components{}

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	defer func() {
		if err != nil {
			closeProvider(c.assets)
			if c.catalog != nil {
				closeProvider(c.catalog.Docs)
			}
			db.Close()
		}
	}()
	c.db = db

	if err := os.MkdirAll(cfg.Assets.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}
	assets, err := storage.NewFS(cfg.Assets.Path)
	if err != nil {
		return nil, fmt.Errorf("init assets: %w", err)
	}
	c.assets = assets

	// Built-in templates first; a directory catalogue may then override ids.
	builtin := catalog.Builtin()
	if _, err := catalog.Sync(ctx, db, builtin, logger); err != nil {
		logger.Warn("builtin catalogue sync failed", slog.String("error", err.Error()))
	}
	if cfg.Catalog.Path != "" {
		docs, err := storage.NewFS(cfg.Catalog.Path)
		if err != nil {
			return nil, fmt.Errorf("init catalog: %w", err)
		}
		c.catalog = &catalog.Source{Name: catalog.SourceDirectory, Docs: docs, Base: &builtin}
		if _, err := catalog.Sync(ctx, db, *c.catalog, logger); err != nil {
			logger.Warn("catalogue sync failed", slog.String("error", err.Error()))
		}
	}
	fallback, err := catalog.Templates(builtin)
	if err != nil {
		return nil, fmt.Errorf("load builtin templates: %w", err)
	}

	if c.cache, err = cache.New(cfg.Cache.Driver, cfg.Cache.RedisURL); err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	c.broker = sse.NewBroker(cfg.Events.DashboardThrottle)
	c.client = dataaccess.New(backend.NewLocal(db), c.cache, cfg.Cache.TTL, logger)

	replies := map[assistant.Surface]chat.Replier{
		assistant.SurfaceChat:   assistant.New(assistant.ChatReplies, cfg.Assistant.MinDelay, cfg.Assistant.MaxDelay),
		assistant.SurfaceEditor: assistant.New(assistant.EditorReplies, cfg.Assistant.MinDelay, cfg.Assistant.MaxDelay),
	}
	c.chats = chat.NewManager(c.client, replies, logger, func(owner string, m models.ChatMessage) {
		c.broker.Publish(sse.Event{Owner: owner, Type: sse.ChatMessage, Data: m})
	})

	c.studio = studio.New(c.client, db, db, c.chats, c.cache, c.broker, studio.Options{
		PrefsTTL: cfg.Prefs.TTL,
		Fallback: fallback,
		Logger:   logger,
	})
	return c, nil
}

// watchCatalog re-syncs the directory catalogue on change, drops cached
// template queries and tells every client.
func (c *components) watchCatalog(ctx context.Context, root string, logger *slog.Logger) error {
	return catalog.Watch(ctx, c.db, *c.catalog, root, logger, func(res catalog.Result) {
		c.client.InvalidateTemplates(ctx)
		c.broker.Publish(sse.Event{Type: sse.TemplatesUpdated, Data: map[string]any{
			"upserted": res.Upserted,
			"deleted":  res.Deleted,
		}})
	})
}

func (c *components) ready(ctx context.Context) error {
	if err := c.db.Ping(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if p, ok := c.cache.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
	}
	return nil
}

func healthHandler(check func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(r.Context()); err != nil {
				slog.WarnContext(r.Context(), "readiness check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

func (a *application) init() (*Config, *slog.Logger, error) {
	if a.config == nil {
		return nil, nil, errors.New("config is required")
	}
	out := a.logOutput
	if out == nil {
		out = os.Stdout
	}
	logger := newLogger(a.config.App, out)
	slog.SetDefault(logger)
	return a.config, logger, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	cfg, logger, err := app.init()
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("assets_path", cfg.Assets.Path),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("cache_driver", cfg.Cache.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.ChatPerMinute > 0 {
		limiter = ratelimit.NewLimiter(cfg.RateLimit.ChatPerMinute, time.Minute, cfg.RateLimit.Burst)
		defer limiter.Close()
	}

	apiRouter := api.NewRouter(api.RouterConfig{
		Studio:      c.studio,
		Verifier:    cfg.Auth.Verifier(),
		Assets:      c.assets,
		Events:      c.broker,
		ChatLimiter: limiter,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthHandler(nil))
	r.Get("/health/ready", healthHandler(c.ready))

	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if c.catalog != nil {
		g.Go(func() error {
			if err := c.watchCatalog(gCtx, cfg.Catalog.Path, logger); err != nil {
				logger.Warn("catalog watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stops the catalog watcher.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdio until stdin closes. Logs go to
// stderr unless WithLogOutput says otherwise.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(app)
	}
	cfg, logger, err := app.init()
	if err != nil {
		return err
	}

	c, err := setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("MCP server starting", slog.String("principal", cfg.MCP.Principal))
	return mcpserver.New(c.studio, c.assets, cfg.MCP.Principal).ServeStdio()
}

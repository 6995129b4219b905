// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/camledger/internal/api"
	"github.com/starford/camledger/internal/calendar"
	"github.com/starford/camledger/internal/history"
	"github.com/starford/camledger/internal/ledger"
	"github.com/starford/camledger/internal/lending"
	"github.com/starford/camledger/internal/mcpserver"
	"github.com/starford/camledger/internal/migrate"
	"github.com/starford/camledger/internal/persist"
	"github.com/starford/camledger/internal/sse"
	"github.com/starford/camledger/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger initializes the structured JSON logger and makes it the default.
func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// core is the state shared by every way of serving the ledger.
type core struct {
	store   *storage.File
	journal *history.DB
	saver   *persist.Saver
	svc     *lending.Service
}

// bootstrap loads the snapshot and starts the saver. extra options are
// applied to the lending service after the defaults.
func (a *application) bootstrap(logger *slog.Logger, extra ...lending.Option) (*core, error) {
	cfg := a.config

	store, err := storage.NewFile(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	journal, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}

	doc, seeded := persist.Load(store, calendar.Today(), cfg.Data.Seed, logger)
	l := ledger.New(doc.Cameras)

	c := &core{store: store, journal: journal}
	c.saver = persist.NewSaver(store, l.Document, logger)

	opts := []lending.Option{
		lending.WithJournal(journal),
		lending.WithSaver(c.saver),
		lending.WithLogger(logger),
	}
	c.svc = lending.NewService(l, append(opts, extra...)...)

	if seeded {
		c.saver.Request()
	}
	return c, nil
}

// close writes a final snapshot (the exit save) and releases resources.
func (c *core) close(logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := c.saver.Flush(ctx); err != nil {
		logger.Error("final save failed", slog.String("error", err.Error()))
	} else {
		logger.Info("final save written", slog.String("path", c.store.Path()))
	}
	c.saver.Close()
	if err := c.journal.Close(); err != nil {
		logger.Warn("close history failed", slog.String("error", err.Error()))
	}
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.newLogger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("history_path", cfg.History.Path),
		slog.Any("scheduled_saves", cfg.Schedule.Saves),
		slog.Bool("mcp_enabled", cfg.MCP.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker. New clients start from the current snapshot.
	var c *core
	broker := sse.NewBroker(cfg.SSE.Heartbeat, func() any { return c.svc.Snapshot() })
	defer broker.Close()

	c, err = app.bootstrap(logger, lending.WithPublisher(broker))
	if err != nil {
		return err
	}
	defer c.close(logger)

	// Daily saves.
	schedule, err := persist.NewSchedule(cfg.Schedule.Saves, c.saver.Request, logger)
	if err != nil {
		return fmt.Errorf("init schedule: %w", err)
	}
	schedule.Start()
	defer func() { <-schedule.Stop().Done() }()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := c.svc.History(req.Context(), 0, 1); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"history unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(c.svc, c.saver, broker))

	if cfg.MCP.Enabled {
		r.Mount("/mcp", mcpserver.New(c.svc, app.version).Handler())
	}

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}
	// Streams never finish on their own; end them when shutdown begins.
	httpServer.RegisterOnShutdown(broker.Close)

	g, gCtx := errgroup.WithContext(ctx)

	// Report edits made to the snapshot file by other programs.
	g.Go(func() error {
		if err := persist.WatchExternal(gCtx, c.store.Path(), c.saver.LastDigest, logger, nil); err != nil {
			logger.Warn("snapshot watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// RunStdio serves the MCP tools on stdin/stdout until the client
// disconnects. Logs go to stderr unless WithLogOutput says otherwise.
func RunStdio(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	c, err := app.bootstrap(logger)
	if err != nil {
		return err
	}
	defer c.close(logger)

	schedule, err := persist.NewSchedule(app.config.Schedule.Saves, c.saver.Request, logger)
	if err != nil {
		return fmt.Errorf("init schedule: %w", err)
	}
	schedule.Start()
	defer func() { <-schedule.Stop().Done() }()

	logger.Info("Serving MCP over stdio", slog.String("data_path", c.store.Path()))
	if err := mcpserver.New(c.svc, app.version).ServeStdio(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

// Migrate rewrites the snapshot file in the canonical format once.
func Migrate(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.newLogger()

	store, err := storage.NewFile(app.config.Data.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	data, err := store.Read()
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	doc, err := migrate.Document(data, calendar.Today())
	if err != nil {
		return fmt.Errorf("migrate snapshot: %w", err)
	}
	out, err := persist.Encode(doc)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.Write(out); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	logger.Info("snapshot migrated",
		slog.String("path", store.Path()),
		slog.Int("cameras", len(doc.Cameras)))
	return nil
}

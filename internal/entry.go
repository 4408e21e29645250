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

	"github.com/starford/quill/internal/api"
	"github.com/starford/quill/internal/mcpserver"
	"github.com/starford/quill/internal/notebook"
	"github.com/starford/quill/internal/noteservice"
	"github.com/starford/quill/internal/sse"
	"github.com/starford/quill/internal/storage"
	"github.com/starford/quill/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	return app, nil
}

// openService prepares the notebook directory and loads the startup
// notebook, creating an empty one bound to its path on first run.
func (a *application) openService(ctx context.Context) (*noteservice.Service, *storage.FS, error) {
	dir, name, err := a.config.Notebook.Resolve(a.notebook)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create notebook dir: %w", err)
	}

	store, err := storage.NewFS(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	svc := noteservice.NewService(store)
	found, err := svc.OpenOrInit(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("open notebook: %w", err)
	}
	a.logger.Debug("Notebook opened",
		slog.String("dir", store.Root()),
		slog.String("notebook", name),
		slog.Bool("existing", found),
		slog.Int("notes", svc.Store().Len()))

	return svc, store, nil
}

// OpenService loads the configured notebook and returns a service bound to it.
func OpenService(ctx context.Context, opts ...Option) (*noteservice.Service, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	svc, _, err := app.openService(ctx)
	return svc, err
}

// RunMCP serves the notebook over MCP on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, _, err := app.openService(ctx)
	if err != nil {
		return err
	}
	app.logger.Info("MCP server starting", slog.String("notebook", svc.CurrentPath()))
	return mcpserver.New(svc).ServeStdio()
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notebook_dir", cfg.Notebook.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, store, err := app.openService(ctx)
	if err != nil {
		return err
	}

	// SSE broker, fed by store mutations and notebook file operations.
	broker := sse.NewBroker(cfg.Events.RefreshThrottle)
	defer broker.Close()

	unsubscribe := svc.Subscribe(func(c notebook.Change) {
		broker.PublishNoteEvent(string(c.Kind), c.Note.ID)
	})
	defer unsubscribe()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, broker.PublishNotebookEvent)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if svc.CurrentPath() == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"no notebook"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			err := watch.Watch(gCtx, svc, store, store.Root(), cfg.Watch.Debounce, logger, broker.PublishNotebookEvent)
			if err != nil {
				logger.Warn("watcher failed", slog.String("error", err.Error()))
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

		if svc.Dirty() {
			logger.Warn("Unsaved notebook changes discarded", slog.String("notebook", svc.CurrentPath()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

package main

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

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/recipebook/internal/adapter/driven/memory"
	"github.com/ericfisherdev/recipebook/internal/adapter/driven/recipeapi"
	sqliteadapter "github.com/ericfisherdev/recipebook/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/recipebook/internal/adapter/driving/cli"
	httphandler "github.com/ericfisherdev/recipebook/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/recipebook/internal/adapter/driving/web"
	"github.com/ericfisherdev/recipebook/internal/application"
	"github.com/ericfisherdev/recipebook/internal/config"
	"github.com/ericfisherdev/recipebook/internal/domain/port/driven"
)

func main() {
	// Cancel on SIGINT/SIGTERM so serve and tui shut down cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx, build)
}

// build wires the driven adapters and application services for one invocation.
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cli.App, error) {
	logger.Debug("config loaded",
		"api_url", cfg.APIURL,
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"request_timeout", cfg.RequestTimeout,
		"http_cache", cfg.HTTPCache,
	)

	messages, closeStore, err := openMessageStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client, err := recipeapi.NewClient(cfg.APIURL, cfg.HTTPCache)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("creating recipe api client: %w", err)
	}

	recipes := application.NewRecipeService(client, messages,
		application.WithLogger(logger),
		application.WithTimeout(cfg.RequestTimeout),
	)
	list := application.NewListController(recipes, logger)

	return &cli.App{
		Recipes:  recipes,
		List:     list,
		Messages: messages,
		Serve: func(ctx context.Context) error {
			return serve(ctx, cfg, list, recipes, messages, logger)
		},
		Close: closeStore,
	}, nil
}

// openMessageStore returns the sqlite-backed message history, or an
// in-memory log when no database path is configured.
func openMessageStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (driven.MessageStore, func() error, error) {
	if cfg.UsesMemoryStore() {
		logger.Debug("using in-memory message log")
		return memory.NewMessageLog(), func() error { return nil }, nil
	}

	// Dual reader/writer with WAL mode.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	version, err := sqliteadapter.SchemaVersion(db.Writer)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Debug("database opened", "path", db.Path(), "schema_version", version)

	return sqliteadapter.NewMessageRepo(db, logger), db.Close, nil
}

// serve runs the web GUI and JSON API until ctx is canceled.
func serve(
	ctx context.Context,
	cfg *config.Config,
	list *application.ListController,
	recipes *application.RecipeService,
	messages driven.MessageStore,
	logger *slog.Logger,
) error {
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(list, messages, logger))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(list, recipes, messages, logger))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.ApplyMiddleware(mux, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Page handlers may wait on a full recipe API call.
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Load the held list at startup rather than on the first page view.
	initDone := make(chan struct{})
	go func() {
		defer close(initDone)
		list.Init(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr, "api_url", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		<-initDone
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Let the startup load and background deletes record their outcome
	// before the store closes.
	<-initDone
	list.Wait()
	logger.Info("shutdown complete")
	return nil
}

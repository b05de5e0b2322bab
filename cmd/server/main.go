package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/comment-tree-api/internal/api"
	"github.com/comment-tree-api/internal/config"
	"github.com/comment-tree-api/internal/database"
	"github.com/comment-tree-api/internal/repository"
	"github.com/comment-tree-api/internal/service"
	"github.com/comment-tree-api/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	// Bootstrap logger until configuration is known
	log := logger.New("info", "json")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("store", cfg.Store.Driver).Msg("Starting Comment Tree API server...")

	// Initialize entity store
	repos, store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store.Driver).Msg("Failed to initialize entity store")
	}
	defer store.Close()

	// Initialize services
	services := service.NewServices(repos, cfg, log)

	// Start background reconciler
	if cfg.Reconcile.Interval > 0 {
		services.Reconcile.StartProcessor(context.Background())
		log.Info().Dur("interval", cfg.Reconcile.Interval).Msg("Background reconciler started")
	}

	// Initialize router
	router := api.NewRouter(services, cfg, log, store)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	services.Reconcile.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited gracefully")
}

// backend is a connected entity store
type backend interface {
	api.HealthChecker
	Close() error
}

// openStore connects the configured backend and returns its repositories
func openStore(cfg *config.Config, log zerolog.Logger) (*repository.Repositories, backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		db, err := database.NewMongo(&cfg.Mongo, log)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
		defer cancel()
		if err := db.EnsureIndexes(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewMongo(db), db, nil

	default:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.RunMigrations(cfg.Store.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.New(db), db, nil
	}
}

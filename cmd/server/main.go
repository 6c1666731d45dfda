// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/harborlight/tourbook/internal/catalog"
	"github.com/harborlight/tourbook/internal/config"
	"github.com/harborlight/tourbook/internal/db"
	"github.com/harborlight/tourbook/internal/scheduler"
)

func loadConfig() (*config.Config, error) {
	if path, ok := os.LookupEnv("CONFIG_PATH"); ok {
		return config.Load(path)
	}
	return config.Default(), nil
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open catalog database")
	}
	defer database.Close()

	catalogSvc, err := catalog.NewService(database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create catalog service")
	}
	if err := catalogSvc.Refresh(context.Background()); err != nil {
		// Serve anyway: handlers answer NotReady until a refresh lands.
		log.Warn().Err(err).Msg("Initial catalog load failed")
	}

	sched, err := scheduler.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	_, err = sched.AddIntervalJob("catalog_refresh", cfg.Catalog.RefreshInterval, func() {
		if err := catalogSvc.Refresh(context.Background()); err != nil {
			log.Error().Err(err).Msg("Catalog refresh job failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register catalog refresh job")
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Error().Err(err).Msg("Scheduler shutdown failed")
		}
	}()

	server := newServer(cfg, catalogSvc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

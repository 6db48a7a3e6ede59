// Package main is the entry point for the habit kingdom server.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"habithold/internal/config"
	"habithold/internal/docstore"
	"habithold/internal/httpapi"
	"habithold/internal/pkg/db"
	"habithold/internal/pkg/lock"
	"habithold/internal/repository"
	"habithold/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := docstore.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize document store
	store, err := docstore.NewPostgres(ctx, dbPool.Pool)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start document store")
	}
	defer store.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	kingdomRepo := repository.NewKingdomRepository(store)
	habitRepo := repository.NewHabitRepository(store)

	// Initialize services
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	kingdomLock := lock.NewKeyedLock()

	userService := service.NewUserService(userRepo)
	statsService := service.NewStatsService(userRepo)
	habitService := service.NewHabitService(userRepo, habitRepo)
	kingdomService := service.NewKingdomService(userRepo, kingdomRepo, rng, cfg.Kingdom.CodeLength, cfg.Kingdom.CodeAlphabet)
	rollupService := service.NewRollupService(userRepo, kingdomRepo, kingdomLock, cfg.Weekly, rng)
	rankingService := service.NewRankingService(userRepo, kingdomRepo)
	motivationService := service.NewMotivationService(userRepo, kingdomRepo, rng)
	watcherService := service.NewWatcherService(userRepo, kingdomRepo)

	router := httpapi.NewRouter(cfg.Server, httpapi.Services{
		Users:       userService,
		Stats:       statsService,
		Habits:      habitService,
		Kingdoms:    kingdomService,
		Rollups:     rollupService,
		Rankings:    rankingService,
		Motivations: motivationService,
		Watchers:    watcherService,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server is starting...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

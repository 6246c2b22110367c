// Package main is the entry point for the Steam match bot.
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"steam-match-bot/internal/bot"
	"steam-match-bot/internal/config"
	"steam-match-bot/internal/pkg/db"
	"steam-match-bot/internal/repository"
	"steam-match-bot/internal/service"
	"steam-match-bot/internal/steam"
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
	if cfg.Steam.APIKey == "" {
		log.Fatal().Msg("Steam API key is required (STEAM_API_KEY)")
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
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	libraryRepo := repository.NewLibraryRepository(dbPool.Pool)
	gameInfoRepo := repository.NewGameInfoRepository(dbPool.Pool)

	// Initialize Steam API client
	steamClient := steam.NewClient(&cfg.Steam)

	// Initialize services
	accountService := service.NewAccountService(userRepo)
	linkService := service.NewLinkService(userRepo, libraryRepo, steamClient)
	classifierService := service.NewClassifierService(gameInfoRepo, steamClient)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	matchService := service.NewMatchService(userRepo, libraryRepo, classifierService, rng)

	// Create bot dependencies
	deps := &bot.Dependencies{
		Config:         cfg,
		AccountService: accountService,
		LinkService:    linkService,
		MatchService:   matchService,
	}

	// Initialize bot
	matchBot, err := bot.New(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		matchBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	matchBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create users table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			telegram_id BIGINT PRIMARY KEY,
			username TEXT NOT NULL,
			steam_id TEXT UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	// Migration 2: Create owned_games table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS owned_games (
			steam_id TEXT NOT NULL,
			app_id BIGINT NOT NULL,
			PRIMARY KEY (steam_id, app_id)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: owned_games table created")

	// Migration 3: Create game_info table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_info (
			app_id BIGINT PRIMARY KEY,
			multiplayer BOOLEAN NOT NULL DEFAULT FALSE,
			name TEXT NOT NULL,
			header TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: game_info table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}

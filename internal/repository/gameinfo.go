package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"steam-match-bot/internal/model"
)

// ErrGameNotCached is returned when a game has never been classified.
var ErrGameNotCached = errors.New("game not in metadata cache")

// GameInfoRepository handles the persistent per-game metadata cache.
type GameInfoRepository struct {
	pool *pgxpool.Pool
}

// NewGameInfoRepository creates a new GameInfoRepository instance.
func NewGameInfoRepository(pool *pgxpool.Pool) *GameInfoRepository {
	return &GameInfoRepository{pool: pool}
}

// Get retrieves the cached classification for an app.
// Returns ErrGameNotCached on a cache miss.
func (r *GameInfoRepository) Get(ctx context.Context, appID int64) (*model.Game, error) {
	const query = `
		SELECT app_id, multiplayer, name, header
		FROM game_info
		WHERE app_id = $1
	`

	var game model.Game
	err := r.pool.QueryRow(ctx, query, appID).Scan(
		&game.AppID,
		&game.Multiplayer,
		&game.Name,
		&game.HeaderImage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGameNotCached
		}
		return nil, fmt.Errorf("failed to get game info: %w", err)
	}

	return &game, nil
}

// Insert persists a classification. Classification is immutable, so a
// concurrent insert of the same app is silently ignored rather than
// overwritten.
func (r *GameInfoRepository) Insert(ctx context.Context, game *model.Game) error {
	const query = `
		INSERT INTO game_info (app_id, multiplayer, name, header)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (app_id) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, game.AppID, game.Multiplayer, game.Name, game.HeaderImage); err != nil {
		return fmt.Errorf("failed to insert game info: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LibraryRepository handles the per-account owned-games cache.
type LibraryRepository struct {
	pool *pgxpool.Pool
}

// NewLibraryRepository creates a new LibraryRepository instance.
func NewLibraryRepository(pool *pgxpool.Pool) *LibraryRepository {
	return &LibraryRepository{pool: pool}
}

// ReplaceOwnedGames atomically replaces the cached library of a steam ID
// with the given set. Delete and insert run in one transaction so a
// failure mid-write never leaves a partial set behind.
func (r *LibraryRepository) ReplaceOwnedGames(ctx context.Context, steamID string, appIDs map[int64]struct{}) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM owned_games WHERE steam_id = $1`, steamID); err != nil {
		return fmt.Errorf("failed to clear owned games: %w", err)
	}

	if len(appIDs) > 0 {
		batch := &pgx.Batch{}
		for appID := range appIDs {
			batch.Queue(`INSERT INTO owned_games (steam_id, app_id) VALUES ($1, $2)`, steamID, appID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert owned games: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit owned games: %w", err)
	}
	return nil
}

// OwnedGames returns the cached set of app IDs owned by a steam ID. An
// unknown steam ID yields an empty set, never an error.
func (r *LibraryRepository) OwnedGames(ctx context.Context, steamID string) (map[int64]struct{}, error) {
	const query = `SELECT app_id FROM owned_games WHERE steam_id = $1`

	rows, err := r.pool.Query(ctx, query, steamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owned games: %w", err)
	}
	defer rows.Close()

	games := make(map[int64]struct{})
	for rows.Next() {
		var appID int64
		if err := rows.Scan(&appID); err != nil {
			return nil, fmt.Errorf("failed to scan owned game: %w", err)
		}
		games[appID] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating owned games: %w", err)
	}

	return games, nil
}

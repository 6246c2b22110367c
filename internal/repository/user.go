// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"steam-match-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrNotLinked    = errors.New("user has no linked steam id")
	ErrSteamIDTaken = errors.New("steam id already linked to another user")
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations; the constraint on users.steam_id is the final arbiter for
// two users racing to link the same account.
const uniqueViolation = "23505"

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// EnsureUser inserts a user row if one does not exist yet, refreshing the
// stored username either way. Called from the membership bootstrap hook,
// so it must be idempotent.
func (r *UserRepository) EnsureUser(ctx context.Context, telegramID int64, username string) error {
	const query = `
		INSERT INTO users (telegram_id, username, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, telegramID, username); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	const query = `
		SELECT telegram_id, username, steam_id, created_at, updated_at
		FROM users
		WHERE telegram_id = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&user.TelegramID,
		&user.Username,
		&user.SteamID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByUsername retrieves a user by their Telegram username. Used to
// resolve plain @mentions, which carry no user ID.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const query = `
		SELECT telegram_id, username, steam_id, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, username).Scan(
		&user.TelegramID,
		&user.Username,
		&user.SteamID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

// SteamIDInUse reports whether any user already has this steam ID linked.
func (r *UserRepository) SteamIDInUse(ctx context.Context, steamID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE steam_id = $1)`

	var inUse bool
	if err := r.pool.QueryRow(ctx, query, steamID).Scan(&inUse); err != nil {
		return false, fmt.Errorf("failed to check steam id use: %w", err)
	}
	return inUse, nil
}

// HasSameSteamID reports whether this exact user already has this exact
// steam ID linked, making a re-link a no-op.
func (r *UserRepository) HasSameSteamID(ctx context.Context, telegramID int64, steamID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE telegram_id = $1 AND steam_id = $2)`

	var same bool
	if err := r.pool.QueryRow(ctx, query, telegramID, steamID).Scan(&same); err != nil {
		return false, fmt.Errorf("failed to check same steam id: %w", err)
	}
	return same, nil
}

// SetSteamID links a steam ID to a user. The application-level collision
// checks are a fast path only; a concurrent link of the same steam ID is
// caught here by the unique constraint and reported as ErrSteamIDTaken.
func (r *UserRepository) SetSteamID(ctx context.Context, telegramID int64, steamID string) error {
	const query = `
		UPDATE users
		SET steam_id = $2, updated_at = NOW()
		WHERE telegram_id = $1
	`

	result, err := r.pool.Exec(ctx, query, telegramID, steamID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSteamIDTaken
		}
		return fmt.Errorf("failed to set steam id: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SteamIDOf returns the steam ID linked to a user. Returns ErrNotLinked
// when the user exists but has no link, ErrUserNotFound when unknown.
func (r *UserRepository) SteamIDOf(ctx context.Context, telegramID int64) (string, error) {
	const query = `SELECT steam_id FROM users WHERE telegram_id = $1`

	var steamID *string
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(&steamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get steam id: %w", err)
	}

	if steamID == nil {
		return "", ErrNotLinked
	}
	return *steamID, nil
}

// LinkedSteamIDs returns the steam IDs of the given users, keyed by
// Telegram ID. Users without a link, or unknown to the store, are simply
// absent from the result.
func (r *UserRepository) LinkedSteamIDs(ctx context.Context, telegramIDs []int64) (map[int64]string, error) {
	const query = `
		SELECT telegram_id, steam_id
		FROM users
		WHERE telegram_id = ANY($1) AND steam_id IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query, telegramIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get linked steam ids: %w", err)
	}
	defer rows.Close()

	linked := make(map[int64]string, len(telegramIDs))
	for rows.Next() {
		var telegramID int64
		var steamID string
		if err := rows.Scan(&telegramID, &steamID); err != nil {
			return nil, fmt.Errorf("failed to scan linked user: %w", err)
		}
		linked[telegramID] = steamID
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating linked users: %w", err)
	}

	return linked, nil
}

// Package service provides business logic implementations.
package service

import (
	"context"

	"steam-match-bot/internal/model"
	"steam-match-bot/internal/steam"
)

// UserStore is the persistence surface the services need for user and
// link management. Implemented by repository.UserRepository.
type UserStore interface {
	EnsureUser(ctx context.Context, telegramID int64, username string) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SteamIDInUse(ctx context.Context, steamID string) (bool, error)
	HasSameSteamID(ctx context.Context, telegramID int64, steamID string) (bool, error)
	SetSteamID(ctx context.Context, telegramID int64, steamID string) error
	SteamIDOf(ctx context.Context, telegramID int64) (string, error)
	LinkedSteamIDs(ctx context.Context, telegramIDs []int64) (map[int64]string, error)
}

// LibraryStore is the owned-games cache surface.
// Implemented by repository.LibraryRepository.
type LibraryStore interface {
	ReplaceOwnedGames(ctx context.Context, steamID string, appIDs map[int64]struct{}) error
	OwnedGames(ctx context.Context, steamID string) (map[int64]struct{}, error)
}

// GameInfoStore is the per-game metadata cache surface.
// Implemented by repository.GameInfoRepository.
type GameInfoStore interface {
	Get(ctx context.Context, appID int64) (*model.Game, error)
	Insert(ctx context.Context, game *model.Game) error
}

// SteamAPI is the remote platform surface. Implemented by steam.Client.
type SteamAPI interface {
	ResolveVanity(ctx context.Context, name string) (string, error)
	FetchProfile(ctx context.Context, steamID string) (*steam.Profile, error)
	FetchOwnedGames(ctx context.Context, steamID string) (map[int64]struct{}, error)
}

// MetadataFetcher is the store metadata surface used for classification.
// Implemented by steam.Client.
type MetadataFetcher interface {
	FetchGameDetails(ctx context.Context, appID int64) (*steam.GameDetails, error)
}

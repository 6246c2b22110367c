package service

import (
	"context"
	"errors"
	"fmt"

	"steam-match-bot/internal/model"
	"steam-match-bot/internal/repository"
)

// ClassifierService resolves the multiplayer classification of games,
// backed by the persistent game_info cache. Each app is looked up
// remotely at most once ever; the cached row is immutable afterwards.
type ClassifierService struct {
	games GameInfoStore
	steam MetadataFetcher
}

// NewClassifierService creates a new ClassifierService instance.
func NewClassifierService(games GameInfoStore, steamAPI MetadataFetcher) *ClassifierService {
	return &ClassifierService{
		games: games,
		steam: steamAPI,
	}
}

// Classify returns the classification for an app, consulting the cache
// first and persisting the remote answer on a miss. A (nil, nil) return
// means the store has no data for this app; such apps are never cached,
// so a later retry may still succeed.
func (s *ClassifierService) Classify(ctx context.Context, appID int64) (*model.Game, error) {
	game, err := s.games.Get(ctx, appID)
	if err == nil {
		return game, nil
	}
	if !errors.Is(err, repository.ErrGameNotCached) {
		return nil, fmt.Errorf("classify: %w", err)
	}

	details, err := s.steam.FetchGameDetails(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if details == nil {
		return nil, nil
	}

	game = &model.Game{
		AppID:       appID,
		Multiplayer: details.Multiplayer,
		Name:        details.Name,
		HeaderImage: details.HeaderImage,
	}
	if err := s.games.Insert(ctx, game); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	return game, nil
}

// MultiplayerAmong classifies every app in the set and returns the
// multiplayer ones. Iteration order is unspecified. The first remote
// failure aborts the whole batch; rows persisted before the failure stay
// cached, which is safe because classification is immutable and the
// retry is idempotent.
func (s *ClassifierService) MultiplayerAmong(ctx context.Context, appIDs map[int64]struct{}) ([]*model.Game, error) {
	multiplayer := make([]*model.Game, 0, len(appIDs))
	for appID := range appIDs {
		game, err := s.Classify(ctx, appID)
		if err != nil {
			return nil, err
		}
		if game == nil {
			continue
		}
		if game.Multiplayer {
			multiplayer = append(multiplayer, game)
		}
	}
	return multiplayer, nil
}

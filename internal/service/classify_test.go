package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steam-match-bot/internal/steam"
)

func TestClassify_CacheMissThenHit(t *testing.T) {
	store := newFakeGameInfoStore()
	fetcher := newFakeMetadataFetcher()
	fetcher.details[730] = &steam.GameDetails{Multiplayer: true, Name: "Counter-Strike 2", HeaderImage: "h"}

	svc := NewClassifierService(store, fetcher)
	ctx := context.Background()

	first, err := svc.Classify(ctx, 730)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.True(t, first.Multiplayer)

	second, err := svc.Classify(ctx, 730)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first, second)

	// The remote lookup happened exactly once; the second call was
	// answered from the cache.
	assert.Equal(t, 1, fetcher.calls[730])
	assert.Equal(t, 1, store.inserts)
}

func TestClassify_StoreHasNoData(t *testing.T) {
	store := newFakeGameInfoStore()
	fetcher := newFakeMetadataFetcher()

	svc := NewClassifierService(store, fetcher)
	ctx := context.Background()

	game, err := svc.Classify(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, game)

	// Unavailable apps are not cached, so a retry asks the store again
	game, err = svc.Classify(ctx, 999999)
	require.NoError(t, err)
	assert.Nil(t, game)
	assert.Equal(t, 2, fetcher.calls[999999])
	assert.Equal(t, 0, store.inserts)
}

func TestMultiplayerAmong_FiltersAndClassifies(t *testing.T) {
	store := newFakeGameInfoStore()
	fetcher := newFakeMetadataFetcher()
	fetcher.details[20] = &steam.GameDetails{Multiplayer: true, Name: "Shared", HeaderImage: "h20"}
	fetcher.details[30] = &steam.GameDetails{Multiplayer: false, Name: "Solo", HeaderImage: "h30"}

	svc := NewClassifierService(store, fetcher)

	games, err := svc.MultiplayerAmong(context.Background(), map[int64]struct{}{20: {}, 30: {}})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, int64(20), games[0].AppID)

	// Both classifications were persisted, multiplayer or not
	assert.Len(t, store.games, 2)
}

func TestMultiplayerAmong_EmptySet(t *testing.T) {
	svc := NewClassifierService(newFakeGameInfoStore(), newFakeMetadataFetcher())

	games, err := svc.MultiplayerAmong(context.Background(), map[int64]struct{}{})
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestMultiplayerAmong_FailFastKeepsPersistedEntries(t *testing.T) {
	store := newFakeGameInfoStore()
	fetcher := newFakeMetadataFetcher()
	fetcher.details[20] = &steam.GameDetails{Multiplayer: true, Name: "Shared", HeaderImage: "h20"}
	fetcher.errOn[30] = fmt.Errorf("fetch game details: %w", steam.ErrUnavailable)

	svc := NewClassifierService(store, fetcher)
	ctx := context.Background()

	// Seed the cache so 20 is classified before the batch runs
	_, err := svc.Classify(ctx, 20)
	require.NoError(t, err)

	_, err = svc.MultiplayerAmong(ctx, map[int64]struct{}{20: {}, 30: {}})
	assert.ErrorIs(t, err, steam.ErrUnavailable)

	// The batch aborted, but the already-persisted row survives; the
	// retry is idempotent because classification is immutable.
	_, cached := store.games[20]
	assert.True(t, cached)
}

func TestMultiplayerAmong_SkipsUnavailableApps(t *testing.T) {
	store := newFakeGameInfoStore()
	fetcher := newFakeMetadataFetcher()
	fetcher.details[20] = &steam.GameDetails{Multiplayer: true, Name: "Shared", HeaderImage: "h20"}
	// 50 has no store data: skipped, not an error

	svc := NewClassifierService(store, fetcher)

	games, err := svc.MultiplayerAmong(context.Background(), map[int64]struct{}{20: {}, 50: {}})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, int64(20), games[0].AppID)
}

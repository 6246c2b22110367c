package service

import (
	"context"

	"steam-match-bot/internal/model"
	"steam-match-bot/internal/repository"
	"steam-match-bot/internal/steam"
)

// In-memory fakes for the store and remote-API surfaces. Each fake
// records its calls so tests can assert on ordering and on the absence
// of access entirely.

type fakeUserStore struct {
	users  map[int64]string // telegram id -> username
	linked map[int64]string // telegram id -> steam id
	calls  []string

	setSteamIDErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:  make(map[int64]string),
		linked: make(map[int64]string),
	}
}

func (f *fakeUserStore) EnsureUser(_ context.Context, telegramID int64, username string) error {
	f.calls = append(f.calls, "EnsureUser")
	f.users[telegramID] = username
	return nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.calls = append(f.calls, "GetByUsername")
	for id, name := range f.users {
		if name == username {
			return &model.User{TelegramID: id, Username: name}, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) SteamIDInUse(_ context.Context, steamID string) (bool, error) {
	f.calls = append(f.calls, "SteamIDInUse")
	for _, linked := range f.linked {
		if linked == steamID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) HasSameSteamID(_ context.Context, telegramID int64, steamID string) (bool, error) {
	f.calls = append(f.calls, "HasSameSteamID")
	return f.linked[telegramID] == steamID, nil
}

func (f *fakeUserStore) SetSteamID(_ context.Context, telegramID int64, steamID string) error {
	f.calls = append(f.calls, "SetSteamID")
	if f.setSteamIDErr != nil {
		return f.setSteamIDErr
	}
	f.linked[telegramID] = steamID
	return nil
}

func (f *fakeUserStore) SteamIDOf(_ context.Context, telegramID int64) (string, error) {
	f.calls = append(f.calls, "SteamIDOf")
	steamID, ok := f.linked[telegramID]
	if !ok {
		if _, exists := f.users[telegramID]; exists {
			return "", repository.ErrNotLinked
		}
		return "", repository.ErrUserNotFound
	}
	return steamID, nil
}

func (f *fakeUserStore) LinkedSteamIDs(_ context.Context, telegramIDs []int64) (map[int64]string, error) {
	f.calls = append(f.calls, "LinkedSteamIDs")
	result := make(map[int64]string)
	for _, id := range telegramIDs {
		if steamID, ok := f.linked[id]; ok {
			result[id] = steamID
		}
	}
	return result, nil
}

type fakeLibraryStore struct {
	libraries map[string]map[int64]struct{}
	calls     []string
}

func newFakeLibraryStore() *fakeLibraryStore {
	return &fakeLibraryStore{libraries: make(map[string]map[int64]struct{})}
}

func (f *fakeLibraryStore) ReplaceOwnedGames(_ context.Context, steamID string, appIDs map[int64]struct{}) error {
	f.calls = append(f.calls, "ReplaceOwnedGames")
	replacement := make(map[int64]struct{}, len(appIDs))
	for id := range appIDs {
		replacement[id] = struct{}{}
	}
	f.libraries[steamID] = replacement
	return nil
}

func (f *fakeLibraryStore) OwnedGames(_ context.Context, steamID string) (map[int64]struct{}, error) {
	f.calls = append(f.calls, "OwnedGames")
	games := make(map[int64]struct{}, len(f.libraries[steamID]))
	for id := range f.libraries[steamID] {
		games[id] = struct{}{}
	}
	return games, nil
}

type fakeGameInfoStore struct {
	games   map[int64]*model.Game
	inserts int
}

func newFakeGameInfoStore() *fakeGameInfoStore {
	return &fakeGameInfoStore{games: make(map[int64]*model.Game)}
}

func (f *fakeGameInfoStore) Get(_ context.Context, appID int64) (*model.Game, error) {
	game, ok := f.games[appID]
	if !ok {
		return nil, repository.ErrGameNotCached
	}
	copied := *game
	return &copied, nil
}

func (f *fakeGameInfoStore) Insert(_ context.Context, game *model.Game) error {
	f.inserts++
	if _, exists := f.games[game.AppID]; exists {
		return nil
	}
	copied := *game
	f.games[game.AppID] = &copied
	return nil
}

type fakeSteamAPI struct {
	vanityID    string
	vanityErr   error
	vanityCalls int

	profile    *steam.Profile
	profileErr error

	ownedGames     map[int64]struct{}
	ownedGamesErr  error
	ownedGameCalls int
}

func (f *fakeSteamAPI) ResolveVanity(_ context.Context, _ string) (string, error) {
	f.vanityCalls++
	if f.vanityErr != nil {
		return "", f.vanityErr
	}
	return f.vanityID, nil
}

func (f *fakeSteamAPI) FetchProfile(_ context.Context, _ string) (*steam.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeSteamAPI) FetchOwnedGames(_ context.Context, _ string) (map[int64]struct{}, error) {
	f.ownedGameCalls++
	if f.ownedGamesErr != nil {
		return nil, f.ownedGamesErr
	}
	return f.ownedGames, nil
}

type fakeMetadataFetcher struct {
	details map[int64]*steam.GameDetails
	errOn   map[int64]error
	calls   map[int64]int
}

func newFakeMetadataFetcher() *fakeMetadataFetcher {
	return &fakeMetadataFetcher{
		details: make(map[int64]*steam.GameDetails),
		errOn:   make(map[int64]error),
		calls:   make(map[int64]int),
	}
}

func (f *fakeMetadataFetcher) FetchGameDetails(_ context.Context, appID int64) (*steam.GameDetails, error) {
	f.calls[appID]++
	if err := f.errOn[appID]; err != nil {
		return nil, err
	}
	return f.details[appID], nil
}

type fakeClassifier struct {
	result []*model.Game
	err    error
	seen   map[int64]struct{}
}

func (f *fakeClassifier) MultiplayerAmong(_ context.Context, appIDs map[int64]struct{}) ([]*model.Game, error) {
	f.seen = make(map[int64]struct{}, len(appIDs))
	for id := range appIDs {
		f.seen[id] = struct{}{}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"steam-match-bot/internal/repository"
	"steam-match-bot/internal/steam"
)

// LinkOutcome is the tagged result of a link attempt. Every call site
// must handle each kind explicitly.
type LinkOutcome int

const (
	// LinkInvalidURL - the reference matched neither accepted URL shape.
	LinkInvalidURL LinkOutcome = iota
	// LinkNotFound - vanity resolution found no Steam user.
	LinkNotFound
	// LinkRemoteError - a Steam API call failed; nothing was persisted.
	LinkRemoteError
	// LinkSame - the user re-linked their own current steam ID; no-op.
	LinkSame
	// LinkConflict - the steam ID is already linked to another user.
	LinkConflict
	// LinkPrivate - the profile's game library is not public.
	LinkPrivate
	// LinkOK - link established and library cached.
	LinkOK
)

// LinkResult carries the outcome of a link attempt plus the profile
// display fields on success.
type LinkResult struct {
	Outcome     LinkOutcome
	PersonaName string
	AvatarURL   string
}

// RefreshOutcome is the tagged result of a library refresh.
type RefreshOutcome int

const (
	// RefreshNotLinked - the user has no steam ID to refresh.
	RefreshNotLinked RefreshOutcome = iota
	// RefreshRemoteError - the owned-games fetch failed; cache untouched.
	RefreshRemoteError
	// RefreshPrivate - the library turned private since linking.
	RefreshPrivate
	// RefreshOK - library replaced wholesale.
	RefreshOK
)

// RefreshResult carries the outcome of a refresh plus the new game count.
type RefreshResult struct {
	Outcome   RefreshOutcome
	GameCount int
}

// LinkService orchestrates account linking: URL resolution, collision
// checks, library fetch and persistence.
type LinkService struct {
	users   UserStore
	library LibraryStore
	steam   SteamAPI
}

// NewLinkService creates a new LinkService instance.
func NewLinkService(users UserStore, library LibraryStore, steamAPI SteamAPI) *LinkService {
	return &LinkService{
		users:   users,
		library: library,
		steam:   steamAPI,
	}
}

// Link resolves a profile URL and links the resulting steam ID to the
// user, caching their owned games. The collision checks run before any
// remote ownership fetch so a doomed link never wastes an API call. The
// returned error is reserved for store failures; every remote-API
// outcome is reported through the result.
func (s *LinkService) Link(ctx context.Context, telegramID int64, rawURL string) (*LinkResult, error) {
	steamID, outcome, err := s.resolveURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if outcome != LinkOK {
		return &LinkResult{Outcome: outcome}, nil
	}

	// Same-link check first: re-entering the current link is an
	// informational no-op, not a conflict.
	same, err := s.users.HasSameSteamID(ctx, telegramID, steamID)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	if same {
		return &LinkResult{Outcome: LinkSame}, nil
	}

	inUse, err := s.users.SteamIDInUse(ctx, steamID)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	if inUse {
		return &LinkResult{Outcome: LinkConflict}, nil
	}

	games, err := s.steam.FetchOwnedGames(ctx, steamID)
	if err != nil {
		if errors.Is(err, steam.ErrLibraryPrivate) {
			return &LinkResult{Outcome: LinkPrivate}, nil
		}
		return &LinkResult{Outcome: LinkRemoteError}, nil
	}

	profile, err := s.steam.FetchProfile(ctx, steamID)
	if err != nil {
		return &LinkResult{Outcome: LinkRemoteError}, nil
	}

	if err := s.library.ReplaceOwnedGames(ctx, steamID, games); err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}

	if err := s.users.SetSteamID(ctx, telegramID, steamID); err != nil {
		// Another user may have claimed the steam ID while the remote
		// fetches were in flight; the unique constraint decides.
		if errors.Is(err, repository.ErrSteamIDTaken) {
			return &LinkResult{Outcome: LinkConflict}, nil
		}
		return nil, fmt.Errorf("link: %w", err)
	}

	return &LinkResult{
		Outcome:     LinkOK,
		PersonaName: profile.PersonaName,
		AvatarURL:   profile.AvatarURL,
	}, nil
}

// Refresh re-fetches the user's owned games and replaces the cached set
// wholesale. Retry is user-initiated only.
func (s *LinkService) Refresh(ctx context.Context, telegramID int64) (*RefreshResult, error) {
	steamID, err := s.users.SteamIDOf(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotLinked) || errors.Is(err, repository.ErrUserNotFound) {
			return &RefreshResult{Outcome: RefreshNotLinked}, nil
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	games, err := s.steam.FetchOwnedGames(ctx, steamID)
	if err != nil {
		if errors.Is(err, steam.ErrLibraryPrivate) {
			return &RefreshResult{Outcome: RefreshPrivate}, nil
		}
		return &RefreshResult{Outcome: RefreshRemoteError}, nil
	}

	if err := s.library.ReplaceOwnedGames(ctx, steamID, games); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return &RefreshResult{Outcome: RefreshOK, GameCount: len(games)}, nil
}

// resolveURL turns a raw profile reference into a steam ID. The direct
// form is answered locally; only the vanity form reaches the network.
func (s *LinkService) resolveURL(ctx context.Context, rawURL string) (string, LinkOutcome, error) {
	kind, value := steam.ParseProfileURL(rawURL)
	switch kind {
	case steam.URLProfile:
		return value, LinkOK, nil
	case steam.URLVanity:
		steamID, err := s.steam.ResolveVanity(ctx, value)
		if err != nil {
			if errors.Is(err, steam.ErrVanityNotFound) {
				return "", LinkNotFound, nil
			}
			return "", LinkRemoteError, nil
		}
		return steamID, LinkOK, nil
	default:
		return "", LinkInvalidURL, nil
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"steam-match-bot/internal/model"
	"steam-match-bot/internal/steam"
)

// Member is a chat user referenced in a group query, as seen at the
// platform boundary.
type Member struct {
	ID    int64
	Name  string
	IsBot bool
}

// MatchOutcome is the tagged result of a shared-game query.
type MatchOutcome int

const (
	// MatchIneligible - a bot or system identity was among the members.
	MatchIneligible MatchOutcome = iota
	// MatchDuplicate - the same member was referenced more than once.
	MatchDuplicate
	// MatchUnlinked - one or more members have no linked steam ID.
	MatchUnlinked
	// MatchRemoteError - classification hit a Steam API failure.
	MatchRemoteError
	// MatchNone - no shared multiplayer game exists among the members.
	MatchNone
	// MatchFound - a shared multiplayer game was picked.
	MatchFound
)

// MatchResult carries the query outcome. Unlinked holds the display
// names of every member without a link when Outcome is MatchUnlinked;
// Game is set only for MatchFound.
type MatchResult struct {
	Outcome  MatchOutcome
	Unlinked []string
	Game     *model.Game
}

// Classifier is the classification surface the resolver needs.
// Implemented by ClassifierService.
type Classifier interface {
	MultiplayerAmong(ctx context.Context, appIDs map[int64]struct{}) ([]*model.Game, error)
}

// MatchService resolves a random shared multiplayer game among a group
// of members. The random source is injected so picks are reproducible in
// tests; a mutex guards it because rand.Rand is not safe for concurrent
// use across handler invocations.
type MatchService struct {
	users      UserStore
	library    LibraryStore
	classifier Classifier

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMatchService creates a new MatchService instance.
func NewMatchService(users UserStore, library LibraryStore, classifier Classifier, rng *rand.Rand) *MatchService {
	return &MatchService{
		users:      users,
		library:    library,
		classifier: classifier,
		rng:        rng,
	}
}

// FindSharedGame runs the resolution pipeline: validate members, check
// linkage, intersect cached libraries, classify the intersection and
// pick one multiplayer game uniformly at random. Input validation
// failures return before any store access. The returned error is
// reserved for store failures.
func (s *MatchService) FindSharedGame(ctx context.Context, members []Member) (*MatchResult, error) {
	seen := make(map[int64]struct{}, len(members))
	for _, m := range members {
		if m.IsBot {
			return &MatchResult{Outcome: MatchIneligible}, nil
		}
		if _, dup := seen[m.ID]; dup {
			return &MatchResult{Outcome: MatchDuplicate}, nil
		}
		seen[m.ID] = struct{}{}
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	linked, err := s.users.LinkedSteamIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find shared game: %w", err)
	}

	// All members must be linked before any intersection work happens;
	// report the full unlinked list in input order.
	var unlinked []string
	for _, m := range members {
		if _, ok := linked[m.ID]; !ok {
			unlinked = append(unlinked, m.Name)
		}
	}
	if len(unlinked) > 0 {
		return &MatchResult{Outcome: MatchUnlinked, Unlinked: unlinked}, nil
	}

	libraries := make([]map[int64]struct{}, 0, len(members))
	for _, m := range members {
		games, err := s.library.OwnedGames(ctx, linked[m.ID])
		if err != nil {
			return nil, fmt.Errorf("find shared game: %w", err)
		}
		libraries = append(libraries, games)
	}

	shared := intersect(libraries)

	multiplayer, err := s.classifier.MultiplayerAmong(ctx, shared)
	if err != nil {
		if errors.Is(err, steam.ErrUnavailable) {
			return &MatchResult{Outcome: MatchRemoteError}, nil
		}
		return nil, fmt.Errorf("find shared game: %w", err)
	}

	if len(multiplayer) == 0 {
		return &MatchResult{Outcome: MatchNone}, nil
	}

	s.mu.Lock()
	pick := multiplayer[s.rng.Intn(len(multiplayer))]
	s.mu.Unlock()

	return &MatchResult{Outcome: MatchFound, Game: pick}, nil
}

// intersect computes the n-ary intersection of app-id sets. The
// intersection over zero sets is defined as empty.
func intersect(sets []map[int64]struct{}) map[int64]struct{} {
	shared := make(map[int64]struct{})
	if len(sets) == 0 {
		return shared
	}

	smallest := sets[0]
	for _, set := range sets[1:] {
		if len(set) < len(smallest) {
			smallest = set
		}
	}

	for appID := range smallest {
		inAll := true
		for _, set := range sets {
			if _, ok := set[appID]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			shared[appID] = struct{}{}
		}
	}
	return shared
}

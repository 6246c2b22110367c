// Package steam implements the Steam Web API client used for vanity
// resolution, profile summaries, owned-game lists and store metadata.
package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"steam-match-bot/internal/config"
)

// Sentinel errors returned by the client. ErrUnavailable wraps every
// network, timeout and malformed-response failure so callers can treat
// them uniformly as a transient remote outage.
var (
	ErrUnavailable    = errors.New("steam api unavailable")
	ErrVanityNotFound = errors.New("no steam user found for vanity name")
	ErrLibraryPrivate = errors.New("game library is private")
)

// Profile holds the display fields of a player summary.
type Profile struct {
	PersonaName string `json:"personaname"`
	AvatarURL   string `json:"avatarmedium"`
}

// GameDetails holds the store metadata needed to classify a game.
type GameDetails struct {
	Multiplayer bool
	Name        string
	HeaderImage string
}

// multiplayerCategoryID is the Steam store category id for "Multi-player".
const multiplayerCategoryID = 1

// Client talks to the Steam Web API and store API. Profile and ownership
// lookups use a short timeout; store metadata lookups get their own bound
// so a large classification batch cannot hang on a single slow call.
type Client struct {
	apiKey    string
	apiBase   string
	storeBase string
	lookup    *http.Client
	store     *http.Client
}

// NewClient creates a Client from the injected configuration.
func NewClient(cfg *config.SteamConfig) *Client {
	lookupTimeout := cfg.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = 3 * time.Second
	}
	storeTimeout := cfg.StoreTimeout
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		apiBase:   cfg.APIBase,
		storeBase: cfg.StoreBase,
		lookup:    &http.Client{Timeout: lookupTimeout},
		store:     &http.Client{Timeout: storeTimeout},
	}
}

// ResolveVanity resolves a vanity name to a SteamID64. Returns
// ErrVanityNotFound when Steam reports no match, or an error wrapping
// ErrUnavailable on any remote failure.
func (c *Client) ResolveVanity(ctx context.Context, name string) (string, error) {
	params := url.Values{
		"key":       {c.apiKey},
		"vanityurl": {name},
	}

	var payload struct {
		Response struct {
			Success int    `json:"success"`
			SteamID string `json:"steamid"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, c.lookup, c.apiBase+"/ISteamUser/ResolveVanityURL/v1/", params, &payload); err != nil {
		return "", fmt.Errorf("resolve vanity: %w", err)
	}

	if payload.Response.Success != 1 {
		return "", ErrVanityNotFound
	}
	return payload.Response.SteamID, nil
}

// FetchProfile retrieves the player summary for a SteamID64.
func (c *Client) FetchProfile(ctx context.Context, steamID string) (*Profile, error) {
	params := url.Values{
		"key":      {c.apiKey},
		"steamids": {steamID},
	}

	var payload struct {
		Response struct {
			Players []Profile `json:"players"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, c.lookup, c.apiBase+"/ISteamUser/GetPlayerSummaries/v0002/", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	if len(payload.Response.Players) == 0 {
		return nil, fmt.Errorf("fetch profile: empty player list: %w", ErrUnavailable)
	}
	return &payload.Response.Players[0], nil
}

// FetchOwnedGames retrieves the set of app ids owned by a SteamID64,
// including played free games. A response without a games list means the
// profile's game details are private, reported as ErrLibraryPrivate.
func (c *Client) FetchOwnedGames(ctx context.Context, steamID string) (map[int64]struct{}, error) {
	params := url.Values{
		"key":                       {c.apiKey},
		"steamid":                   {steamID},
		"include_played_free_games": {"true"},
	}

	// The games key is absent entirely when the profile's game details
	// are private; a pointer distinguishes that from an empty library.
	var payload struct {
		Response struct {
			Games *[]struct {
				AppID int64 `json:"appid"`
			} `json:"games"`
		} `json:"response"`
	}
	if err := c.getJSON(ctx, c.lookup, c.apiBase+"/IPlayerService/GetOwnedGames/v1/", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch owned games: %w", err)
	}

	if payload.Response.Games == nil {
		return nil, ErrLibraryPrivate
	}

	games := make(map[int64]struct{}, len(*payload.Response.Games))
	for _, g := range *payload.Response.Games {
		games[g.AppID] = struct{}{}
	}
	return games, nil
}

// FetchGameDetails retrieves store metadata for a single app and derives
// the multiplayer classification from its category tags. A (nil, nil)
// return means the store has no data for this app; that is not a remote
// failure and the app is simply skipped by callers.
func (c *Client) FetchGameDetails(ctx context.Context, appID int64) (*GameDetails, error) {
	id := strconv.FormatInt(appID, 10)
	params := url.Values{
		"appids": {id},
		"l":      {"en"},
	}

	var payload map[string]struct {
		Success bool `json:"success"`
		Data    struct {
			Name        string `json:"name"`
			HeaderImage string `json:"header_image"`
			Categories  []struct {
				ID int `json:"id"`
			} `json:"categories"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.store, c.storeBase+"/api/appdetails", params, &payload); err != nil {
		return nil, fmt.Errorf("fetch game details: %w", err)
	}

	entry, ok := payload[id]
	if !ok || !entry.Success {
		return nil, nil
	}

	multiplayer := false
	for _, category := range entry.Data.Categories {
		if category.ID == multiplayerCategoryID {
			multiplayer = true
			break
		}
	}

	name := entry.Data.Name
	if name == "" {
		name = "Unknown"
	}
	header := entry.Data.HeaderImage
	if header == "" {
		header = "None Given"
	}

	return &GameDetails{
		Multiplayer: multiplayer,
		Name:        name,
		HeaderImage: header,
	}, nil
}

// getJSON issues a GET request and decodes the JSON body into out. Every
// failure mode wraps ErrUnavailable.
func (c *Client) getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %v: %w", err, ErrUnavailable)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %v: %w", err, ErrUnavailable)
	}
	return nil
}

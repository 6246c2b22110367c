// Package model defines the data models for the Steam match bot.
package model

import "time"

// User represents a Telegram user known to the bot. SteamID is nil until
// the user links a Steam profile; once linked, the value is unique across
// all users (enforced by the database).
type User struct {
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	SteamID    *string   `db:"steam_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Game represents a cached game_info row. The multiplayer classification
// is resolved once per app and never updated afterwards.
type Game struct {
	AppID       int64  `db:"app_id"`
	Multiplayer bool   `db:"multiplayer"`
	Name        string `db:"name"`
	HeaderImage string `db:"header"`
}

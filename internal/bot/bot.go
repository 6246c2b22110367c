// Package bot provides the Telegram bot initialization and handler
// registration.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"steam-match-bot/internal/config"
	"steam-match-bot/internal/handler"
	"steam-match-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot            *tele.Bot
	cfg            *config.Config
	accountService *service.AccountService

	// Handlers
	linkHandler  *handler.LinkHandler
	matchHandler *handler.MatchHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config         *config.Config
	AccountService *service.AccountService
	LinkService    *service.LinkService
	MatchService   *service.MatchService
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:            teleBot,
		cfg:            deps.Config,
		accountService: deps.AccountService,
	}

	// Initialize handlers
	b.linkHandler = handler.NewLinkHandler(deps.LinkService)
	b.matchHandler = handler.NewMatchHandler(deps.MatchService, deps.AccountService)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(RecoveryMiddleware())

	// Membership bootstrap: every interaction ensures the sender exists
	// in the store before any command logic runs.
	b.bot.Use(EnsureUserMiddleware(b.accountService))
}

// registerHandlers registers all command handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/link", b.linkHandler.HandleLink)
	b.bot.Handle("/refresh", b.linkHandler.HandleRefresh)
	b.bot.Handle("/game", b.matchHandler.HandleGame)
	b.bot.Handle("/start", b.handleStart)

	// Bootstrap new group members as they join
	b.bot.Handle(tele.OnUserJoined, b.handleUserJoined)
}

// handleStart replies with a short usage summary.
func (b *Bot) handleStart(c tele.Context) error {
	return c.Reply(
		"Hi! I find a random multiplayer game everyone in a group owns.\n\n" +
			"Commands:\n" +
			"/link <steam profile URL> - link your Steam profile\n" +
			"/refresh - re-fetch your game library\n" +
			"/game @user1 @user2 ... - pick a shared multiplayer game",
	)
}

// handleUserJoined bootstraps users added to a group. Bot accounts are
// never persisted.
func (b *Bot) handleUserJoined(c tele.Context) error {
	joined := c.Message().UserJoined
	if joined == nil || joined.IsBot {
		return nil
	}

	name := joined.Username
	if name == "" {
		name = joined.FirstName
	}

	if err := b.accountService.EnsureUser(context.Background(), joined.ID, name); err != nil {
		log.Error().Err(err).Int64("user_id", joined.ID).Msg("Failed to bootstrap joined user")
	}
	return nil
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

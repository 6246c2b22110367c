// Package handler provides Telegram bot command handlers. Handlers
// translate service results into replies; they never contain business
// logic themselves.
package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"steam-match-bot/internal/service"
)

const msgSteamUnavailable = "Trouble reaching the Steam API, please try again later."

// LinkHandler handles the /link and /refresh commands.
type LinkHandler struct {
	linkService *service.LinkService
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(linkService *service.LinkService) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

// HandleLink handles the /link command: parses the supplied Steam
// profile URL, links the account and caches the owned-game library.
func (h *LinkHandler) HandleLink(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if sender.IsBot {
		return c.Reply("Bots cannot use this command.")
	}

	args := c.Args()
	if len(args) != 1 {
		return c.Reply("Usage: /link <steam profile URL>")
	}

	result, err := h.linkService.Link(ctx, sender.ID, args[0])
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Link failed")
		return c.Reply("Something went wrong, please try again later.")
	}

	switch result.Outcome {
	case service.LinkInvalidURL:
		return c.Reply(
			"Invalid URL format. Please make sure your URL is in one of the following formats:\n" +
				"Steam vanity URL: https://steamcommunity.com/id/yourCustomID\n" +
				"Steam profile URL: https://steamcommunity.com/profiles/yourSteamID64",
		)
	case service.LinkNotFound:
		return c.Reply("No Steam user was found with that URL.")
	case service.LinkRemoteError:
		return c.Reply(msgSteamUnavailable)
	case service.LinkSame:
		return c.Reply("You already have this Steam profile linked. " +
			"If you want to refresh your library, please use the /refresh command.")
	case service.LinkConflict:
		return c.Reply("This Steam profile is already linked to another user.")
	case service.LinkPrivate:
		return c.Reply("This account's game library is private. Please set it to public.")
	case service.LinkOK:
		photo := &tele.Photo{
			File:    tele.FromURL(result.AvatarURL),
			Caption: fmt.Sprintf("%s\nSuccessfully added your Steam library.", result.PersonaName),
		}
		return c.Reply(photo)
	default:
		return c.Reply("Something went wrong, please try again later.")
	}
}

// HandleRefresh handles the /refresh command: wholesale replacement of
// the invoking user's cached library.
func (h *LinkHandler) HandleRefresh(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if sender.IsBot {
		return c.Reply("Bots cannot use this command.")
	}

	result, err := h.linkService.Refresh(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Refresh failed")
		return c.Reply("Something went wrong, please try again later.")
	}

	switch result.Outcome {
	case service.RefreshNotLinked:
		return c.Reply("You haven't linked your Steam profile. Please use the /link command first.")
	case service.RefreshRemoteError:
		return c.Reply(msgSteamUnavailable)
	case service.RefreshPrivate:
		return c.Reply("This account's game library is private. Please set it to public.")
	case service.RefreshOK:
		return c.Reply(fmt.Sprintf("Successfully updated your Steam library (%d games).", result.GameCount))
	default:
		return c.Reply("Something went wrong, please try again later.")
	}
}

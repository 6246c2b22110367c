package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"steam-match-bot/internal/repository"
	"steam-match-bot/internal/service"
)

// Group size bounds enforced at the interface layer; the resolver itself
// handles any member count.
const (
	minGroupSize = 2
	maxGroupSize = 10
)

// MatchHandler handles the /game command.
type MatchHandler struct {
	matchService   *service.MatchService
	accountService *service.AccountService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(matchService *service.MatchService, accountService *service.AccountService) *MatchHandler {
	return &MatchHandler{
		matchService:   matchService,
		accountService: accountService,
	}
}

// HandleGame handles the /game command: collects the mentioned members
// and replies with a random shared multiplayer game.
func (h *MatchHandler) HandleGame(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	if sender.IsBot {
		return c.Reply("Bots cannot use this command.")
	}

	members, reply, err := h.resolveMembers(ctx, c.Message())
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Member resolution failed")
		return c.Reply("Something went wrong, please try again later.")
	}
	if reply != "" {
		return c.Reply(reply)
	}

	if len(members) < minGroupSize {
		return c.Reply(fmt.Sprintf("Please mention at least %d users, e.g. /game @alice @bob", minGroupSize))
	}
	if len(members) > maxGroupSize {
		return c.Reply(fmt.Sprintf("At most %d users per query.", maxGroupSize))
	}

	result, err := h.matchService.FindSharedGame(ctx, members)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Shared game resolution failed")
		return c.Reply("Something went wrong, please try again later.")
	}

	switch result.Outcome {
	case service.MatchIneligible:
		return c.Reply("A bot was detected among the mentioned users.")
	case service.MatchDuplicate:
		return c.Reply("Duplicate users detected.")
	case service.MatchUnlinked:
		return c.Reply("These users haven't linked their Steam profile:\n" +
			strings.Join(result.Unlinked, ", "))
	case service.MatchRemoteError:
		return c.Reply(msgSteamUnavailable)
	case service.MatchNone:
		return c.Reply("There are no shared multiplayer games between these users.")
	case service.MatchFound:
		photo := &tele.Photo{
			File:    tele.FromURL(result.Game.HeaderImage),
			Caption: fmt.Sprintf("%s\nHere's your randomly chosen game, enjoy!", result.Game.Name),
		}
		return c.Reply(photo)
	default:
		return c.Reply("Something went wrong, please try again later.")
	}
}

// resolveMembers extracts the referenced users from message entities.
// Text mentions carry the user directly; plain @mentions are resolved
// through the store, since Telegram does not attach an ID to them. A
// non-empty reply string means the command should be answered with it
// and aborted.
func (h *MatchHandler) resolveMembers(ctx context.Context, msg *tele.Message) ([]service.Member, string, error) {
	if msg == nil {
		return nil, "No users mentioned.", nil
	}

	var members []service.Member
	for _, entity := range msg.Entities {
		switch entity.Type {
		case tele.EntityTMention:
			if entity.User == nil {
				continue
			}
			name := entity.User.Username
			if name == "" {
				name = entity.User.FirstName
			}
			members = append(members, service.Member{
				ID:    entity.User.ID,
				Name:  name,
				IsBot: entity.User.IsBot,
			})
		case tele.EntityMention:
			mention := msg.EntityText(entity)
			username := strings.TrimPrefix(mention, "@")
			user, err := h.accountService.FindByUsername(ctx, username)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return nil, fmt.Sprintf("I don't know %s yet. They need to talk to me in this group first.", mention), nil
				}
				return nil, "", err
			}
			members = append(members, service.Member{
				ID:   user.TelegramID,
				Name: user.Username,
			})
		}
	}

	return members, "", nil
}

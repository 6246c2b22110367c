package service

import (
	"context"
	"fmt"

	"steam-match-bot/internal/model"
)

// AccountService handles user bootstrap and lookup. Every interaction
// with the bot passes through EnsureUser so that group members exist in
// the store before they ever link a profile.
type AccountService struct {
	users UserStore
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users}
}

// EnsureUser makes sure a user row exists for this Telegram identity,
// keeping the stored username current. Idempotent.
func (s *AccountService) EnsureUser(ctx context.Context, telegramID int64, username string) error {
	if err := s.users.EnsureUser(ctx, telegramID, username); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

// FindByUsername resolves a plain @mention to a known user. Plain
// mentions carry no Telegram ID, so the stored username is the only way
// to identify who was referenced.
func (s *AccountService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

// Property-based tests for the chat whitelist.
package bot

import (
	"testing"

	"pgregory.net/rapid"

	"steam-match-bot/internal/config"
)

// TestWhitelistEnforcementProperty verifies that a chat is allowed if
// and only if it appears in the whitelist, for any non-empty whitelist.
func TestWhitelistEnforcementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(1, 10).Draw(t, "numChats")
		chatIDs := make([]int64, numChats)
		for i := 0; i < numChats; i++ {
			chatIDs[i] = rapid.Int64Range(-1000000000, 1000000000).Draw(t, "chatID")
		}

		cfg := &config.Config{
			Whitelist: config.WhitelistConfig{Chats: chatIDs},
		}

		probe := rapid.Int64Range(-1000000000, 1000000000).Draw(t, "probe")

		expected := false
		for _, id := range chatIDs {
			if id == probe {
				expected = true
				break
			}
		}

		if cfg.IsChatAllowed(probe) != expected {
			t.Fatalf("Whitelist mismatch: probe=%d, chats=%v, expected=%v", probe, chatIDs, expected)
		}
	})
}

// TestEmptyWhitelistAllowsAllProperty verifies that an empty whitelist
// allows every chat.
func TestEmptyWhitelistAllowsAllProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{}

		chatID := rapid.Int64Range(-1000000000, 1000000000).Draw(t, "chatID")
		if !cfg.IsChatAllowed(chatID) {
			t.Fatalf("Empty whitelist should allow chat %d", chatID)
		}
	})
}

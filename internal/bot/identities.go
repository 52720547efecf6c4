package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is the account a bot seat plays under.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "random" or "good"
}

// Level is the strategy level for the identity.
func (b BotIdentity) Level() BotLevel { return ParseLevel(b.Difficulty) }

// Name is the display name, falling back to the username.
func (b BotIdentity) Name() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return b.Username
}

// fallbackPrefix marks bot user IDs made up when no identity file was loaded.
const fallbackPrefix = "bot-"

var (
	identitiesMu  sync.RWMutex
	botIdentities []BotIdentity
	botsByUserID  map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		setIdentities(identities)
	})
	return loadErr
}

func setIdentities(identities []BotIdentity) {
	identitiesMu.Lock()
	defer identitiesMu.Unlock()
	botIdentities = identities
	botsByUserID = make(map[string]BotIdentity, len(identities))
	for _, identity := range identities {
		if identity.UserID != "" {
			botsByUserID[identity.UserID] = identity
		}
	}
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and carry the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identitiesMu.RLock()
		identities := append([]BotIdentity(nil), botIdentities...)
		identitiesMu.RUnlock()

		for i := range identities {
			identity := &identities[i]
			if identity.DeviceID == "" {
				continue
			}
			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":     true,
				"difficulty": identity.Difficulty,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.Name(), userID, identity.Difficulty)
		}
		setIdentities(identities)
	})
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", fallbackPrefix, index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
			Difficulty:  "random",
		}
	}
	return botIdentities[index%len(botIdentities)]
}

// LookupBot returns the identity for a bot user ID.
func LookupBot(userID string) (BotIdentity, bool) {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	identity, ok := botsByUserID[userID]
	return identity, ok
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	if _, ok := LookupBot(userID); ok {
		return true
	}
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	return len(botIdentities) == 0 && strings.HasPrefix(userID, fallbackPrefix)
}

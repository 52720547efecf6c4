package nakama

import (
	"context"
	"database/sql"

	"hintmarket/internal/bot"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameHintMarket, NewMatch); err != nil {
		return err
	}

	if runtimeEnv(ctx)[EnvBotsEnabled] == "true" {
		if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
			logger.Warn("InitModule: Could not load bot identities: %v", err)
		} else {
			bot.ProvisionBots(ctx, nk, logger)
		}
	}

	logger.Info("HintMarket Go module loaded.")
	return nil
}

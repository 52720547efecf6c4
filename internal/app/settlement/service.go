package settlement

import (
	"context"
	"fmt"
	"slices"

	"hintmarket/internal/app"
	"hintmarket/internal/domain"
	"hintmarket/internal/ports"
)

// Service pays out the coins players hold when a game finishes.
type Service struct {
	economy ports.EconomyPort
}

// NewService constructs a settlement service. economy must be non-nil.
func NewService(economy ports.EconomyPort) *Service {
	return &Service{economy: economy}
}

// Updates builds one wallet update per seated player holding coins.
// users maps player IDs to account IDs; players without an account are skipped.
func Updates(state *app.State, matchID string, users map[domain.PlayerID]string) ([]ports.WalletUpdate, error) {
	if state.Stage != app.StageBoard || state.Phase() != domain.PhaseFinished {
		return nil, fmt.Errorf("game is not finished")
	}

	updates := make([]ports.WalletUpdate, 0, len(users))
	for _, id := range state.Board.PlayerIDs() {
		userID, ok := users[id]
		if !ok || userID == "" {
			continue
		}
		coins := state.Board.Players[id].Coins
		if coins == 0 {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: int64(coins),
			Metadata: map[string]interface{}{
				"reason":   "game_settlement",
				"match_id": matchID,
				"winner":   slices.Contains(state.Game.Winners, id),
			},
		})
	}
	return updates, nil
}

// Settle credits every player's final coins to their wallet.
// Returns the applied updates.
func (s *Service) Settle(ctx context.Context, state *app.State, matchID string, users map[domain.PlayerID]string) ([]ports.WalletUpdate, error) {
	if s.economy == nil {
		return nil, fmt.Errorf("settlement service not configured")
	}
	updates, err := Updates(state, matchID, users)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return updates, nil
	}
	if err := s.economy.UpdateBalances(ctx, updates); err != nil {
		return nil, fmt.Errorf("failed to settle coins: %w", err)
	}
	return updates, nil
}

package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hintmarket/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sony/gobreaker"
)

// walletCurrency is the wallet key coins are settled into.
const walletCurrency = "coin"

// walletBreakerTrips is how many consecutive wallet failures open the breaker.
const walletBreakerTrips = 3

// NakamaEconomyAdapter implements ports.EconomyPort using Nakama's wallet system.
// Wallet writes go through a circuit breaker.
type NakamaEconomyAdapter struct {
	nk      runtime.NakamaModule
	breaker *gobreaker.CircuitBreaker
}

// NewNakamaEconomyAdapter creates a new economy adapter.
func NewNakamaEconomyAdapter(nk runtime.NakamaModule) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{
		nk: nk,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "nakama-wallet",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= walletBreakerTrips
			},
		}),
	}
}

// GetBalance retrieves the current coin balance for a user.
func (a *NakamaEconomyAdapter) GetBalance(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return wallet[walletCurrency], nil
}

// UpdateBalances applies multiple wallet changes, skipping no-op updates.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	for _, update := range updates {
		if update.Amount == 0 {
			continue
		}

		changes := map[string]int64{
			walletCurrency: update.Amount,
		}

		_, err := a.breaker.Execute(func() (interface{}, error) {
			_, _, err := a.nk.WalletUpdate(ctx, update.UserID, changes, update.Metadata, true)
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("failed to update wallet for user %s: %w", update.UserID, err)
		}
	}
	return nil
}

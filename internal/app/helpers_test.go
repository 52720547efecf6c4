package app

import (
	"fmt"
	"math/rand"
	"testing"

	"hintmarket/internal/domain"
)

func testProfiles(n int) domain.Profiles {
	p := domain.Profiles{Players: map[domain.PlayerID]domain.PlayerProfile{}}
	for i := 1; i <= n; i++ {
		p.Players[domain.PlayerID(i)] = domain.PlayerProfile{DisplayName: fmt.Sprintf("player-%d", i)}
	}
	return p
}

func testEntry(id domain.PlayerID) domain.PasswordEntry {
	return domain.PasswordEntry{
		Password: fmt.Sprintf("secret-%d", id),
		Hints:    []string{fmt.Sprintf("a%d", id), fmt.Sprintf("b%d", id), fmt.Sprintf("c%d", id)},
	}
}

func newTestAuthority(seed int64) *Authority {
	return NewAuthority(NewService(rand.New(rand.NewSource(seed)), domain.RecommendedSetting()), nil)
}

func mustSubmit(t *testing.T, a *Authority, cmd Command) Envelope {
	t.Helper()
	env, err := a.Submit(cmd)
	if err != nil {
		t.Fatalf("submit %s: %v", cmd.Kind, err)
	}
	return env
}

// dealBoard registers n players and pushes every password, returning all envelopes.
func dealBoard(t *testing.T, a *Authority, n int) []Envelope {
	t.Helper()
	envs := []Envelope{mustSubmit(t, a, InitProfile(testProfiles(n)))}
	for i := 1; i <= n; i++ {
		id := domain.PlayerID(i)
		envs = append(envs, mustSubmit(t, a, PushPassword(id, testEntry(id))))
	}
	state := a.Replica().State()
	if state.Stage != StageBoard {
		t.Fatalf("stage = %s, want board", state.Stage)
	}
	return envs
}

// offerFirstHints puts every player's first owned hint on the market.
func offerFirstHints(t *testing.T, a *Authority) []Envelope {
	t.Helper()
	state := a.Replica().State()
	var envs []Envelope
	for _, id := range state.Board.PlayerIDs() {
		p := state.Board.Players[id]
		envs = append(envs, mustSubmit(t, a, PushPutToMarket(id, domain.HintOffer(p.Hints[0]))))
	}
	return envs
}

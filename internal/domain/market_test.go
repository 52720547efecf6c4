package domain

import (
	"errors"
	"slices"
	"testing"
)

func TestResolveActionsExchangeScenario(t *testing.T) {
	const (
		a PlayerID = 1
		b PlayerID = 2
		c PlayerID = 3
	)
	const h1, h2 HintID = 10, 20
	market := Market{a: HintOffer(h1), b: HintOffer(h2), c: CoinOffer()}
	actions := []ActionEntry{
		{Player: a, Action: Exchange(b)},
		{Player: b, Action: Pass()},
		{Player: c, Action: Exchange(a)},
	}

	res, err := ResolveActions([]PlayerID{a, b, c}, market, actions)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	want := map[PlayerID]PlayerHintMove{
		a: {Refs: []HintID{h2}, Ownership: []HintID{}, LossOwnership: []HintID{h1}, MoveCoin: []CoinMove{CoinGet}},
		b: {Refs: []HintID{}, Ownership: []HintID{h1}, LossOwnership: []HintID{}, MoveCoin: []CoinMove{}},
		c: {Refs: []HintID{h1}, Ownership: []HintID{}, LossOwnership: []HintID{}, MoveCoin: []CoinMove{CoinLoss}},
	}
	for id, w := range want {
		got := res.Players[id]
		if !slices.Equal(got.Refs, w.Refs) || !slices.Equal(got.Ownership, w.Ownership) ||
			!slices.Equal(got.LossOwnership, w.LossOwnership) || !slices.Equal(got.MoveCoin, w.MoveCoin) {
			t.Fatalf("player %d ledger = %+v, want %+v", id, *got, w)
		}
	}
	if len(res.Answers) != 0 {
		t.Fatalf("answers = %v, want none", res.Answers)
	}
}

func TestResolveActionsErrors(t *testing.T) {
	market := Market{1: HintOffer(1), 2: CoinOffer()}
	players := []PlayerID{1, 2}

	tests := []struct {
		name    string
		actions []ActionEntry
		want    error
	}{
		{"coin target", []ActionEntry{{Player: 1, Action: Exchange(2)}}, ErrCoinTargeted},
		{"self exchange", []ActionEntry{{Player: 1, Action: Exchange(1)}}, ErrSelfExchange},
		{"unknown actor", []ActionEntry{{Player: 9, Action: Pass()}}, ErrUnknownPlayer},
		{"unknown target", []ActionEntry{{Player: 2, Action: Exchange(9)}}, ErrUnknownPlayer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveActions(players, market, tt.actions)
			if !errors.Is(err, ErrProtocol) || !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	_, err := ResolveActions([]PlayerID{1, 2, 3}, market, []ActionEntry{{Player: 3, Action: Exchange(1)}})
	if !errors.Is(err, ErrMissingOffer) {
		t.Fatalf("err = %v, want missing offer", err)
	}
}

func TestResolveActionsCollectsAnswersInOrder(t *testing.T) {
	market := Market{1: HintOffer(1), 2: HintOffer(2), 3: HintOffer(3)}
	res, err := ResolveActions([]PlayerID{1, 2, 3}, market, []ActionEntry{
		{Player: 1, Action: AnswerWith("one")},
		{Player: 2, Action: Pass()},
		{Player: 3, Action: AnswerWith("three")},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Answers) != 2 || res.Answers[0].Player != 1 || res.Answers[1].Answer.Text != "three" {
		t.Fatalf("answers = %+v", res.Answers)
	}
	if len(res.Players) != 3 {
		t.Fatalf("ledger covers %d players, want every active player", len(res.Players))
	}
}

func TestApplyHintMoves(t *testing.T) {
	board := &BoardState{
		Hints: map[HintID]Hint{
			10: {Text: "x"},
			20: {Text: "y"},
		},
		Players: map[PlayerID]*Player{
			1: {Hints: []HintID{10}, Refs: []HintID{20}, Coins: 1},
			2: {Hints: []HintID{20}, Refs: []HintID{}, Coins: 0},
		},
	}
	res := ActionResult{Players: map[PlayerID]*PlayerHintMove{
		1: {Refs: []HintID{20}, LossOwnership: []HintID{10}, MoveCoin: []CoinMove{CoinLoss}},
		2: {Refs: []HintID{}, Ownership: []HintID{10}, MoveCoin: []CoinMove{CoinGet}},
	}}
	if err := board.ApplyHintMoves(res); err != nil {
		t.Fatalf("apply: %v", err)
	}
	p1, p2 := board.Players[1], board.Players[2]
	if len(p1.Hints) != 0 || !slices.Equal(p1.Refs, []HintID{20}) || p1.Coins != 0 {
		t.Fatalf("player 1 = %+v", *p1)
	}
	if !slices.Equal(p2.Hints, []HintID{20, 10}) || p2.Coins != 1 {
		t.Fatalf("player 2 = %+v", *p2)
	}

	// Player 1 no longer owns hint 10.
	again := ActionResult{Players: map[PlayerID]*PlayerHintMove{1: {LossOwnership: []HintID{10}}}}
	if err := board.ApplyHintMoves(again); !errors.Is(err, ErrLedgerUnderflow) {
		t.Fatalf("err = %v, want ledger underflow", err)
	}
}

package app

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"hintmarket/internal/domain"
)

func TestResolveInitProfileRejectsSinglePlayer(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), domain.RecommendedSetting())
	state := Blank()

	_, err := svc.Resolve(&state, InitProfile(testProfiles(1)))
	if !errors.Is(err, domain.ErrPrecondition) || !errors.Is(err, domain.ErrTooFewPlayers) {
		t.Fatalf("err = %v, want too few players precondition", err)
	}
}

func TestResolveRejectsCommandsOutOfStage(t *testing.T) {
	a := newTestAuthority(3)

	cases := []struct {
		name string
		cmd  Command
	}{
		{"password before profiles", PushPassword(1, testEntry(1))},
		{"board before profiles", PushPutToMarket(1, domain.CoinOffer())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Submit(tc.cmd)
			if !errors.Is(err, domain.ErrProtocol) || !errors.Is(err, ErrUnexpectedCommand) {
				t.Fatalf("err = %v, want unexpected command", err)
			}
		})
	}
	if a.Replica().Seq() != 0 {
		t.Fatalf("seq = %d, rejected commands must not advance the game", a.Replica().Seq())
	}
}

func TestPushPasswordDealsOnLastSubmission(t *testing.T) {
	a := newTestAuthority(42)
	mustSubmit(t, a, InitProfile(testProfiles(3)))

	env := mustSubmit(t, a, PushPassword(1, testEntry(1)))
	if env.Result.Kind != ResultPushPassword {
		t.Fatalf("first result = %s, want push_password", env.Result.Kind)
	}
	env = mustSubmit(t, a, PushPassword(2, testEntry(2)))
	if env.Result.Kind != ResultPushPassword {
		t.Fatalf("second result = %s, want push_password", env.Result.Kind)
	}

	// Player 2 resubmits while the barrier is one short: an overwrite, not a completion.
	changed := testEntry(2)
	changed.Password = "changed"
	env = mustSubmit(t, a, PushPassword(2, changed))
	if env.Result.Kind != ResultPushPassword {
		t.Fatalf("resubmission result = %s, want push_password", env.Result.Kind)
	}

	env = mustSubmit(t, a, PushPassword(3, testEntry(3)))
	if env.Result.Kind != ResultInitBoard {
		t.Fatalf("last result = %s, want init_board", env.Result.Kind)
	}

	state := a.Replica().State()
	if state.Board.Players[2].Password != "changed" {
		t.Fatalf("password = %q, want overwritten value", state.Board.Players[2].Password)
	}
	if len(state.Board.Hints) != 9 {
		t.Fatalf("dictionary size = %d, want 9", len(state.Board.Hints))
	}
	if state.Game.Phase != domain.PhaseSelectPutToMarket || state.Game.Round != 1 {
		t.Fatalf("phase = %s round %d, want market round 1", state.Game.Phase, state.Game.Round)
	}
	for _, id := range state.Board.PlayerIDs() {
		if coins := state.Board.Players[id].Coins; coins != 3 {
			t.Fatalf("player %d coins = %d, want 3", id, coins)
		}
	}
}

func TestPushPasswordRejectsWrongHintCount(t *testing.T) {
	a := newTestAuthority(1)
	mustSubmit(t, a, InitProfile(testProfiles(2)))

	entry := testEntry(1)
	entry.Hints = entry.Hints[:2]
	_, err := a.Submit(PushPassword(1, entry))
	if !errors.Is(err, domain.ErrPrecondition) || !errors.Is(err, domain.ErrHintCount) {
		t.Fatalf("err = %v, want hint count precondition", err)
	}
	if _, err := a.Submit(PushPassword(9, testEntry(9))); !errors.Is(err, ErrNotSeated) {
		t.Fatalf("err = %v, want not seated", err)
	}
}

func TestResolveDoesNotMutateState(t *testing.T) {
	a := newTestAuthority(7)
	dealBoard(t, a, 3)

	state := a.Replica().State()
	before, err := state.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	svc := NewService(rand.New(rand.NewSource(7)), domain.RecommendedSetting())
	p := state.Board.Players[1]
	if _, err := svc.Resolve(&state, PushPutToMarket(1, domain.HintOffer(p.Hints[0]))); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	after, _ := state.Hash()
	if before != after {
		t.Fatal("resolve mutated the state")
	}
}

func TestPutToMarketValidatesOffers(t *testing.T) {
	a := newTestAuthority(5)
	dealBoard(t, a, 2)
	state := a.Replica().State()

	notOwned := state.Board.Players[2].Hints[0]
	if _, err := a.Submit(PushPutToMarket(1, domain.HintOffer(notOwned))); !errors.Is(err, domain.ErrHintNotOwned) {
		t.Fatalf("err = %v, want hint not owned", err)
	}
	if _, err := a.Submit(PushAction(1, domain.Pass())); !errors.Is(err, ErrUnexpectedCommand) {
		t.Fatalf("err = %v, want unexpected command in market phase", err)
	}
}

func TestActionRoundWithoutAnswersStartsNextMarket(t *testing.T) {
	a := newTestAuthority(11)
	dealBoard(t, a, 3)
	offerFirstHints(t, a)

	state := a.Replica().State()
	if state.Game.Phase != domain.PhaseSelectAction {
		t.Fatalf("phase = %s, want select_action", state.Game.Phase)
	}
	market := state.Game.Market

	mustSubmit(t, a, PushAction(1, domain.Exchange(2)))
	mustSubmit(t, a, PushAction(2, domain.Pass()))
	env := mustSubmit(t, a, PushAction(3, domain.Exchange(1)))
	if env.Result.Game.Kind != GameResultMoveToNext {
		t.Fatalf("last action result = %s, want move_to_next", env.Result.Game.Kind)
	}

	after := a.Replica().State()
	if after.Game.Phase != domain.PhaseSelectPutToMarket || after.Game.Round != 2 {
		t.Fatalf("phase = %s round %d, want market round 2", after.Game.Phase, after.Game.Round)
	}
	p1, p2, p3 := after.Board.Players[1], after.Board.Players[2], after.Board.Players[3]
	if len(p1.Refs) != 1 || p1.Refs[0] != market[2].Hint {
		t.Fatalf("player 1 refs = %v, want [%d]", p1.Refs, market[2].Hint)
	}
	if len(p3.Refs) != 1 || p3.Refs[0] != market[1].Hint {
		t.Fatalf("player 3 refs = %v, want [%d]", p3.Refs, market[1].Hint)
	}
	if !p2.Owns(market[1].Hint) || p1.Owns(market[1].Hint) {
		t.Fatalf("hint %d should move from player 1 to player 2", market[1].Hint)
	}
	if !p1.Owns(market[3].Hint) || p3.Owns(market[3].Hint) {
		t.Fatalf("hint %d should move from player 3 to player 1", market[3].Hint)
	}
}

func TestExchangeAgainstCoinOfferIsFatal(t *testing.T) {
	a := newTestAuthority(13)
	dealBoard(t, a, 2)
	state := a.Replica().State()

	mustSubmit(t, a, PushPutToMarket(1, domain.HintOffer(state.Board.Players[1].Hints[0])))
	mustSubmit(t, a, PushPutToMarket(2, domain.CoinOffer()))

	_, err := a.Submit(PushAction(1, domain.Exchange(2)))
	if !errors.Is(err, domain.ErrProtocol) || !errors.Is(err, domain.ErrCoinTargeted) {
		t.Fatalf("err = %v, want coin targeted protocol error", err)
	}
	if _, err := a.Submit(PushAction(1, domain.Exchange(1))); !errors.Is(err, domain.ErrSelfExchange) {
		t.Fatalf("err = %v, want self exchange", err)
	}
}

func TestCorrectAnswerFinishesGame(t *testing.T) {
	a := newTestAuthority(17)
	dealBoard(t, a, 3)
	offerFirstHints(t, a)

	state := a.Replica().State()
	target := state.Board.Players[1].Target
	guess := "  " + strings.ToUpper(state.Board.Players[target].Password) + " "

	mustSubmit(t, a, PushAction(1, domain.AnswerWith(guess)))
	mustSubmit(t, a, PushAction(2, domain.AnswerWith("wrong")))
	mustSubmit(t, a, PushAction(3, domain.Pass()))

	state = a.Replica().State()
	if state.Game.Phase != domain.PhaseConfirmAnswer || len(state.Game.Answers) != 2 {
		t.Fatalf("phase = %s with %d answers, want confirm_answer with 2", state.Game.Phase, len(state.Game.Answers))
	}

	env := mustSubmit(t, a, ConfirmAnswer(3))
	if got := len(env.Result.Game.Verdicts); got != 2 {
		t.Fatalf("verdicts = %d, want 2", got)
	}
	state = a.Replica().State()
	if state.Game.Phase != domain.PhaseFinished {
		t.Fatalf("phase = %s, want finished", state.Game.Phase)
	}
	if len(state.Game.Winners) != 1 || state.Game.Winners[0] != 1 {
		t.Fatalf("winners = %v, want [1]", state.Game.Winners)
	}
	if _, err := a.Submit(PushPutToMarket(1, domain.CoinOffer())); !errors.Is(err, ErrUnexpectedCommand) {
		t.Fatalf("err = %v, finished game must reject commands", err)
	}
}

func TestWrongAnswersStartNextRound(t *testing.T) {
	a := newTestAuthority(19)
	dealBoard(t, a, 2)
	offerFirstHints(t, a)

	mustSubmit(t, a, PushAction(1, domain.AnswerWith("nope")))
	mustSubmit(t, a, PushAction(2, domain.Pass()))
	mustSubmit(t, a, ConfirmAnswer(1))

	state := a.Replica().State()
	if state.Game.Phase != domain.PhaseSelectPutToMarket || state.Game.Round != 2 {
		t.Fatalf("phase = %s round %d, want market round 2", state.Game.Phase, state.Game.Round)
	}
}

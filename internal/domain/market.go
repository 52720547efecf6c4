package domain

import (
	"fmt"
	"maps"
	"slices"
)

// OfferKind distinguishes what a player puts on the market.
type OfferKind string

const (
	OfferHint OfferKind = "hint"
	OfferCoin OfferKind = "coin"
)

// PutToMarket is one player's offer for the round.
type PutToMarket struct {
	Kind OfferKind `json:"kind"`
	Hint HintID    `json:"hint,omitempty"`
}

// HintOffer offers a reference to an owned hint.
func HintOffer(h HintID) PutToMarket { return PutToMarket{Kind: OfferHint, Hint: h} }

// CoinOffer offers a coin.
func CoinOffer() PutToMarket { return PutToMarket{Kind: OfferCoin} }

// Market holds one offer per active player.
type Market map[PlayerID]PutToMarket

// ActionKind is the variant of a player's chosen move.
type ActionKind string

const (
	ActionExchange ActionKind = "exchange"
	ActionAnswer   ActionKind = "answer"
	ActionPass     ActionKind = "pass"
)

// Answer is a guess submitted during the action phase.
type Answer struct {
	Text string `json:"text"`
}

// Action is one player's move for the round.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Target PlayerID   `json:"target,omitempty"`
	Answer Answer     `json:"answer"`
}

func Exchange(target PlayerID) Action { return Action{Kind: ActionExchange, Target: target} }
func AnswerWith(text string) Action   { return Action{Kind: ActionAnswer, Answer: Answer{Text: text}} }
func Pass() Action                    { return Action{Kind: ActionPass} }

// ActionEntry pairs a player with their action.
type ActionEntry struct {
	Player PlayerID `json:"player"`
	Action Action   `json:"action"`
}

// AnswerEntry pairs a player with the answer they submitted.
type AnswerEntry struct {
	Player PlayerID `json:"player"`
	Answer Answer   `json:"answer"`
}

// CoinMove is a single coin ledger event.
type CoinMove string

const (
	CoinGet  CoinMove = "get"
	CoinLoss CoinMove = "loss"
)

// PlayerHintMove is the per-round ledger delta of one player.
type PlayerHintMove struct {
	Refs          []HintID   `json:"refs"`
	Ownership     []HintID   `json:"ownership"`
	LossOwnership []HintID   `json:"loss_ownership"`
	MoveCoin      []CoinMove `json:"move_coin"`
}

func newPlayerHintMove() *PlayerHintMove {
	return &PlayerHintMove{
		Refs:          []HintID{},
		Ownership:     []HintID{},
		LossOwnership: []HintID{},
		MoveCoin:      []CoinMove{},
	}
}

// CoinDelta is the net coin change of the move.
func (m *PlayerHintMove) CoinDelta() int {
	delta := 0
	for _, c := range m.MoveCoin {
		switch c {
		case CoinGet:
			delta++
		case CoinLoss:
			delta--
		}
	}
	return delta
}

// ActionResult is the outcome of one resolved action round.
type ActionResult struct {
	Players map[PlayerID]*PlayerHintMove `json:"players"`
	Answers []AnswerEntry                `json:"answers"`
}

// ResolveActions resolves a completed round of actions against the completed market.
//
// Every resolution reads the same market snapshot; effects accumulate in a fresh ledger per
// active player. A missing offer, a coin target or a self exchange is a protocol violation.
func ResolveActions(players []PlayerID, market Market, actions []ActionEntry) (ActionResult, error) {
	ledger := make(map[PlayerID]*PlayerHintMove, len(players))
	for _, p := range players {
		ledger[p] = newPlayerHintMove()
	}
	answers := []AnswerEntry{}

	for _, entry := range actions {
		player, action := entry.Player, entry.Action
		if _, ok := ledger[player]; !ok {
			return ActionResult{}, fmt.Errorf("%w: %w: %d is not active", ErrProtocol, ErrUnknownPlayer, player)
		}
		switch action.Kind {
		case ActionExchange:
			target := action.Target
			if target == player {
				return ActionResult{}, fmt.Errorf("%w: %w: %d", ErrProtocol, ErrSelfExchange, player)
			}
			if _, ok := ledger[target]; !ok {
				return ActionResult{}, fmt.Errorf("%w: %w: target %d is not active", ErrProtocol, ErrUnknownPlayer, target)
			}
			playerPut, ok := market[player]
			if !ok {
				return ActionResult{}, fmt.Errorf("%w: %w: %d", ErrProtocol, ErrMissingOffer, player)
			}
			targetPut, ok := market[target]
			if !ok {
				return ActionResult{}, fmt.Errorf("%w: %w: %d", ErrProtocol, ErrMissingOffer, target)
			}
			if targetPut.Kind != OfferHint {
				return ActionResult{}, fmt.Errorf("%w: %w: %d targeted %d", ErrProtocol, ErrCoinTargeted, player, target)
			}

			mine, theirs := ledger[player], ledger[target]
			mine.Refs = append(mine.Refs, targetPut.Hint)
			switch playerPut.Kind {
			case OfferHint:
				theirs.Ownership = append(theirs.Ownership, playerPut.Hint)
				mine.LossOwnership = append(mine.LossOwnership, playerPut.Hint)
			case OfferCoin:
				theirs.MoveCoin = append(theirs.MoveCoin, CoinGet)
				mine.MoveCoin = append(mine.MoveCoin, CoinLoss)
			default:
				return ActionResult{}, fmt.Errorf("%w: unknown offer kind %q", ErrProtocol, playerPut.Kind)
			}
		case ActionAnswer:
			answers = append(answers, AnswerEntry{Player: player, Answer: action.Answer})
		case ActionPass:
		default:
			return ActionResult{}, fmt.Errorf("%w: unknown action kind %q", ErrProtocol, action.Kind)
		}
	}

	return ActionResult{Players: ledger, Answers: answers}, nil
}

// ApplyHintMoves writes a resolved round back to the board. The whole result is validated
// before the first mutation, so a rejected result leaves the board untouched.
func (b *BoardState) ApplyHintMoves(res ActionResult) error {
	for id, move := range res.Players {
		p, ok := b.Players[id]
		if !ok {
			return fmt.Errorf("%w: %w: %d", ErrProtocol, ErrUnknownPlayer, id)
		}
		for _, h := range slices.Concat(move.Refs, move.Ownership) {
			if _, ok := b.Hints[h]; !ok {
				return fmt.Errorf("%w: hint %d is not in the dictionary", ErrProtocol, h)
			}
		}
		for _, h := range move.LossOwnership {
			if !p.Owns(h) {
				return fmt.Errorf("%w: %w: player %d hint %d", ErrProtocol, ErrLedgerUnderflow, id, h)
			}
		}
		if p.Coins+move.CoinDelta() < 0 {
			return fmt.Errorf("%w: %w: player %d coins %d", ErrProtocol, ErrLedgerUnderflow, id, p.Coins)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(res.Players)) {
		p, move := b.Players[id], res.Players[id]
		p.Hints = slices.DeleteFunc(p.Hints, func(h HintID) bool {
			return slices.Contains(move.LossOwnership, h)
		})
		p.Hints = append(p.Hints, move.Ownership...)
		for _, h := range move.Refs {
			if !slices.Contains(p.Refs, h) {
				p.Refs = append(p.Refs, h)
			}
		}
		p.Coins += move.CoinDelta()
	}
	return nil
}

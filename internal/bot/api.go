package bot

import (
	"hintmarket/internal/app"
	"hintmarket/internal/domain"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelGood
)

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// ChooseOffer picks what to put on the market this round.
	ChooseOffer(state *app.State, me domain.PlayerID) (domain.PutToMarket, error)
	// ChooseAction picks the move for the action half of the round.
	ChooseAction(state *app.State, me domain.PlayerID) (domain.Action, error)
}

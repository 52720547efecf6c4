package domain

import "maps"

// Phase is the active sub-state of a running board.
type Phase string

const (
	// PhaseSelectPutToMarket collects one market offer per player.
	PhaseSelectPutToMarket Phase = "select_put_to_market"
	// PhaseSelectAction collects one action per player against the finalized market.
	PhaseSelectAction Phase = "select_action"
	// PhaseConfirmAnswer waits for the collected answers to be adjudicated.
	PhaseConfirmAnswer Phase = "confirm_answer"
	// PhaseFinished is terminal: at least one answer was judged correct.
	PhaseFinished Phase = "finished"
)

// GamePhase is the phase together with the data only that phase carries.
type GamePhase struct {
	Phase   Phase                                `json:"phase"`
	Round   int                                  `json:"round"`
	Offers  *Simultaneous[PlayerID, PutToMarket] `json:"offers,omitempty"`
	Market  Market                               `json:"market,omitempty"`
	Actions *Simultaneous[PlayerID, Action]      `json:"actions,omitempty"`
	Answers []AnswerEntry                        `json:"answers,omitempty"`
	Winners []PlayerID                           `json:"winners,omitempty"`
}

// NewMarketPhase opens a market round for players contributors.
func NewMarketPhase(round, players int) (GamePhase, error) {
	offers, err := NewSimultaneous[PlayerID, PutToMarket](players)
	if err != nil {
		return GamePhase{}, err
	}
	return GamePhase{Phase: PhaseSelectPutToMarket, Round: round, Offers: offers}, nil
}

// NewActionPhase opens the action half of a round against a finalized market.
func NewActionPhase(round int, market Market) (GamePhase, error) {
	actions, err := NewSimultaneous[PlayerID, Action](len(market))
	if err != nil {
		return GamePhase{}, err
	}
	return GamePhase{Phase: PhaseSelectAction, Round: round, Market: market, Actions: actions}, nil
}

// Clone returns an independent copy of the phase.
func (g GamePhase) Clone() GamePhase {
	out := g
	out.Offers = g.Offers.Clone()
	out.Actions = g.Actions.Clone()
	out.Market = maps.Clone(g.Market)
	out.Answers = append([]AnswerEntry(nil), g.Answers...)
	out.Winners = append([]PlayerID(nil), g.Winners...)
	return out
}

package bot

import (
	"fmt"
	"maps"
	"math/rand"
	"slices"

	"hintmarket/internal/app"
	"hintmarket/internal/domain"
)

// RandomBot picks uniformly among legal moves.
type RandomBot struct {
	rng        *rand.Rand
	vocabulary []string
	// AnswerRate is the chance of guessing instead of exchanging or passing.
	AnswerRate float64
}

func (b *RandomBot) ChooseOffer(state *app.State, me domain.PlayerID) (domain.PutToMarket, error) {
	offers := legalOffers(state.Board, me)
	if len(offers) == 0 {
		return domain.PutToMarket{}, fmt.Errorf("player %d is not seated", me)
	}
	return offers[b.rng.Intn(len(offers))], nil
}

func (b *RandomBot) ChooseAction(state *app.State, me domain.PlayerID) (domain.Action, error) {
	if len(b.vocabulary) > 0 && b.rng.Float64() < b.AnswerRate {
		return domain.AnswerWith(b.vocabulary[b.rng.Intn(len(b.vocabulary))]), nil
	}
	targets := exchangeTargets(state.Game.Market, me)
	if !canPay(state, me) || len(targets) == 0 || b.rng.Intn(len(targets)+1) == 0 {
		return domain.Pass(), nil
	}
	return domain.Exchange(targets[b.rng.Intn(len(targets))]), nil
}

// legalOffers lists every offer the player may put on the market.
func legalOffers(board *domain.BoardState, me domain.PlayerID) []domain.PutToMarket {
	p, ok := board.Players[me]
	if !ok {
		return nil
	}
	offers := make([]domain.PutToMarket, 0, len(p.Hints)+1)
	for _, h := range p.Hints {
		offers = append(offers, domain.HintOffer(h))
	}
	if p.Coins > 0 || len(p.Hints) == 0 {
		offers = append(offers, domain.CoinOffer())
	}
	return offers
}

// canPay reports whether the player's market offer can settle an exchange.
func canPay(state *app.State, me domain.PlayerID) bool {
	offer := state.Game.Market[me]
	return offer.Kind == domain.OfferHint || state.Board.Players[me].Coins > 0
}

// exchangeTargets lists the other players whose offer is a hint, in ascending order.
func exchangeTargets(market domain.Market, me domain.PlayerID) []domain.PlayerID {
	var out []domain.PlayerID
	for _, id := range slices.Sorted(maps.Keys(market)) {
		if id != me && market[id].Kind == domain.OfferHint {
			out = append(out, id)
		}
	}
	return out
}

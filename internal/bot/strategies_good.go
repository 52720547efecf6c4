package bot

import (
	"math/rand"
	"slices"

	"hintmarket/internal/app"
	"hintmarket/internal/domain"
)

// GoodBot narrows the vocabulary down with what it knows about its target and only
// answers once the guess is unambiguous or it has run out of patience.
type GoodBot struct {
	rng        *rand.Rand
	vocabulary []string
	// Patience is the round from which the bot guesses among several candidates.
	Patience int
	// wrong holds guesses that did not end the game.
	wrong map[string]bool
}

func (b *GoodBot) ChooseOffer(state *app.State, me domain.PlayerID) (domain.PutToMarket, error) {
	p := state.Board.Players[me]
	// Coins buy refs without giving hints away.
	if p.Coins > 1 || len(p.Hints) == 0 {
		return domain.CoinOffer(), nil
	}
	return domain.HintOffer(p.Hints[b.rng.Intn(len(p.Hints))]), nil
}

func (b *GoodBot) ChooseAction(state *app.State, me domain.PlayerID) (domain.Action, error) {
	p := state.Board.Players[me]
	best := b.bestGuesses(state.Board, p)
	if len(best) == 1 || (len(best) > 0 && state.Game.Round >= b.Patience) {
		guess := best[b.rng.Intn(len(best))]
		if b.wrong == nil {
			b.wrong = make(map[string]bool)
		}
		// A correct guess ends the game before this is read again.
		b.wrong[guess] = true
		return domain.AnswerWith(guess), nil
	}

	if !canPay(state, me) {
		return domain.Pass(), nil
	}
	targets := exchangeTargets(state.Game.Market, me)
	if slices.Contains(targets, p.Target) {
		return domain.Exchange(p.Target), nil
	}
	for _, id := range targets {
		if h := state.Game.Market[id].Hint; !slices.Contains(p.Refs, h) {
			return domain.Exchange(id), nil
		}
	}
	return domain.Pass(), nil
}

// bestGuesses returns the words consistent with the true hint that also explain the most refs.
func (b *GoodBot) bestGuesses(board *domain.BoardState, p *domain.Player) []string {
	truth, ok := board.Hints[p.Knowledges.Target]
	if !ok {
		return nil
	}
	candidates := Candidates(b.vocabulary, []string{truth.Text})

	var best []string
	bestScore := -1
	for _, w := range candidates {
		if b.wrong[w] {
			continue
		}
		described := Describe(w)
		score := 0
		for _, ref := range p.Refs {
			if slices.Contains(described, board.Hints[ref].Text) {
				score++
			}
		}
		switch {
		case score > bestScore:
			best, bestScore = []string{w}, score
		case score == bestScore:
			best = append(best, w)
		}
	}
	return best
}

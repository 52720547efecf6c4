package app

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"hintmarket/internal/domain"
)

var ErrUnexpectedResult = errors.New("result not accepted in this stage")

// Reduce applies a resolved result to state. It is deterministic and takes no randomness:
// every peer reducing the same results in the same order reaches the same state.
//
// A rejected result leaves state untouched. Results are never aliased into state.
func Reduce(state *State, res Result) error {
	switch {
	case state.Stage == StageBlank && res.Kind == ResultInitProfile:
		return reduceInitProfile(state, res)
	case state.Stage == StageStandbyPassword && res.Kind == ResultPushPassword:
		if res.Password == nil {
			return fmt.Errorf("%w: push_password without password", domain.ErrProtocol)
		}
		if !state.Profiles.Has(res.Player) {
			return fmt.Errorf("%w: %w: %d", domain.ErrProtocol, domain.ErrUnknownPlayer, res.Player)
		}
		entry := domain.PasswordEntry{Password: res.Password.Password, Hints: slices.Clone(res.Password.Hints)}
		return state.Passwords.Insert(res.Player, entry)
	case state.Stage == StageStandbyPassword && res.Kind == ResultInitBoard:
		return reduceInitBoard(state, res)
	case state.Stage == StageBoard && res.Kind == ResultBoard:
		if res.Game == nil {
			return fmt.Errorf("%w: board result without payload", domain.ErrProtocol)
		}
		return reduceGame(state, *res.Game)
	default:
		return fmt.Errorf("%w: %w: %s in %s", domain.ErrProtocol, ErrUnexpectedResult, res.Kind, state.Stage)
	}
}

func reduceInitProfile(state *State, res Result) error {
	if res.Profiles == nil || res.Setting == nil {
		return fmt.Errorf("%w: init_profile without profiles or setting", domain.ErrProtocol)
	}
	passwords, err := domain.NewSimultaneous[domain.PlayerID, domain.PasswordEntry](len(res.Profiles.Players))
	if err != nil {
		return err
	}
	profiles := cloneProfiles(*res.Profiles)
	setting := *res.Setting
	state.Stage = StageStandbyPassword
	state.Profiles = &profiles
	state.Setting = &setting
	state.Passwords = passwords
	return nil
}

func reduceInitBoard(state *State, res Result) error {
	if res.Board == nil {
		return fmt.Errorf("%w: init_board without board", domain.ErrProtocol)
	}
	if !slices.Equal(res.Board.PlayerIDs(), state.Profiles.IDs()) {
		return fmt.Errorf("%w: board players %v do not match profiles %v", domain.ErrProtocol, res.Board.PlayerIDs(), state.Profiles.IDs())
	}
	game, err := domain.NewMarketPhase(1, len(res.Board.Players))
	if err != nil {
		return err
	}
	state.Stage = StageBoard
	state.Passwords = nil
	state.Board = res.Board.Clone()
	state.Game = &game
	return nil
}

func reduceGame(state *State, res GameResult) error {
	game := state.Game
	switch {
	case game.Phase == domain.PhaseSelectPutToMarket && res.Kind == GameResultPushPutToMarket:
		if res.Offer == nil {
			return fmt.Errorf("%w: push_put_to_market without offer", domain.ErrProtocol)
		}
		if _, ok := state.Board.Players[res.Player]; !ok {
			return fmt.Errorf("%w: %w: %d", domain.ErrProtocol, domain.ErrUnknownPlayer, res.Player)
		}
		return game.Offers.Insert(res.Player, *res.Offer)

	case game.Phase == domain.PhaseSelectPutToMarket && res.Kind == GameResultMoveToActionPhase:
		if !slices.Equal(slices.Sorted(maps.Keys(res.Market)), state.Board.PlayerIDs()) {
			return fmt.Errorf("%w: market does not cover every player", domain.ErrProtocol)
		}
		next, err := domain.NewActionPhase(game.Round, maps.Clone(res.Market))
		if err != nil {
			return err
		}
		*game = next
		return nil

	case game.Phase == domain.PhaseSelectAction && res.Kind == GameResultPushAction:
		if res.Action == nil {
			return fmt.Errorf("%w: push_action without action", domain.ErrProtocol)
		}
		if _, ok := game.Market[res.Player]; !ok {
			return fmt.Errorf("%w: %w: %d", domain.ErrProtocol, domain.ErrMissingOffer, res.Player)
		}
		return game.Actions.Insert(res.Player, *res.Action)

	case game.Phase == domain.PhaseSelectAction && res.Kind == GameResultMoveToNext:
		if res.Resolved == nil {
			return fmt.Errorf("%w: move_to_next without resolution", domain.ErrProtocol)
		}
		var next domain.GamePhase
		if len(res.Resolved.Answers) == 0 {
			var err error
			if next, err = domain.NewMarketPhase(game.Round+1, len(state.Board.Players)); err != nil {
				return err
			}
		} else {
			next = domain.GamePhase{
				Phase:   domain.PhaseConfirmAnswer,
				Round:   game.Round,
				Answers: slices.Clone(res.Resolved.Answers),
			}
		}
		if err := state.Board.ApplyHintMoves(*res.Resolved); err != nil {
			return err
		}
		*game = next
		return nil

	case game.Phase == domain.PhaseConfirmAnswer && res.Kind == GameResultAnswersJudged:
		if len(res.Verdicts) != len(game.Answers) {
			return fmt.Errorf("%w: %d verdicts for %d answers", domain.ErrProtocol, len(res.Verdicts), len(game.Answers))
		}
		for i, v := range res.Verdicts {
			if v.Player != game.Answers[i].Player {
				return fmt.Errorf("%w: verdict %d is for player %d, answer was from %d", domain.ErrProtocol, i, v.Player, game.Answers[i].Player)
			}
		}
		if winners := domain.Winners(res.Verdicts); len(winners) > 0 {
			*game = domain.GamePhase{Phase: domain.PhaseFinished, Round: game.Round, Winners: winners}
			return nil
		}
		next, err := domain.NewMarketPhase(game.Round+1, len(state.Board.Players))
		if err != nil {
			return err
		}
		*game = next
		return nil

	default:
		return fmt.Errorf("%w: %w: %s in %s", domain.ErrProtocol, ErrUnexpectedResult, res.Kind, game.Phase)
	}
}

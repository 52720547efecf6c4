package app

import (
	"errors"
	"fmt"
	"maps"
	"math/rand"
	"slices"
	"time"

	"hintmarket/internal/domain"
)

// Service resolves commands into results. It is the only place randomness enters the game,
// so exactly one party per game runs it; every other peer only reduces its results.
type Service struct {
	rng     *rand.Rand
	setting domain.Setting
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, setting domain.Setting) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, setting: setting}
}

// Setting returns the rules attached to newly registered games.
func (s *Service) Setting() domain.Setting { return s.setting }

var (
	ErrUnexpectedCommand = errors.New("command not accepted in this stage")
	ErrMalformedCommand  = errors.New("command is missing its payload")
	ErrNotSeated         = errors.New("player is not seated in this game")
)

func unexpected(stage string, kind any) error {
	return fmt.Errorf("%w: %w: %v in %s", domain.ErrProtocol, ErrUnexpectedCommand, kind, stage)
}

// Resolve computes the result of cmd against state. It never mutates state; callers apply
// the returned result with Reduce on every replica, including their own.
func (s *Service) Resolve(state *State, cmd Command) (Result, error) {
	switch state.Stage {
	case StageBlank:
		if cmd.Kind != CommandInitProfile {
			return Result{}, unexpected(string(state.Stage), cmd.Kind)
		}
		return s.resolveInitProfile(cmd)
	case StageStandbyPassword:
		if cmd.Kind != CommandPushPassword {
			return Result{}, unexpected(string(state.Stage), cmd.Kind)
		}
		return s.resolvePushPassword(state, cmd)
	case StageBoard:
		if cmd.Kind != CommandBoard {
			return Result{}, unexpected(string(state.Stage), cmd.Kind)
		}
		if cmd.Game == nil {
			return Result{}, fmt.Errorf("%w: %w: board", domain.ErrPrecondition, ErrMalformedCommand)
		}
		return s.resolveGame(state, *cmd.Game)
	default:
		return Result{}, fmt.Errorf("%w: unknown stage %q", domain.ErrProtocol, state.Stage)
	}
}

func (s *Service) resolveInitProfile(cmd Command) (Result, error) {
	if cmd.Profiles == nil {
		return Result{}, fmt.Errorf("%w: %w: profiles", domain.ErrPrecondition, ErrMalformedCommand)
	}
	if n := len(cmd.Profiles.Players); n < MinPlayersToStartGame {
		return Result{}, fmt.Errorf("%w: %w: got %d", domain.ErrPrecondition, domain.ErrTooFewPlayers, n)
	}
	profiles := cloneProfiles(*cmd.Profiles)
	setting := s.setting
	return Result{Kind: ResultInitProfile, Profiles: &profiles, Setting: &setting}, nil
}

func (s *Service) resolvePushPassword(state *State, cmd Command) (Result, error) {
	if cmd.Password == nil {
		return Result{}, fmt.Errorf("%w: %w: password", domain.ErrPrecondition, ErrMalformedCommand)
	}
	if !state.Profiles.Has(cmd.Player) {
		return Result{}, fmt.Errorf("%w: %w: %d", domain.ErrPrecondition, ErrNotSeated, cmd.Player)
	}
	if n := len(cmd.Password.Hints); n != state.Setting.HintsNum {
		return Result{}, fmt.Errorf("%w: %w: submitted %d, want %d", domain.ErrPrecondition, domain.ErrHintCount, n, state.Setting.HintsNum)
	}
	entry := domain.PasswordEntry{Password: cmd.Password.Password, Hints: slices.Clone(cmd.Password.Hints)}

	// A resubmission from a player already stored is an overwrite even when the barrier
	// is one short; only the missing player's submission completes it.
	if complete, ok := state.Passwords.IsComplete(); ok && !state.Passwords.Has(cmd.Player) {
		entries, err := complete.Finalize(cmd.Player, entry)
		if err != nil {
			return Result{}, err
		}
		board, err := domain.Deal(entries, *state.Setting, s.rng)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: ResultInitBoard, Player: cmd.Player, Board: board}, nil
	}
	return Result{Kind: ResultPushPassword, Player: cmd.Player, Password: &entry}, nil
}

func (s *Service) resolveGame(state *State, cmd GameCommand) (Result, error) {
	board, game := state.Board, state.Game
	if _, ok := board.Players[cmd.Player]; !ok {
		return Result{}, fmt.Errorf("%w: %w: %d", domain.ErrPrecondition, ErrNotSeated, cmd.Player)
	}

	switch {
	case game.Phase == domain.PhaseSelectPutToMarket && cmd.Kind == GamePushPutToMarket:
		return s.resolvePutToMarket(board, game, cmd)
	case game.Phase == domain.PhaseSelectAction && cmd.Kind == GamePushAction:
		return s.resolveAction(board, game, cmd)
	case game.Phase == domain.PhaseConfirmAnswer && cmd.Kind == GameConfirmAnswer:
		verdicts, err := domain.JudgeAnswers(board, game.Answers)
		if err != nil {
			return Result{}, err
		}
		return boardResult(GameResult{Kind: GameResultAnswersJudged, Player: cmd.Player, Verdicts: verdicts}), nil
	default:
		return Result{}, unexpected(string(game.Phase), cmd.Kind)
	}
}

func (s *Service) resolvePutToMarket(board *domain.BoardState, game *domain.GamePhase, cmd GameCommand) (Result, error) {
	if cmd.Offer == nil {
		return Result{}, fmt.Errorf("%w: %w: offer", domain.ErrPrecondition, ErrMalformedCommand)
	}
	offer := *cmd.Offer
	p := board.Players[cmd.Player]
	switch offer.Kind {
	case domain.OfferHint:
		if !p.Owns(offer.Hint) {
			return Result{}, fmt.Errorf("%w: %w: player %d hint %d", domain.ErrPrecondition, domain.ErrHintNotOwned, cmd.Player, offer.Hint)
		}
	case domain.OfferCoin:
		// A player left with neither hints nor coins may still post an empty coin offer
		// so the round can complete; they cannot exchange with it.
		if p.Coins < 1 && len(p.Hints) > 0 {
			return Result{}, fmt.Errorf("%w: %w: player %d", domain.ErrPrecondition, domain.ErrNoCoins, cmd.Player)
		}
		offer.Hint = 0
	default:
		return Result{}, fmt.Errorf("%w: unknown offer kind %q", domain.ErrPrecondition, offer.Kind)
	}

	if complete, ok := game.Offers.IsComplete(); ok && !game.Offers.Has(cmd.Player) {
		market, err := complete.Finalize(cmd.Player, offer)
		if err != nil {
			return Result{}, err
		}
		return boardResult(GameResult{Kind: GameResultMoveToActionPhase, Player: cmd.Player, Market: market}), nil
	}
	return boardResult(GameResult{Kind: GameResultPushPutToMarket, Player: cmd.Player, Offer: &offer}), nil
}

func (s *Service) resolveAction(board *domain.BoardState, game *domain.GamePhase, cmd GameCommand) (Result, error) {
	if cmd.Action == nil {
		return Result{}, fmt.Errorf("%w: %w: action", domain.ErrPrecondition, ErrMalformedCommand)
	}
	action := *cmd.Action
	if _, ok := game.Market[cmd.Player]; !ok {
		return Result{}, fmt.Errorf("%w: %w: %d", domain.ErrProtocol, domain.ErrMissingOffer, cmd.Player)
	}
	switch action.Kind {
	case domain.ActionExchange:
		if err := checkExchange(game.Market, cmd.Player, action.Target); err != nil {
			return Result{}, err
		}
		if game.Market[cmd.Player].Kind == domain.OfferCoin && board.Players[cmd.Player].Coins < 1 {
			return Result{}, fmt.Errorf("%w: %w: player %d cannot pay for an exchange", domain.ErrPrecondition, domain.ErrNoCoins, cmd.Player)
		}
		action.Answer = domain.Answer{}
	case domain.ActionAnswer:
		action.Target = 0
	case domain.ActionPass:
		action = domain.Pass()
	default:
		return Result{}, fmt.Errorf("%w: unknown action kind %q", domain.ErrPrecondition, action.Kind)
	}

	if complete, ok := game.Actions.IsComplete(); ok && !game.Actions.Has(cmd.Player) {
		all, err := complete.Finalize(cmd.Player, action)
		if err != nil {
			return Result{}, err
		}
		entries := make([]domain.ActionEntry, 0, len(all))
		for _, id := range slices.Sorted(maps.Keys(all)) {
			entries = append(entries, domain.ActionEntry{Player: id, Action: all[id]})
		}
		resolved, err := domain.ResolveActions(slices.Sorted(maps.Keys(game.Market)), game.Market, entries)
		if err != nil {
			return Result{}, err
		}
		return boardResult(GameResult{Kind: GameResultMoveToNext, Player: cmd.Player, Resolved: &resolved}), nil
	}
	return boardResult(GameResult{Kind: GameResultPushAction, Player: cmd.Player, Action: &action}), nil
}

// checkExchange rejects an exchange as soon as it is submitted, with the same errors
// ResolveActions would raise once the round completes.
func checkExchange(market domain.Market, player, target domain.PlayerID) error {
	if target == player {
		return fmt.Errorf("%w: %w: %d", domain.ErrProtocol, domain.ErrSelfExchange, player)
	}
	put, ok := market[target]
	if !ok {
		return fmt.Errorf("%w: %w: %d", domain.ErrProtocol, domain.ErrMissingOffer, target)
	}
	if put.Kind != domain.OfferHint {
		return fmt.Errorf("%w: %w: %d targeted %d", domain.ErrProtocol, domain.ErrCoinTargeted, player, target)
	}
	return nil
}

package domain

import (
	"fmt"
	"math/rand"
)

// OwnedHints is one player's own hint identifiers.
type OwnedHints struct {
	Player PlayerID
	Hints  []HintID
}

// crossRounds transposes per-player lists into rounds: round r holds every player's r-th entry.
func crossRounds[T any](lists [][]T, rounds int) ([][]T, error) {
	out := make([][]T, rounds)
	for r := range out {
		out[r] = make([]T, 0, len(lists))
	}
	for i, list := range lists {
		if len(list) != rounds {
			return nil, fmt.Errorf("%w: %w: list %d has %d entries, want %d", ErrProtocol, ErrRoundLength, i, len(list), rounds)
		}
		for r, item := range list {
			out[r] = append(out[r], item)
		}
	}
	return out, nil
}

// HandOutKnowledge grants every player one true hint owned by their target and hintsNum-1
// decoys that the target does not own.
//
// Each player's list is shuffled and transposed into hintsNum rounds. Round 0 is the truth round:
// a player learns their target's round-0 hint. Every later round is deranged independently, and a
// player's decoy is the hint the round assigns to their target, which by construction belongs to
// somebody else. Targets form a bijection and every round is injective, so no hint is handed out
// twice across the whole game.
func HandOutKnowledge(owned []OwnedHints, hintsNum int, targets map[PlayerID]PlayerID, rng *rand.Rand) (map[PlayerID]PlayerKnowledges, error) {
	if len(owned) < 2 {
		return nil, fmt.Errorf("%w: %w: got %d", ErrPrecondition, ErrTooFewPlayers, len(owned))
	}
	if hintsNum < 1 {
		return nil, fmt.Errorf("%w: %w: hints_num %d", ErrPrecondition, ErrHintCount, hintsNum)
	}

	lists := make([][]keyed[PlayerID, HintID], 0, len(owned))
	for _, o := range owned {
		if _, ok := targets[o.Player]; !ok {
			return nil, fmt.Errorf("%w: %w: no target for %d", ErrProtocol, ErrUnknownPlayer, o.Player)
		}
		list := make([]keyed[PlayerID, HintID], 0, len(o.Hints))
		for _, h := range o.Hints {
			list = append(list, keyed[PlayerID, HintID]{key: o.Player, value: h})
		}
		rng.Shuffle(len(list), func(i, j int) { list[i], list[j] = list[j], list[i] })
		lists = append(lists, list)
	}

	rounds, err := crossRounds(lists, hintsNum)
	if err != nil {
		return nil, err
	}

	truth := make(map[PlayerID]HintID, len(rounds[0]))
	for _, p := range rounds[0] {
		truth[p.key] = p.value
	}
	decoyRounds := make([]map[PlayerID]HintID, 0, hintsNum-1)
	for _, round := range rounds[1:] {
		decoyRounds = append(decoyRounds, shuffleShift(round, rng))
	}

	out := make(map[PlayerID]PlayerKnowledges, len(owned))
	for _, o := range owned {
		target := targets[o.Player]
		trueHint, ok := truth[target]
		if !ok {
			return nil, fmt.Errorf("%w: %w: target %d of %d has no hints", ErrProtocol, ErrUnknownPlayer, target, o.Player)
		}
		others := make([]HintID, 0, len(decoyRounds))
		for _, round := range decoyRounds {
			others = append(others, round[target])
		}
		out[o.Player] = PlayerKnowledges{Target: trueHint, Others: others}
	}
	return out, nil
}

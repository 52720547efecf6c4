package domain

import (
	"fmt"
	"maps"
	"math/rand"
	"slices"
)

// Deal builds a fully dealt board from every player's setup submission.
//
// Players are processed in ascending ID order so a seeded rng reproduces the same board.
// All preconditions are checked before anything is allocated; no partial board is ever returned.
func Deal(entries map[PlayerID]PasswordEntry, setting Setting, rng *rand.Rand) (*BoardState, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("%w: %w: got %d", ErrPrecondition, ErrTooFewPlayers, len(entries))
	}
	if setting.HintsNum < 1 {
		return nil, fmt.Errorf("%w: %w: hints_num %d", ErrPrecondition, ErrHintCount, setting.HintsNum)
	}
	ids := slices.Sorted(maps.Keys(entries))
	for _, id := range ids {
		if n := len(entries[id].Hints); n != setting.HintsNum {
			return nil, fmt.Errorf("%w: %w: player %d submitted %d, want %d", ErrPrecondition, ErrHintCount, id, n, setting.HintsNum)
		}
	}

	submissions := make([]Submission, 0, len(ids))
	for _, id := range ids {
		submissions = append(submissions, Submission{Player: id, Hints: entries[id].Hints})
	}
	var alloc HintAllocator
	hints, lists, err := ExtractDictionary(&alloc, submissions, setting.HintsNum)
	if err != nil {
		return nil, err
	}

	targets, err := AssignTargets(ids, rng)
	if err != nil {
		return nil, err
	}

	owned := make([]OwnedHints, 0, len(ids))
	for _, id := range ids {
		owned = append(owned, OwnedHints{Player: id, Hints: lists[id]})
	}
	knowledges, err := HandOutKnowledge(owned, setting.HintsNum, targets, rng)
	if err != nil {
		return nil, err
	}

	board := &BoardState{
		Hints:   hints,
		Players: make(map[PlayerID]*Player, len(ids)),
	}
	for _, id := range ids {
		board.Players[id] = &Player{
			Password:   entries[id].Password,
			Hints:      lists[id],
			Target:     targets[id],
			Knowledges: knowledges[id],
			Refs:       []HintID{},
			Coins:      setting.InitialCoins,
		}
	}
	return board, nil
}

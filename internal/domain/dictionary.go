package domain

import "fmt"

// HintAllocator hands out HintIDs in increasing order. One allocator serves one game.
type HintAllocator struct {
	next HintID
}

// Next returns a fresh identifier.
func (a *HintAllocator) Next() HintID {
	id := a.next
	a.next++
	return id
}

// Submission is one player's raw hint texts, in submission order.
type Submission struct {
	Player PlayerID
	Hints  []string
}

// ExtractDictionary assigns identifiers to every submitted hint, player-major in input order.
// It returns the flat dictionary and each player's own identifiers. A player with no hints is
// rejected when hintsNum > 0.
func ExtractDictionary(alloc *HintAllocator, submissions []Submission, hintsNum int) (map[HintID]Hint, map[PlayerID][]HintID, error) {
	total := 0
	seen := make(map[PlayerID]bool, len(submissions))
	for _, sub := range submissions {
		if seen[sub.Player] {
			return nil, nil, fmt.Errorf("%w: %w: %d", ErrPrecondition, ErrDuplicateSubmitID, sub.Player)
		}
		seen[sub.Player] = true
		if hintsNum > 0 && len(sub.Hints) == 0 {
			return nil, nil, fmt.Errorf("%w: %w: player %d", ErrPrecondition, ErrEmptyHints, sub.Player)
		}
		total += len(sub.Hints)
	}

	dictionary := make(map[HintID]Hint, total)
	lists := make(map[PlayerID][]HintID, len(submissions))
	for _, sub := range submissions {
		ids := make([]HintID, 0, len(sub.Hints))
		for _, text := range sub.Hints {
			id := alloc.Next()
			dictionary[id] = Hint{Text: text}
			ids = append(ids, id)
		}
		lists[sub.Player] = ids
	}
	return dictionary, lists, nil
}

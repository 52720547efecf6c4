package domain

import (
	"fmt"
	"math/rand"
)

// keyed pairs a derangement key with the value it contributes to the image.
type keyed[K comparable, V any] struct {
	key   K
	value V
}

// shuffleShift shuffles pairs and maps every key to the value of its cyclic predecessor.
// With distinct keys and at least two pairs no key receives its own value.
func shuffleShift[K comparable, V any](pairs []keyed[K, V], rng *rand.Rand) map[K]V {
	shuffled := make([]keyed[K, V], len(pairs))
	copy(shuffled, pairs)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	out := make(map[K]V, len(shuffled))
	for i, p := range shuffled {
		prev := i - 1
		if i == 0 {
			prev = len(shuffled) - 1
		}
		out[p.key] = shuffled[prev].value
	}
	return out
}

// AssignTargets builds a fixed-point-free permutation: every player targets their predecessor
// in a shuffled cyclic order. The result may consist of several cycles.
func AssignTargets(players []PlayerID, rng *rand.Rand) (map[PlayerID]PlayerID, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("%w: %w: got %d", ErrPrecondition, ErrTooFewPlayers, len(players))
	}
	pairs := make([]keyed[PlayerID, PlayerID], 0, len(players))
	seen := make(map[PlayerID]bool, len(players))
	for _, p := range players {
		if seen[p] {
			return nil, fmt.Errorf("%w: %w: %d", ErrPrecondition, ErrDuplicateSubmitID, p)
		}
		seen[p] = true
		pairs = append(pairs, keyed[PlayerID, PlayerID]{key: p, value: p})
	}
	return shuffleShift(pairs, rng), nil
}

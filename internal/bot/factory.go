package bot

import (
	"fmt"
	"math/rand"
)

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand, vocabulary []string) (Brain, error) {
	if rng == nil {
		return nil, fmt.Errorf("rng is required")
	}
	switch level {
	case BotLevelRandom:
		return &RandomBot{rng: rng, vocabulary: vocabulary, AnswerRate: 0.2}, nil
	case BotLevelGood:
		return &GoodBot{rng: rng, vocabulary: vocabulary, Patience: 3}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

// ParseLevel maps identity difficulty names to levels.
func ParseLevel(name string) BotLevel {
	switch name {
	case "good", "hard":
		return BotLevelGood
	default:
		return BotLevelRandom
	}
}

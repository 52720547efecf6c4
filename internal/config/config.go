package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"hintmarket/internal/domain"
)

const (
	DefaultMinPlayers = 2
	DefaultMaxPlayers = 8
	DefaultTickRate   = 5
)

type GameConfig struct {
	HintsNum     int `json:"hints_num"`
	InitialCoins int `json:"initial_coins"`
	MinPlayers   int `json:"min_players"`
	MaxPlayers   int `json:"max_players"`
	// TickRate is the authoritative match tick rate in ticks per second.
	TickRate int `json:"tick_rate"`
}

// Default returns the configuration used when no file was loaded.
func Default() GameConfig {
	recommended := domain.RecommendedSetting()
	return GameConfig{
		HintsNum:     recommended.HintsNum,
		InitialCoins: recommended.InitialCoins,
		MinPlayers:   DefaultMinPlayers,
		MaxPlayers:   DefaultMaxPlayers,
		TickRate:     DefaultTickRate,
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// ParseGameConfig decodes a config file. Omitted fields take their defaults.
func ParseGameConfig(data []byte) (*GameConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	switch {
	case c.HintsNum < 1:
		return nil, fmt.Errorf("hints_num must be positive, got %d", c.HintsNum)
	case c.InitialCoins < 0:
		return nil, fmt.Errorf("initial_coins must not be negative, got %d", c.InitialCoins)
	case c.MinPlayers < 2:
		return nil, fmt.Errorf("min_players must be at least 2, got %d", c.MinPlayers)
	case c.MaxPlayers < c.MinPlayers:
		return nil, fmt.Errorf("max_players %d is below min_players %d", c.MaxPlayers, c.MinPlayers)
	case c.TickRate < 1:
		return nil, fmt.Errorf("tick_rate must be positive, got %d", c.TickRate)
	}
	return &c, nil
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		cfg, loadErr = ParseGameConfig(data)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

// Settings returns the rule knobs attached to newly registered games.
func (c GameConfig) Settings() domain.Setting {
	return domain.Setting{HintsNum: c.HintsNum, InitialCoins: c.InitialCoins}
}

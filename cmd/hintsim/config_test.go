package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Valid", Config{players: 4, hints: 3, coins: 3, rounds: 10}, false},
		{"TooFewPlayers", Config{players: 1, hints: 3, coins: 3, rounds: 10}, true},
		{"TooManyPlayers", Config{players: 9, hints: 3, coins: 3, rounds: 10}, true},
		{"NoHints", Config{players: 4, hints: 0, coins: 3, rounds: 10}, true},
		{"NegativeCoins", Config{players: 4, hints: 3, coins: -1, rounds: 10}, true},
		{"NoRounds", Config{players: 4, hints: 3, coins: 3, rounds: 0}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := test.cfg.validate(); (err != nil) != test.wantErr {
				t.Fatalf("validate() = %v, wantErr %t", err, test.wantErr)
			}
		})
	}
}

func TestCommandReadsEnv(t *testing.T) {
	t.Setenv("HINTSIM_PLAYERS", "3")
	t.Setenv("HINTSIM_SECRET", "env-secret")

	cfg := &Config{}
	cmd := newCmd(cfg)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--seed", "7", "--rounds", "10"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if cfg.players != 3 || cfg.secret != "env-secret" || cfg.seed != 7 {
		t.Fatalf("config = %+v", *cfg)
	}
	if !strings.Contains(out.String(), "all replicas agree") {
		t.Fatalf("output = %q", out.String())
	}
}

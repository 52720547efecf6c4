package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"hintmarket/internal/app"
	"hintmarket/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunConverges(t *testing.T) {
	tests := []struct {
		name    string
		players int
		secret  string
	}{
		{"TwoPlayersUnsealed", 2, ""},
		{"FourPlayersSealed", 4, "sim-secret"},
		{"SixPlayersSealed", 6, "sim-secret"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for seed := int64(1); seed <= 3; seed++ {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				opts := Options{
					Players: test.players,
					Setting: domain.RecommendedSetting(),
					Seed:    seed,
					Rounds:  20,
					Secret:  test.secret,
				}
				report, err := Run(ctx, opts, discardLogger())
				cancel()
				if err != nil {
					t.Fatalf("seed %d: Run: %v", seed, err)
				}
				if report.Stage != app.StageBoard {
					t.Fatalf("seed %d: stage = %s", seed, report.Stage)
				}
				if report.Phase != domain.PhaseFinished && report.Round <= opts.Rounds {
					t.Fatalf("seed %d: stopped early in round %d phase %s", seed, report.Round, report.Phase)
				}
				if report.Phase == domain.PhaseFinished && len(report.Winners) == 0 {
					t.Fatalf("seed %d: finished without winners", seed)
				}

				total := 0
				for _, coins := range report.Coins {
					if coins < 0 {
						t.Fatalf("seed %d: negative balance %v", seed, report.Coins)
					}
					total += coins
				}
				if want := test.players * opts.Setting.InitialCoins; total != want {
					t.Fatalf("seed %d: coins total %d, want %d", seed, total, want)
				}
			}
		})
	}
}

func TestRunRejectsBadOptions(t *testing.T) {
	_, err := Run(context.Background(), Options{Players: 1, Setting: domain.RecommendedSetting(), Rounds: 5}, discardLogger())
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("err = %v, want precondition", err)
	}
	if _, err := Run(context.Background(), Options{Players: 3, Setting: domain.RecommendedSetting()}, discardLogger()); err == nil {
		t.Fatal("expected error for zero rounds")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Options{Players: 3, Setting: domain.RecommendedSetting(), Rounds: 5}, discardLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

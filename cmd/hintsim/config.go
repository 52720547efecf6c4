package main

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"hintmarket/internal/config"
	"hintmarket/internal/domain"
	"hintmarket/internal/sim"
)

type Config struct {
	players int
	hints   int
	coins   int
	seed    int64
	rounds  int
	secret  string
	verbose bool
}

func (c *Config) validate() error {
	if c.players < config.DefaultMinPlayers || c.players > config.DefaultMaxPlayers {
		return fmt.Errorf("invalid player count (must be between %d-%d inclusive): %d", config.DefaultMinPlayers, config.DefaultMaxPlayers, c.players)
	}
	if c.hints < 1 {
		return fmt.Errorf("invalid hint count (must be positive): %d", c.hints)
	}
	if c.coins < 0 {
		return fmt.Errorf("invalid initial coins (must not be negative): %d", c.coins)
	}
	if c.rounds < 1 {
		return fmt.Errorf("invalid round limit (must be positive): %d", c.rounds)
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	level := slog.LevelInfo
	if c.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("HINTSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := config.Default()

	cmd := &cobra.Command{
		Use:           "hintsim",
		Short:         "Plays a hint market game between bot peers and checks that every replica converges.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.IntVarP(&cfg.players, "players", "n", 4, "number of bot peers (env: HINTSIM_PLAYERS)")
	fs.IntVar(&cfg.hints, "hints", defaults.HintsNum, "hints each player submits (env: HINTSIM_HINTS)")
	fs.IntVar(&cfg.coins, "coins", defaults.InitialCoins, "coins each player starts with (env: HINTSIM_COINS)")
	fs.Int64VarP(&cfg.seed, "seed", "s", 1, "seed for the dealer and the bots (env: HINTSIM_SEED)")
	fs.IntVarP(&cfg.rounds, "rounds", "r", 30, "stop after this many rounds without a winner (env: HINTSIM_ROUNDS)")
	fs.StringVar(&cfg.secret, "secret", "", "seal envelopes with this secret (env: HINTSIM_SECRET)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log every resolved result (env: HINTSIM_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("hintsim v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func run(cmd *cobra.Command, cfg *Config) error {
	logger := cfg.logger()
	opts := sim.Options{
		Players: cfg.players,
		Setting: domain.Setting{HintsNum: cfg.hints, InitialCoins: cfg.coins},
		Seed:    cfg.seed,
		Rounds:  cfg.rounds,
		Secret:  cfg.secret,
	}
	logger.Info("starting simulation", "players", opts.Players, "hints", opts.Setting.HintsNum, "coins", opts.Setting.InitialCoins, "seed", opts.Seed)

	report, err := sim.Run(cmd.Context(), opts, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "phase:   %s (round %d)\n", report.Phase, report.Round)
	fmt.Fprintf(out, "results: %d\n", report.Seq)
	fmt.Fprintf(out, "winners: %v\n", report.Winners)
	for _, id := range slices.Sorted(maps.Keys(report.Coins)) {
		fmt.Fprintf(out, "  player %d: %d coins\n", id, report.Coins[id])
	}
	fmt.Fprintf(out, "state:   %s (all replicas agree)\n", report.Hash)
	return nil
}

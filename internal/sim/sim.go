// Package sim plays whole games between bot peers. One goroutine is the resolving
// authority; every peer holds its own replica and only learns about the game from the
// ordered envelope stream.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"hintmarket/internal/app"
	"hintmarket/internal/bot"
	"hintmarket/internal/domain"
	"hintmarket/internal/ports"
)

// Options configures a simulated game.
type Options struct {
	Players int
	Setting domain.Setting
	Seed    int64
	// Rounds stops the game once this many market rounds have been played without a winner.
	Rounds int
	// Secret seals envelopes when non-empty.
	Secret string
}

// Report summarises a finished simulation.
type Report struct {
	Seq     uint64
	Stage   app.Stage
	Phase   domain.Phase
	Round   int
	Winners []domain.PlayerID
	Coins   map[domain.PlayerID]int
	Hash    string
}

var ErrDiverged = errors.New("peer replicas diverged")

type request struct {
	cmd app.Command
	ack chan reply
}

// reply acknowledges a request. seq is the authority's sequence after handling it: the
// envelope the command produced, or the state that rejected it.
type reply struct {
	seq uint64
	err error
}

// Run plays one game to its end or to the round limit and checks that every peer
// reached the authority's state hash.
func Run(ctx context.Context, opts Options, logger *slog.Logger) (Report, error) {
	if opts.Players < app.MinPlayersToStartGame {
		return Report{}, fmt.Errorf("%w: need at least %d players, got %d", domain.ErrPrecondition, app.MinPlayersToStartGame, opts.Players)
	}
	if opts.Rounds < 1 {
		return Report{}, fmt.Errorf("rounds must be positive, got %d", opts.Rounds)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	var sealer *app.Sealer
	if opts.Secret != "" {
		sealer = app.NewSealer(opts.Secret, "hintsim")
	}
	authority := app.NewAuthority(app.NewService(rand.New(rand.NewSource(opts.Seed)), opts.Setting), sealer)

	profiles := domain.Profiles{Players: make(map[domain.PlayerID]domain.PlayerProfile, opts.Players)}
	peers := make([]*peer, 0, opts.Players)
	commands := make(chan request)
	for i := 1; i <= opts.Players; i++ {
		id := domain.PlayerID(i)
		level := bot.BotLevelGood
		if i%2 == 0 {
			level = bot.BotLevelRandom
		}
		name := fmt.Sprintf("bot-%d", i)
		agent, err := bot.NewAgent(id, name, level, rand.New(rand.NewSource(opts.Seed+int64(i))))
		if err != nil {
			return Report{}, err
		}
		profiles.Players[id] = domain.PlayerProfile{DisplayName: name}
		peers = append(peers, &peer{
			agent:    agent,
			replica:  app.NewReplica(),
			sealer:   sealer,
			inbox:    make(chan app.Envelope, 16),
			ack:      make(chan reply, 1),
			commands: commands,
			logger:   logger.With("player", i),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() {
			for _, p := range peers {
				close(p.inbox)
			}
		}()
		return serve(gctx, authority, app.InitProfile(profiles), commands, peers, opts.Rounds, logger)
	})
	for _, p := range peers {
		g.Go(func() error { return p.run(gctx) })
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return report(authority, peers)
}

func report(authority *app.Authority, peers []*peer) (Report, error) {
	state := authority.Replica().State()
	hash, err := authority.Replica().Hash()
	if err != nil {
		return Report{}, err
	}
	for _, p := range peers {
		got, err := p.replica.Hash()
		if err != nil {
			return Report{}, err
		}
		if got != hash || p.replica.Seq() != authority.Replica().Seq() {
			return Report{}, fmt.Errorf("%w: player %d at seq %d", ErrDiverged, p.agent.ID, p.replica.Seq())
		}
	}

	r := Report{Seq: authority.Replica().Seq(), Stage: state.Stage, Phase: state.Phase(), Hash: hash}
	if state.Board != nil {
		r.Coins = make(map[domain.PlayerID]int, len(state.Board.Players))
		for id, p := range state.Board.Players {
			r.Coins[id] = p.Coins
		}
	}
	if state.Game != nil {
		r.Round = state.Game.Round
		r.Winners = state.Game.Winners
	}
	return r, nil
}

// serve is the resolving party: it turns commands into envelopes and hands each
// envelope to every peer before taking the next command.
func serve(ctx context.Context, authority *app.Authority, first app.Command, commands <-chan request, peers []*peer, rounds int, logger *slog.Logger) error {
	var sink ports.ResultSink = fanout(peers)
	broadcast := func(env app.Envelope) error { return sink.Publish(ctx, env) }

	env, err := authority.Submit(first)
	if err != nil {
		return err
	}
	if err := broadcast(env); err != nil {
		return err
	}

	for {
		state := authority.Replica().State()
		if done(&state, rounds) {
			logger.Info("game over", "seq", authority.Replica().Seq(), "phase", state.Phase())
			return nil
		}

		select {
		case req := <-commands:
			env, err := authority.Submit(req.cmd)
			if err == nil {
				logger.Debug("resolved", "seq", env.Seq, "kind", env.Result.Kind)
				if err := broadcast(env); err != nil {
					return err
				}
			}
			req.ack <- reply{seq: authority.Replica().Seq(), err: err}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// fanout delivers every envelope to each peer's inbox in peer order.
type fanout []*peer

func (f fanout) Publish(ctx context.Context, env app.Envelope) error {
	for _, p := range f {
		select {
		case p.inbox <- env:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func done(state *app.State, rounds int) bool {
	if state.Stage != app.StageBoard {
		return false
	}
	return state.Phase() == domain.PhaseFinished || state.Game.Round > rounds
}

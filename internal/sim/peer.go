package sim

import (
	"context"
	"fmt"
	"log/slog"

	"hintmarket/internal/app"
	"hintmarket/internal/bot"
)

// peer is one player's process: a replica fed by the authority and a bot that
// decides from that replica alone.
type peer struct {
	agent    *bot.Agent
	replica  *app.Replica
	sealer   *app.Sealer
	inbox    chan app.Envelope
	ack      chan reply
	commands chan<- request
	logger   *slog.Logger
}

// run keeps at most one command in flight. After an acknowledgement it decides again
// only once its replica has caught up with the authority's sequence at that point,
// so a rejected command is reconsidered against the state that rejected it.
func (p *peer) run(ctx context.Context) error {
	var (
		pending  *request
		awaiting bool
		until    uint64
	)

	decide := func() error {
		if pending != nil || awaiting || p.replica.Seq() < until {
			return nil
		}
		state := p.replica.State()
		cmd, ok, err := p.agent.Play(&state)
		if err != nil {
			return fmt.Errorf("player %d: %w", p.agent.ID, err)
		}
		if ok {
			pending = &request{cmd: cmd, ack: p.ack}
		}
		return nil
	}

	for {
		var out chan<- request
		var next request
		if pending != nil {
			out, next = p.commands, *pending
		}
		var ack <-chan reply
		if awaiting {
			ack = p.ack
		}

		select {
		case env, ok := <-p.inbox:
			if !ok {
				return nil
			}
			if err := p.replica.ApplyEnvelope(env, p.sealer); err != nil {
				return fmt.Errorf("player %d: %w", p.agent.ID, err)
			}
			if err := decide(); err != nil {
				return err
			}
		case out <- next:
			pending, awaiting = nil, true
		case r := <-ack:
			awaiting = false
			until = r.seq
			if r.err != nil {
				p.logger.Debug("command rejected", "seq", p.replica.Seq(), "until", r.seq, "err", r.err)
			}
			if err := decide(); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

package app

import (
	"encoding/json"
	"errors"
	"fmt"

	"hintmarket/internal/domain"
)

var (
	ErrDesynced    = errors.New("replica is desynchronized")
	ErrSequenceGap = errors.New("envelope out of sequence")
	ErrHashDiffers = errors.New("state hash differs from the authority")
)

// Replica is one peer's copy of the game. It only ever changes through Reduce.
//
// The first rejected result latches: a replica that failed to apply a result refuses every
// later one until Restore replaces its state with a known-good snapshot.
type Replica struct {
	state State
	seq   uint64
	err   error
}

func NewReplica() *Replica {
	return &Replica{state: Blank()}
}

// State returns a deep copy of the current state.
func (r *Replica) State() State { return r.state.Clone() }

// Seq is the number of results applied so far.
func (r *Replica) Seq() uint64 { return r.seq }

// Err returns the latched error, if any.
func (r *Replica) Err() error { return r.err }

// Hash is the hash of the current state.
func (r *Replica) Hash() (string, error) { return r.state.Hash() }

// Apply reduces one result into the replica.
func (r *Replica) Apply(res Result) error {
	if r.err != nil {
		return fmt.Errorf("%w: %w", ErrDesynced, r.err)
	}
	if err := Reduce(&r.state, res); err != nil {
		r.err = err
		return err
	}
	r.seq++
	return nil
}

// ApplyEnvelope verifies, applies and cross-checks one envelope from the authority.
// sealer may be nil when the transport is already trusted.
func (r *Replica) ApplyEnvelope(env Envelope, sealer *Sealer) error {
	if r.err != nil {
		return fmt.Errorf("%w: %w", ErrDesynced, r.err)
	}
	if sealer != nil {
		if err := sealer.Verify(env); err != nil {
			return err
		}
	}
	if env.Seq != r.seq+1 {
		return fmt.Errorf("%w: got %d, want %d", ErrSequenceGap, env.Seq, r.seq+1)
	}
	if err := r.Apply(env.Result); err != nil {
		return err
	}
	hash, err := r.state.Hash()
	if err != nil {
		return err
	}
	if hash != env.StateHash {
		r.err = fmt.Errorf("%w: %w: seq %d", domain.ErrProtocol, ErrHashDiffers, env.Seq)
		return r.err
	}
	return nil
}

type snapshot struct {
	Seq   uint64 `json:"seq"`
	State State  `json:"state"`
}

// Snapshot encodes the replica for late joiners and recovery.
func (r *Replica) Snapshot() ([]byte, error) {
	return json.Marshal(snapshot{Seq: r.seq, State: r.state})
}

// Restore replaces the replica's state with a snapshot and clears any latched error.
func (r *Replica) Restore(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: snapshot: %v", domain.ErrProtocol, err)
	}
	if err := snap.State.validate(); err != nil {
		return err
	}
	r.state, r.seq, r.err = snap.State, snap.Seq, nil
	return nil
}

// validate checks that the stage carries exactly the data it needs.
func (s *State) validate() error {
	var ok bool
	switch s.Stage {
	case StageBlank:
		ok = s.Profiles == nil && s.Board == nil
	case StageStandbyPassword:
		ok = s.Profiles != nil && s.Setting != nil && s.Passwords != nil
	case StageBoard:
		ok = s.Profiles != nil && s.Setting != nil && s.Board != nil && s.Game != nil
		if ok {
			switch s.Game.Phase {
			case domain.PhaseSelectPutToMarket:
				ok = s.Game.Offers != nil
			case domain.PhaseSelectAction:
				ok = s.Game.Actions != nil && s.Game.Market != nil
			case domain.PhaseConfirmAnswer, domain.PhaseFinished:
			default:
				ok = false
			}
		}
	}
	if !ok {
		return fmt.Errorf("%w: snapshot state is malformed in stage %q", domain.ErrProtocol, s.Stage)
	}
	return nil
}

// Authority is the single resolving party of a game. It owns the Service and a replica of
// its own, and turns commands into sealed envelopes.
type Authority struct {
	svc     *Service
	replica *Replica
	sealer  *Sealer
}

// NewAuthority wires a resolving party. sealer may be nil to emit unsealed envelopes.
func NewAuthority(svc *Service, sealer *Sealer) *Authority {
	return &Authority{svc: svc, replica: NewReplica(), sealer: sealer}
}

// Replica exposes the authority's own replica for reads and snapshots.
func (a *Authority) Replica() *Replica { return a.replica }

// Submit resolves cmd, applies the result locally and returns the envelope to broadcast.
// A command rejected by Resolve leaves the game untouched.
func (a *Authority) Submit(cmd Command) (Envelope, error) {
	if err := a.replica.Err(); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrDesynced, err)
	}
	res, err := a.svc.Resolve(&a.replica.state, cmd)
	if err != nil {
		return Envelope{}, err
	}
	if err := a.replica.Apply(res); err != nil {
		return Envelope{}, err
	}
	hash, err := a.replica.Hash()
	if err != nil {
		return Envelope{}, err
	}
	env := Envelope{Seq: a.replica.Seq(), Result: res, StateHash: hash}
	if a.sealer != nil {
		if err := a.sealer.Seal(&env); err != nil {
			return Envelope{}, err
		}
	}
	return env, nil
}

package app

import (
	"errors"
	"testing"

	"hintmarket/internal/domain"
)

func TestReplicasConvergeWithAuthority(t *testing.T) {
	a := NewAuthority(NewService(nil, domain.RecommendedSetting()), NewSealer("secret", "match-1"))
	sealer := NewSealer("secret", "match-1")

	envs := dealBoard(t, a, 4)
	envs = append(envs, offerFirstHints(t, a)...)
	envs = append(envs,
		mustSubmit(t, a, PushAction(1, domain.Exchange(2))),
		mustSubmit(t, a, PushAction(2, domain.Exchange(3))),
		mustSubmit(t, a, PushAction(3, domain.AnswerWith("guess"))),
		mustSubmit(t, a, PushAction(4, domain.Pass())),
		mustSubmit(t, a, ConfirmAnswer(2)),
	)

	want, err := a.Replica().Hash()
	if err != nil {
		t.Fatalf("authority hash: %v", err)
	}
	for i := 0; i < 3; i++ {
		r := NewReplica()
		for _, env := range envs {
			if err := r.ApplyEnvelope(env, sealer); err != nil {
				t.Fatalf("replica %d seq %d: %v", i, env.Seq, err)
			}
		}
		got, _ := r.Hash()
		if got != want {
			t.Fatalf("replica %d hash = %s, want %s", i, got, want)
		}
	}
}

func TestReplicaRejectsSequenceGap(t *testing.T) {
	a := newTestAuthority(31)
	envs := dealBoard(t, a, 2)

	r := NewReplica()
	if err := r.ApplyEnvelope(envs[1], nil); !errors.Is(err, ErrSequenceGap) {
		t.Fatalf("err = %v, want sequence gap", err)
	}
	if r.Err() != nil {
		t.Fatal("a sequence gap must not latch the replica")
	}
}

func TestReplicaLatchesFirstFailure(t *testing.T) {
	r := NewReplica()
	e := testEntry(1)
	if err := r.Apply(Result{Kind: ResultPushPassword, Player: 1, Password: &e}); !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("err = %v, want protocol violation", err)
	}

	profiles := testProfiles(2)
	setting := domain.RecommendedSetting()
	err := r.Apply(Result{Kind: ResultInitProfile, Profiles: &profiles, Setting: &setting})
	if !errors.Is(err, ErrDesynced) {
		t.Fatalf("err = %v, want desynced", err)
	}
	if r.Seq() != 0 {
		t.Fatalf("seq = %d, want 0", r.Seq())
	}
}

func TestReplicaDetectsHashDivergence(t *testing.T) {
	a := newTestAuthority(37)
	envs := dealBoard(t, a, 2)
	envs[0].StateHash = "tampered"

	r := NewReplica()
	if err := r.ApplyEnvelope(envs[0], nil); !errors.Is(err, ErrHashDiffers) {
		t.Fatalf("err = %v, want hash mismatch", err)
	}
	if !errors.Is(r.Err(), ErrHashDiffers) {
		t.Fatal("hash mismatch must latch the replica")
	}
}

func TestSnapshotRestore(t *testing.T) {
	a := newTestAuthority(41)
	envs := dealBoard(t, a, 3)
	envs = append(envs, offerFirstHints(t, a)[:1]...)

	data, err := a.Replica().Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	r := NewReplica()
	// Latch an error first: Restore must clear it.
	_ = r.ApplyEnvelope(envs[1], nil)
	_ = r.Apply(Result{Kind: "bogus"})
	if err := r.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if r.Seq() != uint64(len(envs)) || r.Err() != nil {
		t.Fatalf("seq = %d err = %v, want %d and nil", r.Seq(), r.Err(), len(envs))
	}
	want, _ := a.Replica().Hash()
	if got, _ := r.Hash(); got != want {
		t.Fatalf("restored hash = %s, want %s", got, want)
	}

	// The restored replica keeps following the stream.
	state := a.Replica().State()
	env := mustSubmit(t, a, PushPutToMarket(2, domain.HintOffer(state.Board.Players[2].Hints[0])))
	if err := r.ApplyEnvelope(env, nil); err != nil {
		t.Fatalf("apply after restore: %v", err)
	}
}

func TestRestoreRejectsMalformedSnapshot(t *testing.T) {
	r := NewReplica()
	if err := r.Restore([]byte(`{"seq":1,"state":{"stage":"board"}}`)); !errors.Is(err, domain.ErrProtocol) {
		t.Fatalf("err = %v, want protocol violation", err)
	}
	if err := r.Restore([]byte(`{"seq":1,"state":{"stage":"standby_password","profiles":{"players":{}},"setting":{},"passwords":{"capacity":1,"inputs":{}}}}`)); err == nil {
		t.Fatal("expected capacity error")
	}
}

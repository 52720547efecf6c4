package domain

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func testEntries(players, hints int) map[PlayerID]PasswordEntry {
	out := make(map[PlayerID]PasswordEntry, players)
	for p := 1; p <= players; p++ {
		entry := PasswordEntry{Password: fmt.Sprintf("pw%d", p)}
		for h := 0; h < hints; h++ {
			entry.Hints = append(entry.Hints, fmt.Sprintf("p%d-h%d", p, h))
		}
		out[PlayerID(p)] = entry
	}
	return out
}

func TestExtractDictionaryOrder(t *testing.T) {
	var alloc HintAllocator
	subs := []Submission{
		{Player: 4, Hints: []string{"x", "y"}},
		{Player: 1, Hints: []string{"z"}},
	}
	hints, lists, err := ExtractDictionary(&alloc, subs, 1)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !slices.Equal(lists[4], []HintID{0, 1}) || !slices.Equal(lists[1], []HintID{2}) {
		t.Fatalf("lists = %v", lists)
	}
	if hints[0].Text != "x" || hints[2].Text != "z" || len(hints) != 3 {
		t.Fatalf("hints = %v", hints)
	}
	if next := alloc.Next(); next != 3 {
		t.Fatalf("next id = %d, want 3", next)
	}

	if _, _, err := ExtractDictionary(&alloc, []Submission{{Player: 1}}, 3); !errors.Is(err, ErrEmptyHints) {
		t.Fatalf("err = %v, want empty hints", err)
	}
	if _, _, err := ExtractDictionary(&alloc, []Submission{{Player: 1, Hints: []string{"a"}}, {Player: 1, Hints: []string{"b"}}}, 1); !errors.Is(err, ErrDuplicateSubmitID) {
		t.Fatalf("err = %v, want duplicate player", err)
	}
}

func TestAssignTargetsIsDerangement(t *testing.T) {
	for n := 2; n <= 8; n++ {
		players := make([]PlayerID, n)
		for i := range players {
			players[i] = PlayerID(i + 1)
		}
		for seed := int64(0); seed < 50; seed++ {
			targets, err := AssignTargets(players, rand.New(rand.NewSource(seed)))
			if err != nil {
				t.Fatalf("n=%d seed=%d: %v", n, seed, err)
			}
			seen := map[PlayerID]bool{}
			for _, p := range players {
				target, ok := targets[p]
				if !ok || target == p {
					t.Fatalf("n=%d seed=%d: player %d target %d", n, seed, p, target)
				}
				if seen[target] {
					t.Fatalf("n=%d seed=%d: target %d assigned twice", n, seed, target)
				}
				seen[target] = true
			}
		}
	}

	if _, err := AssignTargets([]PlayerID{1}, rand.New(rand.NewSource(1))); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("err = %v, want too few players", err)
	}
}

func TestDealKnowledge(t *testing.T) {
	for _, tc := range []struct{ players, hints int }{{2, 1}, {2, 3}, {3, 3}, {5, 4}, {8, 3}} {
		for seed := int64(0); seed < 20; seed++ {
			board, err := Deal(testEntries(tc.players, tc.hints), Setting{HintsNum: tc.hints, InitialCoins: 3}, rand.New(rand.NewSource(seed)))
			if err != nil {
				t.Fatalf("%v seed=%d: deal: %v", tc, seed, err)
			}

			if len(board.Hints) != tc.players*tc.hints {
				t.Fatalf("%v: dictionary size = %d", tc, len(board.Hints))
			}
			for id := range board.Hints {
				if id < 0 || int(id) >= len(board.Hints) {
					t.Fatalf("%v: hint id %d out of range", tc, id)
				}
			}

			handed := map[HintID]PlayerID{}
			for _, id := range board.PlayerIDs() {
				p := board.Players[id]
				target := board.Players[p.Target]
				if p.Target == id {
					t.Fatalf("%v seed=%d: player %d targets themself", tc, seed, id)
				}
				if !target.Owns(p.Knowledges.Target) {
					t.Fatalf("%v seed=%d: true hint %d not owned by target %d", tc, seed, p.Knowledges.Target, p.Target)
				}
				if len(p.Knowledges.Others) != tc.hints-1 {
					t.Fatalf("%v: player %d has %d decoys", tc, id, len(p.Knowledges.Others))
				}
				for _, h := range append([]HintID{p.Knowledges.Target}, p.Knowledges.Others...) {
					if other, dup := handed[h]; dup {
						t.Fatalf("%v seed=%d: hint %d handed to %d and %d", tc, seed, h, other, id)
					}
					handed[h] = id
				}
				for _, h := range p.Knowledges.Others {
					if target.Owns(h) {
						t.Fatalf("%v seed=%d: decoy %d is owned by target %d", tc, seed, h, p.Target)
					}
				}
				if p.Coins != 3 || len(p.Refs) != 0 {
					t.Fatalf("%v: player %d starts with coins %d refs %v", tc, id, p.Coins, p.Refs)
				}
			}
		}
	}
}

func TestDealIsReproducible(t *testing.T) {
	a, err := Deal(testEntries(4, 3), RecommendedSetting(), rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("deal: %v", err)
	}
	b, _ := Deal(testEntries(4, 3), RecommendedSetting(), rand.New(rand.NewSource(9)))
	for _, id := range a.PlayerIDs() {
		pa, pb := a.Players[id], b.Players[id]
		if pa.Target != pb.Target || pa.Knowledges.Target != pb.Knowledges.Target || !slices.Equal(pa.Knowledges.Others, pb.Knowledges.Others) {
			t.Fatalf("player %d differs between equal seeds", id)
		}
	}
}

func TestDealRejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	uneven := testEntries(3, 3)
	short := uneven[2]
	short.Hints = short.Hints[:2]
	uneven[2] = short

	tests := []struct {
		name    string
		entries map[PlayerID]PasswordEntry
		setting Setting
		want    error
	}{
		{"one player", testEntries(1, 3), RecommendedSetting(), ErrTooFewPlayers},
		{"hint count mismatch", uneven, RecommendedSetting(), ErrHintCount},
		{"zero hints", testEntries(2, 0), Setting{HintsNum: 0}, ErrHintCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := Deal(tt.entries, tt.setting, rng)
			if !errors.Is(err, ErrPrecondition) || !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if board != nil {
				t.Fatal("no partial board on error")
			}
		})
	}
}

func TestCrossRoundsRejectsUnevenLists(t *testing.T) {
	if _, err := crossRounds([][]int{{1, 2}, {3}}, 2); !errors.Is(err, ErrProtocol) || !errors.Is(err, ErrRoundLength) {
		t.Fatalf("err = %v, want round length protocol violation", err)
	}
	rounds, err := crossRounds([][]int{{1, 2}, {3, 4}}, 2)
	if err != nil {
		t.Fatalf("cross: %v", err)
	}
	if !slices.Equal(rounds[0], []int{1, 3}) || !slices.Equal(rounds[1], []int{2, 4}) {
		t.Fatalf("rounds = %v", rounds)
	}
}

package domain

import (
	"maps"
	"slices"
)

// PlayerID identifies a seated participant for the lifetime of one game.
type PlayerID int

// HintID identifies a hint in the board dictionary. IDs are never reused within a game.
type HintID int

// Hint is a secret word or phrase submitted by a player.
type Hint struct {
	Text string `json:"text"`
}

// PlayerKnowledges is what a player is told about their target at setup.
type PlayerKnowledges struct {
	Target HintID   `json:"target"` // owned by the target
	Others []HintID `json:"others"` // decoys, never owned by the target
}

// Player holds the game-visible state of one participant.
type Player struct {
	Password   string           `json:"password"`
	Hints      []HintID         `json:"hints"`
	Target     PlayerID         `json:"target"`
	Knowledges PlayerKnowledges `json:"knowledges"`
	Refs       []HintID         `json:"refs"`
	Coins      int              `json:"coins"`
}

// Owns reports whether the player currently owns the hint.
func (p *Player) Owns(hint HintID) bool {
	return slices.Contains(p.Hints, hint)
}

// BoardState is the snapshot of a running game.
type BoardState struct {
	Hints   map[HintID]Hint      `json:"hints"`
	Players map[PlayerID]*Player `json:"players"`
}

// PlayerIDs returns the seated players in ascending order.
func (b *BoardState) PlayerIDs() []PlayerID {
	return slices.Sorted(maps.Keys(b.Players))
}

// Clone returns a deep copy so replicas never share slices with a delivered result.
func (b *BoardState) Clone() *BoardState {
	if b == nil {
		return nil
	}
	out := &BoardState{
		Hints:   maps.Clone(b.Hints),
		Players: make(map[PlayerID]*Player, len(b.Players)),
	}
	for id, p := range b.Players {
		cp := *p
		cp.Hints = slices.Clone(p.Hints)
		cp.Refs = slices.Clone(p.Refs)
		cp.Knowledges.Others = slices.Clone(p.Knowledges.Others)
		out.Players[id] = &cp
	}
	return out
}

// PlayerProfile is the lobby-provided identity of a participant.
type PlayerProfile struct {
	DisplayName string `json:"display_name"`
}

// Profiles maps every participant to their profile. Its size fixes barrier capacities.
type Profiles struct {
	Players map[PlayerID]PlayerProfile `json:"players"`
}

// IDs returns the profile keys in ascending order.
func (p Profiles) IDs() []PlayerID {
	return slices.Sorted(maps.Keys(p.Players))
}

// Has reports whether the player has a profile.
func (p Profiles) Has(id PlayerID) bool {
	_, ok := p.Players[id]
	return ok
}

// PasswordEntry is one player's setup submission.
type PasswordEntry struct {
	Password string   `json:"password"`
	Hints    []string `json:"hints"`
}

// Setting holds the per-game rule knobs fixed when profiles are registered.
type Setting struct {
	HintsNum     int `json:"hints_num"`
	InitialCoins int `json:"initial_coins"`
}

// RecommendedSetting returns the default rule set.
func RecommendedSetting() Setting {
	return Setting{HintsNum: 3, InitialCoins: 3}
}

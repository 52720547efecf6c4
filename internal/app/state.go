package app

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"hintmarket/internal/domain"
)

// Stage is the top-level lifecycle stage of a game.
type Stage string

const (
	StageBlank           Stage = "blank"
	StageStandbyPassword Stage = "standby_password"
	StageBoard           Stage = "board"
)

// State is the replicated application state. Peers that applied the same results in the
// same order hold byte-identical encodings of it.
type State struct {
	Stage     Stage                                                       `json:"stage"`
	Profiles  *domain.Profiles                                            `json:"profiles,omitempty"`
	Setting   *domain.Setting                                             `json:"setting,omitempty"`
	Passwords *domain.Simultaneous[domain.PlayerID, domain.PasswordEntry] `json:"passwords,omitempty"`
	Board     *domain.BoardState                                          `json:"board,omitempty"`
	Game      *domain.GamePhase                                           `json:"game,omitempty"`
}

// Blank returns the state every peer starts from.
func Blank() State {
	return State{Stage: StageBlank}
}

// Hash is the hex sha256 of the canonical JSON encoding. encoding/json sorts map keys,
// so equal states hash equally on every peer.
func (s *State) Hash() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Clone returns a deep copy of the state.
func (s *State) Clone() State {
	out := State{Stage: s.Stage}
	if s.Profiles != nil {
		p := cloneProfiles(*s.Profiles)
		out.Profiles = &p
	}
	if s.Setting != nil {
		st := *s.Setting
		out.Setting = &st
	}
	out.Passwords = s.Passwords.Clone()
	out.Board = s.Board.Clone()
	if s.Game != nil {
		g := s.Game.Clone()
		out.Game = &g
	}
	return out
}

// Phase returns the board phase, or the empty phase outside StageBoard.
func (s *State) Phase() domain.Phase {
	if s.Game == nil {
		return ""
	}
	return s.Game.Phase
}

func cloneProfiles(p domain.Profiles) domain.Profiles {
	out := domain.Profiles{Players: make(map[domain.PlayerID]domain.PlayerProfile, len(p.Players))}
	for id, v := range p.Players {
		out.Players[id] = v
	}
	return out
}

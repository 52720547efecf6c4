package nakama

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Match label phases.
const (
	labelPhaseLobby    = "lobby"
	labelPhasePlaying  = "playing"
	labelPhaseFinished = "finished"
)

// buildLabel encodes the searchable match label.
func buildLabel(state *MatchState) (string, error) {
	phase, round := labelPhaseLobby, 0
	if state.Authority != nil {
		snapshot := state.Authority.Replica().State()
		phase = labelPhasePlaying
		if snapshot.Game != nil {
			round = snapshot.Game.Round
		}
		if state.finished() {
			phase = labelPhaseFinished
		}
	}

	label, err := structpb.NewStruct(map[string]interface{}{
		"game":    labelGame,
		"open":    state.GetOpenSeatsCount(),
		"players": state.GetOccupiedSeatCount(),
		"phase":   phase,
		"round":   round,
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

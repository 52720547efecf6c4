package bot

import (
	"fmt"
	"math/rand"

	"hintmarket/internal/app"
	"hintmarket/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       domain.PlayerID
	Name     string
	Password string
	Strategy Brain
}

// Entry is the setup submission the agent makes once profiles are registered.
func (a *Agent) Entry(hintsNum int) (domain.PasswordEntry, error) {
	hints, err := EntryFor(a.Password, hintsNum)
	if err != nil {
		return domain.PasswordEntry{}, err
	}
	return domain.PasswordEntry{Password: a.Password, Hints: hints}, nil
}

// Play returns the command the agent should submit next.
// ok is false when the agent has nothing to contribute in the current state.
func (a *Agent) Play(state *app.State) (cmd app.Command, ok bool, err error) {
	switch state.Stage {
	case app.StageStandbyPassword:
		if !state.Profiles.Has(a.ID) || state.Passwords.Has(a.ID) {
			return app.Command{}, false, nil
		}
		entry, err := a.Entry(state.Setting.HintsNum)
		if err != nil {
			return app.Command{}, false, err
		}
		return app.PushPassword(a.ID, entry), true, nil

	case app.StageBoard:
		if _, seated := state.Board.Players[a.ID]; !seated {
			return app.Command{}, false, nil
		}
		switch state.Game.Phase {
		case domain.PhaseSelectPutToMarket:
			if state.Game.Offers.Has(a.ID) {
				return app.Command{}, false, nil
			}
			offer, err := a.Strategy.ChooseOffer(state, a.ID)
			if err != nil {
				return app.Command{}, false, err
			}
			return app.PushPutToMarket(a.ID, offer), true, nil
		case domain.PhaseSelectAction:
			if state.Game.Actions.Has(a.ID) {
				return app.Command{}, false, nil
			}
			action, err := a.Strategy.ChooseAction(state, a.ID)
			if err != nil {
				return app.Command{}, false, err
			}
			return app.PushAction(a.ID, action), true, nil
		case domain.PhaseConfirmAnswer:
			return app.ConfirmAnswer(a.ID), true, nil
		}
	}
	return app.Command{}, false, nil
}

// NewAgent creates a bot for player id with a password drawn from the vocabulary.
func NewAgent(id domain.PlayerID, name string, level BotLevel, rng *rand.Rand) (*Agent, error) {
	brain, err := NewBrain(level, rng, Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("bot %d: %w", id, err)
	}
	return &Agent{
		ID:       id,
		Name:     name,
		Password: Vocabulary[rng.Intn(len(Vocabulary))],
		Strategy: brain,
	}, nil
}

package app

import "hintmarket/internal/domain"

// CommandKind identifies a top-level command.
type CommandKind string

const (
	CommandInitProfile  CommandKind = "init_profile"
	CommandPushPassword CommandKind = "push_password"
	CommandBoard        CommandKind = "board"
)

// Command is an input produced by a player or the lobby. Only the fields of its kind are set.
type Command struct {
	Kind     CommandKind           `json:"kind"`
	Profiles *domain.Profiles      `json:"profiles,omitempty"`
	Player   domain.PlayerID       `json:"player"`
	Password *domain.PasswordEntry `json:"password,omitempty"`
	Game     *GameCommand          `json:"game,omitempty"`
}

// GameCommandKind identifies a command addressed to a running board.
type GameCommandKind string

const (
	GamePushPutToMarket GameCommandKind = "push_put_to_market"
	GamePushAction      GameCommandKind = "push_action"
	GameConfirmAnswer   GameCommandKind = "confirm_answer"
)

// GameCommand is a command addressed to the phase state machine.
type GameCommand struct {
	Kind   GameCommandKind     `json:"kind"`
	Player domain.PlayerID     `json:"player"`
	Offer  *domain.PutToMarket `json:"offer,omitempty"`
	Action *domain.Action      `json:"action,omitempty"`
}

// InitProfile registers the participants of a new game.
func InitProfile(profiles domain.Profiles) Command {
	return Command{Kind: CommandInitProfile, Profiles: &profiles}
}

// PushPassword submits a player's password and hints.
func PushPassword(player domain.PlayerID, entry domain.PasswordEntry) Command {
	return Command{Kind: CommandPushPassword, Player: player, Password: &entry}
}

// PushPutToMarket submits a player's market offer.
func PushPutToMarket(player domain.PlayerID, offer domain.PutToMarket) Command {
	return Command{Kind: CommandBoard, Player: player, Game: &GameCommand{Kind: GamePushPutToMarket, Player: player, Offer: &offer}}
}

// PushAction submits a player's action for the round.
func PushAction(player domain.PlayerID, action domain.Action) Command {
	return Command{Kind: CommandBoard, Player: player, Game: &GameCommand{Kind: GamePushAction, Player: player, Action: &action}}
}

// ConfirmAnswer asks for the collected answers to be adjudicated.
func ConfirmAnswer(player domain.PlayerID) Command {
	return Command{Kind: CommandBoard, Player: player, Game: &GameCommand{Kind: GameConfirmAnswer, Player: player}}
}

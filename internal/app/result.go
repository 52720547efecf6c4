package app

import "hintmarket/internal/domain"

// ResultKind identifies a computed outcome.
type ResultKind string

const (
	ResultInitProfile  ResultKind = "init_profile"
	ResultPushPassword ResultKind = "push_password"
	ResultInitBoard    ResultKind = "init_board"
	ResultBoard        ResultKind = "board"
)

// Result is an outcome computed once by Service.Resolve and applied by every peer with Reduce.
// It carries everything the reducer needs, including the fully dealt board.
type Result struct {
	Kind     ResultKind            `json:"kind"`
	Profiles *domain.Profiles      `json:"profiles,omitempty"`
	Setting  *domain.Setting       `json:"setting,omitempty"`
	Player   domain.PlayerID       `json:"player"`
	Password *domain.PasswordEntry `json:"password,omitempty"`
	Board    *domain.BoardState    `json:"board,omitempty"`
	Game     *GameResult           `json:"game,omitempty"`
}

// GameResultKind identifies an outcome of the phase state machine.
type GameResultKind string

const (
	GameResultPushPutToMarket   GameResultKind = "push_put_to_market"
	GameResultMoveToActionPhase GameResultKind = "move_to_action_phase"
	GameResultPushAction        GameResultKind = "push_action"
	GameResultMoveToNext        GameResultKind = "move_to_next"
	GameResultAnswersJudged     GameResultKind = "answers_judged"
)

// GameResult is the board-level part of a Result.
type GameResult struct {
	Kind     GameResultKind       `json:"kind"`
	Player   domain.PlayerID      `json:"player"`
	Offer    *domain.PutToMarket  `json:"offer,omitempty"`
	Action   *domain.Action       `json:"action,omitempty"`
	Market   domain.Market        `json:"market,omitempty"`
	Resolved *domain.ActionResult `json:"resolved,omitempty"`
	Verdicts []domain.Verdict     `json:"verdicts,omitempty"`
}

func boardResult(g GameResult) Result {
	return Result{Kind: ResultBoard, Player: g.Player, Game: &g}
}

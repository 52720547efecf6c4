package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Verdict is the adjudication of one submitted answer.
type Verdict struct {
	Player  PlayerID `json:"player"`
	Answer  Answer   `json:"answer"`
	Correct bool     `json:"correct"`
}

// normalizeAnswer folds width, case and surrounding space so that "ＡＢＣ " matches "abc".
func normalizeAnswer(s string) string {
	return cases.Fold().String(strings.TrimSpace(norm.NFKC.String(s)))
}

// JudgeAnswers checks every answer against the password of the answering player's target.
func JudgeAnswers(board *BoardState, answers []AnswerEntry) ([]Verdict, error) {
	verdicts := make([]Verdict, 0, len(answers))
	for _, a := range answers {
		p, ok := board.Players[a.Player]
		if !ok {
			return nil, fmt.Errorf("%w: %w: %d", ErrProtocol, ErrUnknownPlayer, a.Player)
		}
		target, ok := board.Players[p.Target]
		if !ok {
			return nil, fmt.Errorf("%w: %w: target %d", ErrProtocol, ErrUnknownPlayer, p.Target)
		}
		verdicts = append(verdicts, Verdict{
			Player:  a.Player,
			Answer:  a.Answer,
			Correct: normalizeAnswer(a.Answer.Text) == normalizeAnswer(target.Password),
		})
	}
	return verdicts, nil
}

// Winners returns the players whose verdict is correct, in verdict order.
func Winners(verdicts []Verdict) []PlayerID {
	out := []PlayerID{}
	for _, v := range verdicts {
		if v.Correct {
			out = append(out, v.Player)
		}
	}
	return out
}

package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"hintmarket/internal/app"
	"hintmarket/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

var errUnknownOpCode = errors.New("unknown op code")

// decodeCommand turns a client message into a command on behalf of player.
// The acting player always comes from the sender's seat, never from the payload.
func decodeCommand(opCode int64, player domain.PlayerID, data []byte) (app.Command, error) {
	switch opCode {
	case OpPushPassword:
		var entry domain.PasswordEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			return app.Command{}, fmt.Errorf("%w: password payload: %w", domain.ErrPrecondition, err)
		}
		return app.PushPassword(player, entry), nil
	case OpPutToMarket:
		var offer domain.PutToMarket
		if err := json.Unmarshal(data, &offer); err != nil {
			return app.Command{}, fmt.Errorf("%w: offer payload: %w", domain.ErrPrecondition, err)
		}
		if offer.Kind != domain.OfferHint && offer.Kind != domain.OfferCoin {
			return app.Command{}, fmt.Errorf("%w: unknown offer kind %q", domain.ErrPrecondition, offer.Kind)
		}
		return app.PushPutToMarket(player, offer), nil
	case OpPushAction:
		var action domain.Action
		if err := json.Unmarshal(data, &action); err != nil {
			return app.Command{}, fmt.Errorf("%w: action payload: %w", domain.ErrPrecondition, err)
		}
		switch action.Kind {
		case domain.ActionExchange, domain.ActionAnswer, domain.ActionPass:
		default:
			return app.Command{}, fmt.Errorf("%w: unknown action kind %q", domain.ErrPrecondition, action.Kind)
		}
		return app.PushAction(player, action), nil
	case OpConfirmAnswer:
		return app.ConfirmAnswer(player), nil
	default:
		return app.Command{}, fmt.Errorf("%w: %d", errUnknownOpCode, opCode)
	}
}

// errorCode maps an engine error onto the code sent back to the client.
func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrPrecondition):
		return 400
	case errors.Is(err, domain.ErrProtocol):
		return 409
	default:
		return 500
	}
}

type errorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// dispatcherSink broadcasts envelopes to every presence in the match.
// Nakama delivers reliable messages from one match loop in send order.
type dispatcherSink struct {
	dispatcher runtime.MatchDispatcher
}

func (s dispatcherSink) Publish(ctx context.Context, env app.Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope %d: %w", env.Seq, err)
	}
	return s.dispatcher.BroadcastMessage(OpResult, data, nil, nil, true)
}

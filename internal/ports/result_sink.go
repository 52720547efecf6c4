package ports

import (
	"context"

	"hintmarket/internal/app"
)

// ResultSink delivers envelopes to every replica in sequence order.
type ResultSink interface {
	// Publish hands one envelope to the transport. Implementations must preserve call order.
	Publish(ctx context.Context, env app.Envelope) error
}

package orchestrator

import (
	"context"
	"errors"

	"github.com/oshokin/game-launcher/internal/logger"
)

// Run initializes the orchestrator and processes triggers and events until the
// game closes, the launch fails or ctx is canceled. A closed game and a
// canceled context end the session without an error.
func (o *Orchestrator) Run(ctx context.Context, bridge *Bridge) error {
	ctx = logger.WithName(ctx, "orchestrator")

	o.Initialize(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Setup session canceled")

			return nil
		case <-bridge.Triggers():
			o.Advance(ctx)
		case ev := <-bridge.Events():
			err := o.OnEvent(ctx, ev)
			if errors.Is(err, ErrSessionClosed) {
				return nil
			}

			if err != nil {
				return err
			}
		}
	}
}

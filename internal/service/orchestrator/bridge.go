package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/game-launcher/internal/domain/setup"
	"github.com/oshokin/game-launcher/internal/metrics"
)

// DefaultEventBuffer is the event mailbox capacity used by NewBridge when the
// requested capacity is not positive.
const DefaultEventBuffer = 64

// Bridge carries events from service goroutines and manual triggers from
// presentation adapters to the control loop. It is safe for concurrent use.
type Bridge struct {
	// events is the ordered mailbox of service events.
	events chan setup.Event
	// triggers coalesces manual triggers; at most one is pending.
	triggers chan struct{}
}

// NewBridge creates a bridge with an event mailbox of the given capacity.
func NewBridge(capacity int) *Bridge {
	if capacity <= 0 {
		capacity = DefaultEventBuffer
	}

	return &Bridge{
		events:   make(chan setup.Event, capacity),
		triggers: make(chan struct{}, 1),
	}
}

// Publish enqueues an event for the control loop. It blocks while the mailbox
// is full and gives up when ctx is done.
func (b *Bridge) Publish(ctx context.Context, ev setup.Event) error {
	select {
	case b.events <- ev:
		return nil
	case <-ctx.Done():
		reason := "canceled"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "deadline"
		}

		metrics.IncEventDropped(reason)

		return fmt.Errorf("publish %s: %w", setup.Describe(ev), ctx.Err())
	}
}

// Trigger requests one Advance. Triggers issued while one is already pending
// are merged into it.
func (b *Bridge) Trigger() {
	select {
	case b.triggers <- struct{}{}:
	default:
	}
}

// Events returns the receive side of the event mailbox.
func (b *Bridge) Events() <-chan setup.Event {
	return b.events
}

// Triggers returns the receive side of the trigger channel.
func (b *Bridge) Triggers() <-chan struct{} {
	return b.triggers
}

package setup

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownAction is returned when a queue is built from an undefined action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrDuplicateAction is returned when an action appears twice in a queue.
	ErrDuplicateAction = errors.New("duplicate action")
	// ErrStartNotLast is returned when the launch action is followed by other actions.
	ErrStartNotLast = errors.New("start must be the last action")
)

// Queue is the ordered list of pending actions. It only shrinks from the head;
// PushFront exists to put a failed action back where it was.
type Queue struct {
	items []ActionKind
}

// NewQueue validates the sequence and returns a queue holding a copy of it.
func NewQueue(kinds ...ActionKind) (*Queue, error) {
	seen := make(map[ActionKind]struct{}, len(kinds))

	for i, kind := range kinds {
		if !kind.Valid() {
			return nil, fmt.Errorf("position %d: %w: %d", i, ErrUnknownAction, int(kind))
		}

		if _, dup := seen[kind]; dup {
			return nil, fmt.Errorf("position %d: %w: %s", i, ErrDuplicateAction, kind)
		}

		seen[kind] = struct{}{}

		if kind == ActionStart && i != len(kinds)-1 {
			return nil, fmt.Errorf("position %d: %w", i, ErrStartNotLast)
		}
	}

	return &Queue{items: slices.Clone(kinds)}, nil
}

// Len returns the number of pending actions.
func (q *Queue) Len() int {
	return len(q.items)
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (ActionKind, bool) {
	if len(q.items) == 0 {
		return 0, false
	}

	return q.items[0], true
}

// Pop removes and returns the head.
func (q *Queue) Pop() (ActionKind, bool) {
	if len(q.items) == 0 {
		return 0, false
	}

	head := q.items[0]
	q.items = q.items[1:]

	return head, true
}

// PushFront puts an action back at the head. Actions already queued are rejected
// so the queue never holds duplicates.
func (q *Queue) PushFront(kind ActionKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAction, int(kind))
	}

	if slices.Contains(q.items, kind) {
		return fmt.Errorf("%w: %s", ErrDuplicateAction, kind)
	}

	if kind == ActionStart && len(q.items) > 0 {
		return ErrStartNotLast
	}

	q.items = append([]ActionKind{kind}, q.items...)

	return nil
}

// Items returns a copy of the pending actions in order.
func (q *Queue) Items() []ActionKind {
	return slices.Clone(q.items)
}

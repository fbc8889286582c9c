package state

import (
	"slices"
	"sync"
	"time"

	"github.com/oshokin/game-launcher/internal/domain/setup"
)

// Store coordinates concurrent access to the latest snapshot.
type Store struct {
	mu          sync.RWMutex
	snapshot    setup.Snapshot
	revision    uint64
	updatedAt   time.Time
	subscribers []chan struct{}
}

// Observe replaces the stored snapshot and wakes subscribers.
func (s *Store) Observe(snapshot setup.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot.Clone()
	s.revision++
	s.updatedAt = time.Now()

	for _, ch := range s.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Snapshot returns a copy of the latest snapshot.
func (s *Store) Snapshot() setup.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot.Clone()
}

// Revision returns the number of snapshots observed so far.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.revision
}

// UpdatedAt returns when the last snapshot was observed.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.updatedAt
}

// Subscribe returns a channel that receives a value after each change.
// Changes made while a value is pending are merged into it. The returned
// function detaches the channel; it is safe to call more than once.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	if s.revision > 0 {
		ch <- struct{}{}
	}

	s.subscribers = append(s.subscribers, ch)

	return ch, func() { s.unsubscribe(ch) }
}

func (s *Store) unsubscribe(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = slices.DeleteFunc(s.subscribers, func(candidate chan struct{}) bool {
		return candidate == ch
	})
}

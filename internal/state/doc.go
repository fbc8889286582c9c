// Package state holds the latest orchestrator snapshot for presentation
// adapters running on other goroutines.
//
// The orchestrator publishes into a Store from its control goroutine through
// Observe. Readers take copies with Snapshot and wait for changes on a channel
// returned by Subscribe. Notifications are coalesced: a slow reader sees the
// latest state, never a backlog.
//
// The zero Store is ready to use.
package state

// Package orchestrator runs the launcher setup sequence.
//
// An Orchestrator owns the ordered action queue and its state machine. It
// dispatches at most one asynchronous action at a time to the download and
// launch services, and advances when they report back through a Bridge or when
// a presentation adapter issues a manual trigger. All decisions happen on the
// single goroutine that executes Run.
package orchestrator

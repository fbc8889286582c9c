package setup

import (
	"context"
	"fmt"
)

// Package kinds reported in Started events and used for remote and local paths.
const (
	PackageKindGame   = "game"
	PackageKindEngine = "engine"
)

// Event is reported by the download and launch services and consumed exactly
// once by the orchestrator control loop.
type Event interface {
	// event seals the set of implementations to this package.
	event()
}

// Started reports that a package transfer has begun.
type Started struct {
	// Name is the package identifier.
	Name string
	// Type is the package kind (game or engine).
	Type string
}

// Progress reports transfer progress in bytes. Total is zero when unknown.
type Progress struct {
	Current int64
	Total   int64
}

// Finished reports that a package is available locally.
type Finished struct {
	// Name is the package identifier.
	Name string
}

// Failed reports that a package transfer failed. Name always carries the
// package identifier so the failure can be shown to the user.
type Failed struct {
	Name   string
	Reason string
}

// Closed reports that the launched application exited.
type Closed struct {
	ExitCode int
}

// LaunchFailed reports that the application could not be started.
type LaunchFailed struct {
	Reason string
}

func (Started) event()      {}
func (Progress) event()     {}
func (Finished) event()     {}
func (Failed) event()       {}
func (Closed) event()       {}
func (LaunchFailed) event() {}

// Ratio returns the completed fraction in [0, 1]; zero when the total is unknown.
func (p Progress) Ratio() float64 {
	if p.Total <= 0 || p.Current <= 0 {
		return 0
	}

	if p.Current >= p.Total {
		return 1
	}

	return float64(p.Current) / float64(p.Total)
}

// Describe returns a short human-readable rendering of an event for logs.
func Describe(ev Event) string {
	switch e := ev.(type) {
	case Started:
		return fmt.Sprintf("started %s %s", e.Type, e.Name)
	case Progress:
		return fmt.Sprintf("progress %d/%d", e.Current, e.Total)
	case Finished:
		return "finished " + e.Name
	case Failed:
		return fmt.Sprintf("failed %s: %s", e.Name, e.Reason)
	case Closed:
		return fmt.Sprintf("closed with exit code %d", e.ExitCode)
	case LaunchFailed:
		return "launch failed: " + e.Reason
	default:
		return fmt.Sprintf("unknown event %T", ev)
	}
}

// FetchRequest asks the download service for one package.
type FetchRequest struct {
	// ID is the package identifier (or engine version for engine packages).
	ID string
	// Kind is PackageKindGame or PackageKindEngine.
	Kind string
}

// Sink receives events from services. Implementations must be safe for
// concurrent use.
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Package setup contains the core domain types of the launcher setup sequence.
//
// It defines the closed set of actions (ActionKind), the ordered Queue the
// orchestrator consumes, the Event sum type services report through, and the
// Snapshot adapters render.
package setup

// Package app wires the launcher together for one setup session.
//
// Run loads the settings and the bundled game configuration, builds the
// download and launch services around an event bridge, starts the orchestrator
// control loop and a presentation adapter, and optionally the HTTP control API.
// The session ends when the game closes, the user quits or the process is
// interrupted.
package app

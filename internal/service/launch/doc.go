// Package launch resolves the engine release, prepares the lobby handoff
// config and runs the game until it exits.
package launch

// Package tui is the terminal presentation of the setup sequence.
//
// The model mirrors the latest orchestrator snapshot: the game title, a status
// line, a progress bar while a package is transferred, the manual trigger
// labelled after the next action and the failure reason of the last attempt.
// Enter or space issues the trigger. Once the game is launched the view turns
// dormant until the session ends.
package tui

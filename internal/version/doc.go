// Package version holds the launcher build metadata injected with -ldflags
// (Version, Commit, BuildTime) and renders it for the CLI, the HTTP
// User-Agent and the self-update version check.
package version

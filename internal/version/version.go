package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version of the launcher, set with -ldflags at release time.
	Version = "0.1.0-dev"
	// Commit is the short git SHA of the build.
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns only the semantic version. Self-update compares it with the release manifest.
func Short() string {
	return Version
}

// Full returns the version with commit, build time and platform.
func Full() string {
	return fmt.Sprintf("game-launcher %s (commit %s, built at %s, %s %s/%s)",
		Version, Commit, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent with every request to the package server and the update folder.
func UserAgent() string {
	return "game-launcher/" + Version + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

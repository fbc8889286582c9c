// Package config loads the two configuration sources of the launcher.
//
// Settings are machine-local (YAML, launcher-settings.yaml): where content is
// stored, which package server to use, which engine release to run.
// Game is the bundled game configuration (JSON, config.json) with the
// auto-download/auto-start policy and the package identifiers; a missing key
// is a fatal ErrConfigLoad. Layout derives on-disk and remote paths from
// Settings.
package config

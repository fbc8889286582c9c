package config

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// Layout resolves where launcher artifacts live on disk and on the package server.
type Layout struct {
	settings *Settings
}

// NewLayout returns a Layout for validated settings.
func NewLayout(settings *Settings) Layout {
	return Layout{settings: settings}
}

// Root returns the download folder.
func (l Layout) Root() string {
	return l.settings.DownloadFolder
}

// PackagePath returns the local file for a content package of the given kind.
func (l Layout) PackagePath(kind, id string) string {
	return filepath.Join(l.settings.DownloadFolder, "packages", kind, SanitizeName(id))
}

// EngineDir returns the folder holding one engine release.
func (l Layout) EngineDir(version string) string {
	return filepath.Join(l.settings.DownloadFolder, "engine", SanitizeName(version))
}

// EnginePath returns the engine executable for the given release.
func (l Layout) EnginePath(version string) string {
	return filepath.Join(l.EngineDir(version), l.EngineExecutable())
}

// EngineExecutable returns the engine binary name for the current platform.
func (l Layout) EngineExecutable() string {
	return l.settings.EngineExecutable + ExecutableExtension()
}

// HandoffPath returns the location of the config file handed over to the lobby.
func (l Layout) HandoffPath() string {
	return filepath.Join(l.settings.DownloadFolder, l.settings.HandoffFilename)
}

// PackageURL returns the remote location of a package.
func (l Layout) PackageURL(kind, id string) (string, error) {
	base, err := url.Parse(l.settings.PackageServer)
	if err != nil {
		return "", err
	}

	// JoinPath treats its elements as already escaped.
	return base.JoinPath(kind, url.PathEscape(id)).String(), nil
}

// ExecutableExtension returns ".exe" on Windows and "" elsewhere.
func ExecutableExtension() string {
	if strings.Contains(strings.ToLower(runtime.GOOS), "windows") {
		return ".exe"
	}

	return ""
}

// SanitizeName turns a package identifier such as "game:stable" into a safe file name.
func SanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)

	cleaned := replacer.Replace(strings.TrimSpace(name))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "_"
	}

	return cleaned
}

package selfupdate

import (
	"crypto"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oshokin/game-launcher/internal/version"

	// Ensure SHA512 available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// ManifestFilename is the release manifest published next to the artifacts.
	ManifestFilename = "launcher-version.yaml"

	// MarkerFilename marks that an update is running right now.
	MarkerFilename = "launcher-update-marker.bin"

	// DefaultFileMode is applied to the replaced launcher binary.
	DefaultFileMode os.FileMode = 0o755

	// DefaultChecksumFunction is used to calculate artifact hashes.
	DefaultChecksumFunction crypto.Hash = crypto.SHA512
)

var errHashUnavailable = errors.New("hash function unavailable")

// Manifest describes a published launcher release.
type Manifest struct {
	// Version is the semantic version of the release.
	Version string `yaml:"version"`
	// Artifacts maps a platform ("linux/amd64") to its binary.
	Artifacts map[string]Artifact `yaml:"artifacts"`
}

// Artifact is one platform binary of a release.
type Artifact struct {
	// File is the artifact name inside the update folder.
	File string `yaml:"file"`
	// Checksum is the base64-encoded SHA-512 of the file.
	Checksum string `yaml:"checksum"`
}

// NewManifest returns an empty manifest for the running build version.
func NewManifest() *Manifest {
	return &Manifest{
		Version:   version.Short(),
		Artifacts: make(map[string]Artifact),
	}
}

// Platform returns the manifest key of the running platform.
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Checksum returns the DefaultChecksumFunction digest of contents.
func Checksum(contents []byte) ([]byte, error) {
	if !DefaultChecksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := DefaultChecksumFunction.New()
	if _, err := hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}

// FileChecksum returns the checksum of the file at path.
func FileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	return Checksum(contents)
}

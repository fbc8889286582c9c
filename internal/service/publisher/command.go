package publisher

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2/maybe"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/game-launcher/internal/logger"
	"github.com/oshokin/game-launcher/internal/service/selfupdate"
)

// artifactPrefix names published binaries: game-launcher-<os>-<arch>[.exe].
const artifactPrefix = "game-launcher"

var (
	errNoArtifacts       = errors.New("at least one artifact must be provided")
	errOutputDirNotSet   = errors.New("output directory must be provided")
	errInvalidPlatform   = errors.New("platform must look like os/arch")
	errArtifactIsNotFile = errors.New("artifact is not a regular file")
)

// Options contains inputs for the publish entry point.
type Options struct {
	// OutputDir receives the copied binaries and the manifest.
	OutputDir string
	// Version overrides the release version; empty means the running build.
	Version string
	// Artifacts maps a platform ("linux/amd64") to a local binary path.
	Artifacts map[string]string
	// UpdateFolder is only used to tell the operator where to upload.
	UpdateFolder string
}

// publisher builds one release manifest.
type publisher struct {
	outputDir    string
	updateFolder string
	artifacts    map[string]string
	manifest     *selfupdate.Manifest
}

// Run copies the artifacts and writes the release manifest.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "publish")

	pub, err := newPublisher(opts)
	if err != nil {
		return fmt.Errorf("initialize publisher: %w", err)
	}

	if err = pub.Run(ctx); err != nil {
		return fmt.Errorf("publisher failed: %w", err)
	}

	logger.Info(ctx, "Release prepared successfully")

	return nil
}

func newPublisher(opts *Options) (*publisher, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, errOutputDirNotSet
	}

	if len(opts.Artifacts) == 0 {
		return nil, errNoArtifacts
	}

	for platform := range opts.Artifacts {
		if _, _, err := splitPlatform(platform); err != nil {
			return nil, err
		}
	}

	manifest := selfupdate.NewManifest()
	if opts.Version != "" {
		manifest.Version = opts.Version
	}

	return &publisher{
		outputDir:    opts.OutputDir,
		updateFolder: opts.UpdateFolder,
		artifacts:    opts.Artifacts,
		manifest:     manifest,
	}, nil
}

// Run fills the manifest and saves it next to the copied binaries.
func (p *publisher) Run(ctx context.Context) error {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil { //nolint:mnd // Regular folder permissions.
		return fmt.Errorf("create output directory: %w", err)
	}

	logger.InfoKV(ctx, "Preparing release manifest", "version", p.manifest.Version)

	for _, platform := range sortedKeys(p.artifacts) {
		if err := p.addArtifact(ctx, platform, p.artifacts[platform]); err != nil {
			return err
		}
	}

	if err := p.saveManifest(); err != nil {
		return err
	}

	p.printNextSteps(ctx)

	return nil
}

// addArtifact copies one binary into the output directory and records its checksum.
func (p *publisher) addArtifact(ctx context.Context, platform, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat %s: %w", source, err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", source, errArtifactIsNotFile)
	}

	contents, err := os.ReadFile(filepath.Clean(source))
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}

	checksum, err := selfupdate.Checksum(contents)
	if err != nil {
		return err
	}

	name, err := ArtifactName(platform)
	if err != nil {
		return err
	}

	err = maybe.WriteFile(filepath.Join(p.outputDir, name), contents, selfupdate.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("copy %s: %w", source, err)
	}

	p.manifest.Artifacts[platform] = selfupdate.Artifact{
		File:     name,
		Checksum: base64.StdEncoding.EncodeToString(checksum),
	}

	logger.DebugKV(ctx, "Artifact added", "platform", platform, "file", name)

	return nil
}

func (p *publisher) saveManifest() error {
	contents, err := yaml.Marshal(p.manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	path := filepath.Join(p.outputDir, selfupdate.ManifestFilename)
	if err = maybe.WriteFile(path, contents, 0o644); err != nil { //nolint:mnd // Public manifest.
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// printNextSteps logs what the operator has to upload.
func (p *publisher) printNextSteps(ctx context.Context) {
	files := make([]string, 0, len(p.manifest.Artifacts)+1)
	for _, artifact := range p.manifest.Artifacts {
		files = append(files, artifact.File)
	}

	files = append(files, selfupdate.ManifestFilename)
	sort.Strings(files)

	destination := p.updateFolder
	if destination == "" {
		destination = "the configured update folder"
	}

	var builder strings.Builder

	builder.WriteString("Upload the following files from ")
	builder.WriteString(p.outputDir)
	builder.WriteString(" to ")
	builder.WriteString(destination)
	builder.WriteString(":\n")
	builder.WriteString(strings.Join(files, ",\n"))
	builder.WriteString("\nClients pick the release up with: game-launcher self-update")

	logger.Info(ctx, builder.String())
}

// ArtifactName returns the published file name for a platform.
func ArtifactName(platform string) (string, error) {
	goos, goarch, err := splitPlatform(platform)
	if err != nil {
		return "", err
	}

	name := artifactPrefix + "-" + goos + "-" + goarch
	if goos == "windows" {
		name += ".exe"
	}

	return name, nil
}

func splitPlatform(platform string) (string, string, error) {
	goos, goarch, ok := strings.Cut(platform, "/")
	if !ok || goos == "" || goarch == "" || strings.Contains(goarch, "/") {
		return "", "", fmt.Errorf("%q: %w", platform, errInvalidPlatform)
	}

	return goos, goarch, nil
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/game-launcher/internal/exitcode"
	"github.com/oshokin/game-launcher/internal/service/publisher"
)

var (
	publishOptions publisher.Options

	// publishCmd prepares a release for the update folder.
	publishCmd = &cobra.Command{
		Use:     "publish --artifact linux/amd64=./bin/game-launcher",
		Short:   "Prepare launcher binaries and the release manifest for upload",
		Args:    cobra.NoArgs,
		Example: "game-launcher publish --artifact linux/amd64=dist/linux --artifact windows/amd64=dist/win.exe --output release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return exitcode.Wrap(exitcode.RuntimeFailure, publisher.Run(cmd.Context(), &publishOptions))
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := publishCmd.Flags()
	flags.StringToStringVar(&publishOptions.Artifacts, "artifact", nil, "platform=path of a launcher binary, repeatable")
	flags.StringVarP(&publishOptions.OutputDir, "output", "o", "release", "directory receiving the binaries and the manifest")
	flags.StringVar(&publishOptions.Version, "version", "", "release version (default: the version of this build)")
	flags.StringVar(&publishOptions.UpdateFolder, "update-folder", "", "where the files will be uploaded, for the summary")

	_ = publishCmd.MarkFlagRequired("artifact")
}

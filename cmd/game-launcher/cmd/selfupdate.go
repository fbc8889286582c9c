package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/game-launcher/internal/service/selfupdate"
)

var (
	selfUpdateOptions selfupdate.Options

	// selfUpdateCmd replaces the launcher binary with the published release.
	selfUpdateCmd = &cobra.Command{
		Use:   "self-update",
		Short: "Download and apply the latest launcher release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := selfUpdateOptions
			options.ConfigPath = configPath

			return selfupdate.Run(ctx, &options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := selfUpdateCmd.Flags()
	flags.BoolVar(&selfUpdateOptions.Force, "force", false, "apply the release even when the version matches")
	flags.StringVar(&selfUpdateOptions.TargetPath, "target", "", "binary to replace (default: the running executable)")
}

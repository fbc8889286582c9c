package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/game-launcher/internal/app"
	"github.com/oshokin/game-launcher/internal/config"
	"github.com/oshokin/game-launcher/internal/exitcode"
	"github.com/oshokin/game-launcher/internal/prefs"
	"github.com/oshokin/game-launcher/internal/version"
)

var (
	// configPath to the launcher settings YAML file.
	configPath string

	// launchOptions collects the flags of the root command.
	launchOptions app.Options

	// rootCmd downloads the game content and starts the engine.
	rootCmd = &cobra.Command{
		Use:           "game-launcher",
		Short:         "Download game content and start the engine",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := launchOptions
			options.ConfigPath = configPath

			return app.Run(ctx, &options)
		},
	}
)

// Execute runs the game-launcher CLI and exits with the mapped status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}

	code := exitcode.Of(err)

	// Flag and argument errors never reach app.Run and carry no code.
	var coded *exitcode.Error
	if !errors.As(err, &coded) {
		code = exitcode.InvalidUsage
	}

	if code != exitcode.Interrupted {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
	}

	os.Exit(code)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultSettingsFilename, "path to launcher settings file")

	flags := rootCmd.Flags()
	flags.StringVar(&launchOptions.GameConfigPath, "game-config", config.DefaultGameFilename, "path to the bundled game configuration")
	flags.StringVar(&launchOptions.PrefsPath, "prefs", "", "path to terminal UI preferences (default "+prefs.DefaultPath()+")")
	flags.BoolVar(&launchOptions.Headless, "headless", false, "log progress instead of drawing the terminal UI")
	flags.StringVar(&launchOptions.ControlAddress, "control", "", "address of the HTTP control API, overrides settings")
	flags.StringVar(&launchOptions.LogLevel, "log-level", "", "log level (debug, info, warn, error), overrides settings")

	rootCmd.AddCommand(selfUpdateCmd, publishCmd)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/scx-installer/internal/config"
	"github.com/oshokin/scx-installer/internal/logger"
	"github.com/oshokin/scx-installer/internal/platform"
	"github.com/oshokin/scx-installer/internal/service/installer"
	"github.com/oshokin/scx-installer/internal/version"
)

var (
	// configPath to the configuration YAML or TOML file.
	configPath string
	// logLevel is the minimum level of log messages.
	logLevel string
	// noColor disables colored manifest and receipt output.
	noColor bool

	errUnknownLogLevel = errors.New("unknown log level")

	// rootCmd is the base command; the work is done by its subcommands.
	rootCmd = &cobra.Command{
		Use:   "scx-installer",
		Short: "Build native installer packages of the scx agent.",
		Long: `Builds a DEB or RPM package of the scx agent from a finished build tree.

The configuration file describes the target platform and the build directories.
A run stages the package layout below the staging directory, renders the package
into the target directory and records a build receipt next to it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("%s: %w", logLevel, errUnknownLogLevel)
			}

			logger.SetLevel(level)

			return nil
		},
	}

	// buildCmd stages and renders the package.
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Stage the package layout and render the native package.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return installer.Run(ctx, &installer.Options{ConfigPath: configPath})
		},
	}

	// manifestCmd prints the staging objects without staging them.
	manifestCmd = &cobra.Command{
		Use:   "manifest",
		Short: "Print the ordered staging manifest for the configured platform.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options := &installer.Options{
				ConfigPath: configPath,
				NoColor:    noColor,
			}

			return installer.Manifest(cmd.Context(), options, cmd.OutOrStdout())
		},
	}

	// receiptCmd prints the receipt left by the last successful build.
	receiptCmd = &cobra.Command{
		Use:   "receipt",
		Short: "Print the receipt of the last package built into the target directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			options := &installer.Options{
				ConfigPath: configPath,
				NoColor:    noColor,
			}

			return installer.LastReceipt(cmd.Context(), options, cmd.OutOrStdout())
		},
	}
)

// Execute runs the scx-installer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd, platform.FormatDEB, platform.FormatRPM)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")
	manifestCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	receiptCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(buildCmd, manifestCmd, receiptCmd)
}

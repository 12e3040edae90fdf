package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/cursor-flake-updater/internal/config"
	"github.com/oshokin/cursor-flake-updater/internal/logger"
	"github.com/oshokin/cursor-flake-updater/internal/service/updater"
	"github.com/oshokin/cursor-flake-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// manifestPath overrides the manifest location from the configuration.
	manifestPath string

	// strategy overrides the discovery strategy from the configuration.
	strategy string

	// versionOverride bypasses version extraction and the interactive prompt.
	versionOverride string

	// logLevel sets the minimum logging level for this run.
	logLevel string

	// rootCmd represents the base command syncing the manifest with upstream.
	rootCmd = &cobra.Command{
		Use:   "cursor-updater",
		Short: "Sync the Cursor flake manifest with the latest published AppImage",
		Long: "Discover the newest Cursor AppImage download URL, fetch its content hash, " +
			"rewrite the version, URL and sha256 fields of the flake manifest, then build " +
			"the package and verify the result. The manifest is rolled back if the build fails.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ConfigPath:      configPath,
				ManifestPath:    manifestPath,
				Strategy:        strategy,
				VersionOverride: versionOverride,
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the cursor-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to configuration file (defaults to "+config.DefaultConfigFilename+" when present)")
	rootCmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to the flake manifest (defaults to flake.nix)")
	rootCmd.Flags().StringVarP(&strategy, "strategy", "s", "", "discovery strategy: scrape or api")
	rootCmd.Flags().StringVar(&versionOverride, "version-override", "", "skip version discovery and use this value")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn or error")
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/uinstall/uinstall/internal/config"
	"github.com/uinstall/uinstall/internal/logger"
	"github.com/uinstall/uinstall/internal/service/selfupdate"
	"github.com/uinstall/uinstall/internal/service/versions"
	"github.com/uinstall/uinstall/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// cachePath overrides the versions cache location.
	cachePath string
	// platform overrides the target platform.
	platform string
	// logLevel selects the minimum log level.
	logLevel string

	// rootCmd represents the base command for the uinstall CLI.
	rootCmd = &cobra.Command{
		Use:   "uinstall",
		Short: "Install and inspect Unity editor releases.",
		Long: `uinstall maintains a local cache of known Unity editor releases and their
per-platform component packages, so repeated invocations do not have to
re-fetch the remote catalogs. Commands operate on this cache: list known
versions, resolve a (possibly partial) version query to a release, and
inspect a release's downloadable packages.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
	}
)

// commandContext returns a context that is canceled on SIGINT/SIGTERM.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// cacheOptions collects the shared flags for cache-backed commands.
func cacheOptions() *versions.Options {
	return &versions.Options{
		ConfigPath: configPath,
		CachePath:  cachePath,
		Platform:   platform,
	}
}

// Execute runs the uinstall CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVar(&cachePath, "cache", "", "path to the versions cache file")
	rootCmd.PersistentFlags().
		StringVarP(&platform, "platform", "p", "", "target platform (mac, windows, linux)")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "info", "minimum log level (debug, info, warn, error)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "list [version]",
		Short: "List cached Unity versions, newest first.",
		Long: `Lists the Unity releases known to the local cache, newest first. An
optional partial version argument (e.g. "2021" or "2021.1") narrows the
list to matching releases.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			var query string
			if len(args) > 0 {
				query = args[0]
			}

			return versions.RunList(ctx, cacheOptions(), cmd.OutOrStdout(), query)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "find <version>",
		Short: "Resolve a version query to a cached release.",
		Long: `Resolves a version query against the cache. A fully specified version
("2021.1.5f1", optionally with a build hash) matches exactly; a partial one
("2021.1") resolves to the newest consistent release.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			return versions.RunFind(ctx, cacheOptions(), cmd.OutOrStdout(), args[0])
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "packages <version>",
		Short: "Show the downloadable packages of a release.",
		Long: `Shows the component packages a release offers for the selected platform,
with install-by-default (*) and mandatory (!) markers, download sizes and
resolved download file names.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext()
			defer stop()

			return versions.RunPackages(ctx, cacheOptions(), cmd.OutOrStdout(), args[0])
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the local versions cache.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			return versions.RunClear(ctx, cacheOptions(), cmd.OutOrStdout())
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "self-update",
		Short: "Update the uinstall binary to the published release.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := commandContext()
			defer stop()

			return selfupdate.Run(ctx, &selfupdate.Options{ConfigPath: configPath})
		},
	})
}

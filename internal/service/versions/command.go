package versions

import (
	"context"
	"fmt"
	"io"

	"github.com/uinstall/uinstall/internal/cache"
	"github.com/uinstall/uinstall/internal/config"
	"github.com/uinstall/uinstall/internal/logger"
	"github.com/uinstall/uinstall/internal/unity"
)

// Options are the inputs shared by the cache-backed CLI commands.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// CachePath overrides the versions cache location from the settings.
	CachePath string
	// Platform overrides the target platform from the settings.
	Platform string
}

// newService loads settings and the cache file, then builds the service.
// Cache corruption is reported and tolerated: the command proceeds with an
// empty cache.
func newService(ctx context.Context, opts *Options) (*Service, unity.Platform, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, unity.PlatformNone, fmt.Errorf("load settings: %w", err)
	}

	if opts.CachePath != "" {
		cfg.CacheFile = opts.CachePath
	}

	if opts.Platform != "" {
		cfg.Platform = opts.Platform
	}

	platform, err := cfg.ResolvedPlatform()
	if err != nil {
		return nil, unity.PlatformNone, err
	}

	store := cache.NewStore(cfg.CacheFile)
	if err = store.Load(ctx); err != nil {
		logger.Warnf(ctx, "Ignoring unusable versions cache: %v", err)
	}

	return NewService(cfg, store, nil), platform, nil
}

// RunList prints the cached releases, newest first, optionally narrowed by a
// partial version query.
func RunList(ctx context.Context, opts *Options, out io.Writer, query string) error {
	ctx = logger.WithName(ctx, "list")

	svc, platform, err := newService(ctx, opts)
	if err != nil {
		return err
	}

	records, err := svc.List(query)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No versions in cache. Run a refresh first.")
		return nil
	}

	for _, record := range records {
		packages, pErr := record.GetPackages(platform)
		if pErr != nil {
			return pErr
		}

		_, _ = fmt.Fprintf(out, "%-24s %d %s packages\n",
			record.Version, len(packages), platform)
	}

	return nil
}

// RunFind prints the best cached release for the query.
func RunFind(ctx context.Context, opts *Options, out io.Writer, query string) error {
	ctx = logger.WithName(ctx, "find")

	svc, _, err := newService(ctx, opts)
	if err != nil {
		return err
	}

	record, err := svc.Find(query)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, record.Version)

	if record.BaseURL != "" {
		_, _ = fmt.Fprintf(out, "base URL: %s\n", record.BaseURL)
	}

	return nil
}

// RunPackages prints the packages of the matched release for the selected
// platform, with resolved download file names.
func RunPackages(ctx context.Context, opts *Options, out io.Writer, query string) error {
	ctx = logger.WithName(ctx, "packages")

	svc, platform, err := newService(ctx, opts)
	if err != nil {
		return err
	}

	record, packages, err := svc.Packages(query, platform)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s (%s)\n", record.Version, platform)

	for _, pkg := range packages {
		if pkg.Hidden {
			continue
		}

		marker := " "

		switch {
		case pkg.Mandatory:
			marker = "!"
		case pkg.Install:
			marker = "*"
		}

		_, _ = fmt.Fprintf(out, "%s %-28s %10s  %s\n",
			marker, pkg.Name, formatSize(pkg.DownloadSize), pkg.ResolveFileName())
	}

	return nil
}

// RunClear empties the versions cache and persists the empty state.
func RunClear(ctx context.Context, opts *Options, out io.Writer) error {
	ctx = logger.WithName(ctx, "clear")

	svc, _, err := newService(ctx, opts)
	if err != nil {
		return err
	}

	if err = svc.Clear(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(out, "Versions cache cleared.")

	return nil
}

// formatSize renders a byte count for table output.
func formatSize(size int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)

	switch {
	case size >= gb:
		return fmt.Sprintf("%.1f GB", float64(size)/gb)
	case size >= mb:
		return fmt.Sprintf("%.1f MB", float64(size)/mb)
	case size >= kb:
		return fmt.Sprintf("%.1f KB", float64(size)/kb)
	case size > 0:
		return fmt.Sprintf("%d B", size)
	default:
		return "-"
	}
}

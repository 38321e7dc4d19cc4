package versions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uinstall/uinstall/internal/cache"
	"github.com/uinstall/uinstall/internal/config"
	"github.com/uinstall/uinstall/internal/logger"
	"github.com/uinstall/uinstall/internal/unity"
)

var (
	// ErrVersionNotFound is returned when no cached release matches a query.
	ErrVersionNotFound = errors.New("no matching version in cache")
	// ErrNoDiscovery is returned when a refresh is requested but no
	// catalog discovery is wired in.
	ErrNoDiscovery = errors.New("no catalog discovery configured")
)

// Discovery is the boundary to the catalog scraping layer. Implementations
// fetch remote release catalogs and produce version records, possibly with
// only some platform package lists populated.
type Discovery interface {
	Scrape(ctx context.Context, t unity.ReleaseType) ([]unity.VersionMetadata, error)
}

// Service exposes cache operations to the CLI. It owns the store for the
// duration of one command invocation.
type Service struct {
	cfg       *config.Config
	store     *cache.Store
	discovery Discovery
}

// NewService creates a service over the given store. The discovery may be
// nil; Refresh then reports ErrNoDiscovery.
func NewService(cfg *config.Config, store *cache.Store, discovery Discovery) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		discovery: discovery,
	}
}

// List returns all cached releases, newest first. A non-empty query narrows
// the list to releases fuzzy-matching it.
func (s *Service) List(query string) ([]unity.VersionMetadata, error) {
	records := s.store.Versions()
	if query == "" {
		return records, nil
	}

	q, err := unity.ParseVersion(query)
	if err != nil {
		return nil, fmt.Errorf("parse version query: %w", err)
	}

	filtered := records[:0]
	for _, record := range records {
		if q.FuzzyMatches(record.Version) {
			filtered = append(filtered, record)
		}
	}

	return filtered, nil
}

// Find returns the best cached release for the query: the exact release for
// a fully specified query, the newest consistent one otherwise.
func (s *Service) Find(query string) (unity.VersionMetadata, error) {
	q, err := unity.ParseVersion(query)
	if err != nil {
		return unity.VersionMetadata{}, fmt.Errorf("parse version query: %w", err)
	}

	record, ok := s.store.Find(q)
	if !ok {
		return unity.VersionMetadata{}, fmt.Errorf("%w: %s", ErrVersionNotFound, q)
	}

	return record, nil
}

// Packages returns the matched release together with its package list for
// the given platform.
func (s *Service) Packages(query string, p unity.Platform) (unity.VersionMetadata, []unity.Package, error) {
	record, err := s.Find(query)
	if err != nil {
		return unity.VersionMetadata{}, nil, err
	}

	packages, err := record.GetPackages(p)
	if err != nil {
		return unity.VersionMetadata{}, nil, err
	}

	return record, packages, nil
}

// Refresh scrapes the catalogs for the given release channels, merges the
// results into the cache, stamps the channels' refresh times and persists
// the cache. It returns the newly discovered releases in encounter order.
func (s *Service) Refresh(ctx context.Context, types []unity.ReleaseType) ([]unity.VersionMetadata, error) {
	if s.discovery == nil {
		return nil, ErrNoDiscovery
	}

	var added []unity.VersionMetadata

	for _, t := range types {
		records, err := s.discovery.Scrape(ctx, t)
		if err != nil {
			return added, fmt.Errorf("scrape %s releases: %w", t, err)
		}

		added = append(added, s.store.AddOrUpdateMany(records)...)
		s.store.SetLastUpdate(t, time.Now().UTC())

		logger.InfoKV(ctx, "Refreshed release channel",
			"channel", t.String(), "records", len(records))
	}

	if err := s.store.Save(ctx); err != nil {
		// The refreshed data stays usable in memory for this invocation.
		logger.WarnKV(ctx, "Unable to persist versions cache", "error", err)
	}

	return added, nil
}

// LastUpdate returns when the given release channel was last refreshed.
// The zero time means never.
func (s *Service) LastUpdate(t unity.ReleaseType) time.Time {
	return s.store.GetLastUpdate(t)
}

// Clear empties the cache and persists the empty state.
func (s *Service) Clear(ctx context.Context) error {
	s.store.Clear()

	if err := s.store.Save(ctx); err != nil {
		return fmt.Errorf("persist cleared cache: %w", err)
	}

	logger.Info(ctx, "Versions cache cleared")

	return nil
}

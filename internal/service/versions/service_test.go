package versions

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uinstall/uinstall/internal/cache"
	"github.com/uinstall/uinstall/internal/config"
	"github.com/uinstall/uinstall/internal/unity"
)

// fakeDiscovery returns canned records per release channel.
type fakeDiscovery struct {
	records map[unity.ReleaseType][]unity.VersionMetadata
	err     error
}

func (d *fakeDiscovery) Scrape(_ context.Context, t unity.ReleaseType) ([]unity.VersionMetadata, error) {
	if d.err != nil {
		return nil, d.err
	}

	return d.records[t], nil
}

func metadata(t *testing.T, version string) unity.VersionMetadata {
	t.Helper()

	v, err := unity.ParseVersion(version)
	require.NoError(t, err)

	return unity.VersionMetadata{
		Version:       v,
		LinuxPackages: []unity.Package{{Name: unity.EditorPackageName, URL: "LinuxEditorInstaller/Unity.tar.xz"}},
	}
}

func newTestService(t *testing.T, discovery Discovery, seed ...unity.VersionMetadata) *Service {
	t.Helper()

	cfg := &config.Config{CacheFile: filepath.Join(t.TempDir(), "versions.json")}
	require.NoError(t, config.Validate(cfg))

	store := cache.NewStore(cfg.CacheFile)
	store.AddOrUpdateMany(seed)

	return NewService(cfg, store, discovery)
}

// TestService_ListAndFilter lists newest first and narrows by a fuzzy query.
func TestService_ListAndFilter(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil,
		metadata(t, "2021.1.0f1"),
		metadata(t, "2021.2.0f1"),
		metadata(t, "2020.3.30f1"),
	)

	all, err := svc.List("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "2021.2.0f1", all[0].Version.String())

	narrowed, err := svc.List("2021")
	require.NoError(t, err)
	require.Len(t, narrowed, 2)

	_, err = svc.List("garbage")
	require.Error(t, err)
}

// TestService_Find reports misses through ErrVersionNotFound.
func TestService_Find(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil, metadata(t, "2021.1.5f1"))

	record, err := svc.Find("2021.1")
	require.NoError(t, err)
	require.Equal(t, "2021.1.5f1", record.Version.String())

	_, err = svc.Find("2022")
	require.ErrorIs(t, err, ErrVersionNotFound)
}

// TestService_Packages returns the platform's list of the matched release.
func TestService_Packages(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil, metadata(t, "2021.1.5f1"))

	_, packages, err := svc.Packages("2021.1", unity.PlatformLinux)
	require.NoError(t, err)
	require.Len(t, packages, 1)

	_, packages, err = svc.Packages("2021.1", unity.PlatformMac)
	require.NoError(t, err)
	require.Empty(t, packages)

	_, _, err = svc.Packages("2021.1", unity.PlatformNone)
	require.ErrorIs(t, err, unity.ErrInvalidPlatform)
}

// TestService_Refresh merges scraped records, stamps the channel and
// persists the cache.
func TestService_Refresh(t *testing.T) {
	t.Parallel()

	discovery := &fakeDiscovery{
		records: map[unity.ReleaseType][]unity.VersionMetadata{
			unity.ReleaseTypeFinal: {
				metadata(t, "2021.2.0f1"),
				metadata(t, "2021.1.5f1"),
			},
		},
	}

	svc := newTestService(t, discovery, metadata(t, "2021.1.5f1"))

	added, err := svc.Refresh(context.Background(), []unity.ReleaseType{unity.ReleaseTypeFinal})
	require.NoError(t, err)
	require.Len(t, added, 1)
	require.Equal(t, "2021.2.0f1", added[0].Version.String())
	require.False(t, svc.LastUpdate(unity.ReleaseTypeFinal).IsZero())
	require.True(t, svc.LastUpdate(unity.ReleaseTypeBeta).IsZero())

	// The refreshed cache was written to disk.
	_, err = os.Stat(svc.cfg.CacheFile)
	require.NoError(t, err)
}

// TestService_Refresh_NoDiscovery rejects refresh when no discovery is wired.
func TestService_Refresh_NoDiscovery(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil)

	_, err := svc.Refresh(context.Background(), []unity.ReleaseType{unity.ReleaseTypeFinal})
	require.ErrorIs(t, err, ErrNoDiscovery)
}

// TestService_Refresh_ScrapeFailure propagates discovery errors.
func TestService_Refresh_ScrapeFailure(t *testing.T) {
	t.Parallel()

	scrapeErr := errors.New("catalog unreachable")
	svc := newTestService(t, &fakeDiscovery{err: scrapeErr})

	_, err := svc.Refresh(context.Background(), []unity.ReleaseType{unity.ReleaseTypeFinal})
	require.ErrorIs(t, err, scrapeErr)
}

// TestService_Clear persists the empty state.
func TestService_Clear(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, nil, metadata(t, "2021.1.5f1"))
	require.NoError(t, svc.Clear(context.Background()))

	all, err := svc.List("")
	require.NoError(t, err)
	require.Empty(t, all)

	// Reloading from disk confirms the cleared state was saved.
	reloaded := cache.NewStore(svc.cfg.CacheFile)
	require.NoError(t, reloaded.Load(context.Background()))
	require.Zero(t, reloaded.Len())
}

// TestRunList_EmptyCache prints a hint instead of failing.
func TestRunList_EmptyCache(t *testing.T) {
	t.Parallel()

	opts := &Options{
		CachePath: filepath.Join(t.TempDir(), "versions.json"),
		Platform:  "linux",
	}

	var out bytes.Buffer

	require.NoError(t, RunList(context.Background(), opts, &out, ""))
	require.Contains(t, out.String(), "No versions in cache")
}

// TestRunPackages_Table prints resolved file names for visible packages.
func TestRunPackages_Table(t *testing.T) {
	t.Parallel()

	cachePath := filepath.Join(t.TempDir(), "versions.json")

	record := metadata(t, "2021.1.5f1")
	record.LinuxPackages = append(record.LinuxPackages, unity.Package{Name: "Secret", Hidden: true})

	store := cache.NewStore(cachePath)
	store.AddOrUpdate(record)
	require.NoError(t, store.Save(context.Background()))

	opts := &Options{
		CachePath: cachePath,
		Platform:  "linux",
	}

	var out bytes.Buffer

	require.NoError(t, RunPackages(context.Background(), opts, &out, "2021.1"))
	require.Contains(t, out.String(), "Unity.tar.xz")
	require.NotContains(t, out.String(), "Secret")
}

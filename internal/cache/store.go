package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/uinstall/uinstall/internal/logger"
	"github.com/uinstall/uinstall/internal/unity"
)

const (
	// FormatVersion is stamped into the persisted file. A file carrying a
	// different tag is discarded wholesale on load; there is no migration.
	FormatVersion = 2

	// defaultFileMode is used for the persisted cache file.
	defaultFileMode os.FileMode = 0o644

	// defaultDirMode is used when creating parent directories on save.
	defaultDirMode os.FileMode = 0o755
)

// Store is the local index of known Unity releases. It owns an ordered list
// of version records (newest first, one per version) and a per-channel
// last-refreshed timestamp map, and persists both to a single JSON file.
//
// A Store is meant to be owned by one command invocation: load once, mutate
// in process, save before exit. It is not safe for concurrent use and makes
// no cross-process guarantees.
type Store struct {
	// path is the filesystem location of the JSON cache file.
	path string
	// versions holds the records sorted descending by version.
	versions []unity.VersionMetadata
	// updates maps a release channel to the time it was last refreshed.
	updates map[unity.ReleaseType]time.Time
}

// cacheFile is the persisted representation of a Store.
type cacheFile struct {
	Format   int                             `json:"format"`
	Versions []unity.VersionMetadata         `json:"versions"`
	Updated  map[unity.ReleaseType]time.Time `json:"updated,omitempty"`
}

// NewStore creates an empty store bound to the given file path.
func NewStore(path string) *Store {
	return &Store{
		path:    filepath.Clean(path),
		updates: make(map[unity.ReleaseType]time.Time),
	}
}

// Path returns the file path the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Load reads the cache file into the store.
//
// A missing file leaves the store empty and is not an error. An unreadable
// or unparseable file, or one stamped with a different format tag, resets
// the store to empty: losing the cache only costs a re-fetch, so corruption
// must never take the tool down. Parse and read failures are returned as a
// warning for the caller to report; the store is always left usable.
func (s *Store) Load(ctx context.Context) error {
	s.Clear()

	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.DebugKV(ctx, "No versions cache yet, starting empty", "path", s.path)
			return nil
		}

		logger.WarnKV(ctx, "Versions cache is unreadable, starting empty", "path", s.path, "error", err)

		return fmt.Errorf("read versions cache: %w", err)
	}

	var file cacheFile
	if err = json.Unmarshal(contents, &file); err != nil {
		logger.WarnKV(ctx, "Versions cache is corrupt, starting empty", "path", s.path, "error", err)

		return fmt.Errorf("decode versions cache: %w", err)
	}

	if file.Format != FormatVersion {
		logger.InfoKV(ctx, "Versions cache has an old format, discarding it",
			"path", s.path, "format", file.Format, "expected", FormatVersion)

		return nil
	}

	s.versions = file.Versions
	if file.Updated != nil {
		s.updates = file.Updated
	}

	// A hand-edited or reordered file must not break Find's newest-first scan.
	s.sortVersions()

	logger.DebugKV(ctx, "Loaded versions cache", "path", s.path, "versions", len(s.versions))

	return nil
}

// Save serializes the store to its file path, creating parent directories as
// needed and overwriting any previous contents. A failure leaves the
// in-memory store intact and valid.
func (s *Store) Save(ctx context.Context) error {
	file := cacheFile{
		Format:   FormatVersion,
		Versions: s.versions,
		Updated:  s.updates,
	}

	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode versions cache: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err = os.MkdirAll(dir, defaultDirMode); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	if err = os.WriteFile(s.path, data, defaultFileMode); err != nil {
		return fmt.Errorf("write versions cache: %w", err)
	}

	logger.DebugKV(ctx, "Saved versions cache", "path", s.path, "versions", len(s.versions))

	return nil
}

// Clear empties the version list and the update-time map.
func (s *Store) Clear() {
	s.versions = nil
	s.updates = make(map[unity.ReleaseType]time.Time)
}

// Len returns the number of known versions.
func (s *Store) Len() int {
	return len(s.versions)
}

// AddOrUpdate inserts the record or merges it into the existing record with
// the same version. It reports whether the record was newly inserted.
func (s *Store) AddOrUpdate(m unity.VersionMetadata) bool {
	inserted := s.upsert(m)
	if inserted {
		s.sortVersions()
	}

	return inserted
}

// AddOrUpdateMany applies AddOrUpdate to each record in input order and
// returns only the newly inserted ones, in the order they were encountered.
// The list is re-sorted once at the end instead of per record.
func (s *Store) AddOrUpdateMany(records []unity.VersionMetadata) []unity.VersionMetadata {
	var added []unity.VersionMetadata

	for _, m := range records {
		if s.upsert(m) {
			added = append(added, m.Clone())
		}
	}

	if len(added) > 0 {
		s.sortVersions()
	}

	return added
}

// upsert merges into an existing record or appends, without re-sorting.
// Merging never changes a record's version, so ordering is only disturbed
// by insertions.
func (s *Store) upsert(m unity.VersionMetadata) bool {
	for i := range s.versions {
		if s.versions[i].Version == m.Version {
			s.versions[i].Merge(m)
			return false
		}
	}

	s.versions = append(s.versions, m.Clone())

	return true
}

// Find returns the best record for the query version.
//
// A fully specified query matches by version-or-hash equality. A partial
// query matches fuzzily, and because the list is kept sorted newest first,
// the first hit is the newest release consistent with the query. A miss is
// reported via the boolean.
func (s *Store) Find(query unity.Version) (unity.VersionMetadata, bool) {
	matches := query.FuzzyMatches
	if query.IsFullySpecified() {
		matches = query.MatchesVersionOrHash
	}

	for i := range s.versions {
		if matches(s.versions[i].Version) {
			return s.versions[i].Clone(), true
		}
	}

	return unity.VersionMetadata{}, false
}

// Versions returns copies of all records, newest first.
func (s *Store) Versions() []unity.VersionMetadata {
	records := make([]unity.VersionMetadata, 0, len(s.versions))
	for i := range s.versions {
		records = append(records, s.versions[i].Clone())
	}

	return records
}

// GetLastUpdate returns when the given release channel was last refreshed.
// The zero time means never.
func (s *Store) GetLastUpdate(t unity.ReleaseType) time.Time {
	return s.updates[t]
}

// SetLastUpdate records a refresh time for the given release channel.
func (s *Store) SetLastUpdate(t unity.ReleaseType, ts time.Time) {
	s.updates[t] = ts
}

// sortVersions restores the descending order invariant.
func (s *Store) sortVersions() {
	sort.SliceStable(s.versions, func(i, j int) bool {
		return s.versions[i].Version.Compare(s.versions[j].Version) > 0
	})
}

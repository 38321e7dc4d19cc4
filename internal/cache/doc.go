// Package cache implements the persistent local index of Unity releases.
//
// The Store keeps version records sorted newest first with at most one
// record per version, merges incrementally discovered metadata without ever
// letting absent fields erase known data, and persists everything to a
// single versioned JSON file. A corrupt or outdated file degrades to an
// empty cache instead of an error, since the data can always be re-fetched.
package cache

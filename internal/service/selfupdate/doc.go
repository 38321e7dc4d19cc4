// Package selfupdate replaces the running uinstall binary with the release
// published at the configured update URL.
//
// A release is described by a small YAML manifest carrying the version and a
// per-OS binary name with its checksum. A marker file prevents two updates
// from running at once; a stale marker is recovered by terminating the
// lingering process.
package selfupdate

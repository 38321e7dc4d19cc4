// Package unity defines the value types describing Unity editor releases:
// the release version identifier, the target platform enumeration, and the
// downloadable package metadata published alongside each release.
//
// All types are pure values. They carry no references to the cache that
// stores them, so they can be copied, compared and serialized freely.
package unity

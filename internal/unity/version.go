package unity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unspecified marks a numeric version component that was not given,
// e.g. the patch component of the partial version "2021.1".
const Unspecified = -1

// ReleaseType is the release channel a Unity version was published on.
// The zero value means the channel was not specified.
type ReleaseType byte

// Known release types, in ascending maturity order.
const (
	ReleaseTypeNone  ReleaseType = 0
	ReleaseTypeAlpha ReleaseType = 'a'
	ReleaseTypeBeta  ReleaseType = 'b'
	ReleaseTypeFinal ReleaseType = 'f'
	ReleaseTypePatch ReleaseType = 'p'
)

var errInvalidReleaseType = errors.New("invalid release type")

// ordinal maps a release type to its position in the maturity order.
// Unknown letters sort with the unspecified channel.
func (t ReleaseType) ordinal() int {
	switch t {
	case ReleaseTypeAlpha:
		return 1
	case ReleaseTypeBeta:
		return 2
	case ReleaseTypeFinal:
		return 3
	case ReleaseTypePatch:
		return 4
	default:
		return 0
	}
}

// String returns the single-letter channel token, or an empty string for the
// unspecified channel.
func (t ReleaseType) String() string {
	if t == ReleaseTypeNone {
		return ""
	}

	return string(rune(t))
}

// MarshalText encodes the release type as its channel letter so it can be
// used as a JSON object key in the persisted cache file.
func (t ReleaseType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a single channel letter.
func (t *ReleaseType) UnmarshalText(text []byte) error {
	parsed, err := ParseReleaseType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// ParseReleaseType converts a channel token ("f", "beta", ...) to a ReleaseType.
func ParseReleaseType(s string) (ReleaseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ReleaseTypeNone, nil
	case "a", "alpha":
		return ReleaseTypeAlpha, nil
	case "b", "beta":
		return ReleaseTypeBeta, nil
	case "f", "final", "stable":
		return ReleaseTypeFinal, nil
	case "p", "patch":
		return ReleaseTypePatch, nil
	default:
		return ReleaseTypeNone, fmt.Errorf("%w: %q", errInvalidReleaseType, s)
	}
}

// Version identifies a Unity editor release, e.g. "2021.1.5f1 (c0fa087b1a3e)".
//
// A version may be partial: numeric components that were not given are set
// to Unspecified and the release type to ReleaseTypeNone. Partial versions
// act as wildcard queries against fully specified ones.
type Version struct {
	// Major is the year-styled major component (e.g. 2021), or Unspecified.
	Major int
	// Minor is the minor component, or Unspecified.
	Minor int
	// Patch is the patch component, or Unspecified.
	Patch int
	// Type is the release channel letter, or ReleaseTypeNone.
	Type ReleaseType
	// Build is the numeric build component after the channel letter, or Unspecified.
	Build int
	// Hash is the short build hash distinguishing otherwise equal versions.
	Hash string
}

var errInvalidVersion = errors.New("invalid version string")

// ParseVersion parses full ("2021.1.5f1"), partial ("2021.1") and
// hash-qualified ("2021.1.5f1 (c0fa087b1a3e)") version strings.
func ParseVersion(s string) (Version, error) {
	v := Version{
		Major: Unspecified,
		Minor: Unspecified,
		Patch: Unspecified,
		Build: Unspecified,
	}

	input := strings.TrimSpace(s)
	if input == "" {
		return v, fmt.Errorf("%w: empty input", errInvalidVersion)
	}

	// Split off a trailing hash group: "2021.1.5f1 (c0fa087b1a3e)".
	if strings.HasSuffix(input, ")") {
		open := strings.LastIndex(input, "(")
		if open < 0 {
			return v, fmt.Errorf("%w: %q", errInvalidVersion, s)
		}

		v.Hash = strings.TrimSpace(input[open+1 : len(input)-1])
		input = strings.TrimSpace(input[:open])
	}

	if input == "" {
		// Hash-only query, e.g. "(c0fa087b1a3e)".
		if v.Hash == "" {
			return v, fmt.Errorf("%w: %q", errInvalidVersion, s)
		}

		return v, nil
	}

	numbers := input
	if cut := strings.IndexAny(input, "abfp"); cut >= 0 {
		parsed, err := ParseReleaseType(input[cut : cut+1])
		if err != nil {
			return v, fmt.Errorf("%w: %q", errInvalidVersion, s)
		}

		v.Type = parsed
		numbers = input[:cut]

		build := input[cut+1:]
		if build != "" {
			n, err := strconv.Atoi(build)
			if err != nil {
				return v, fmt.Errorf("%w: bad build component in %q", errInvalidVersion, s)
			}

			v.Build = n
		}
	}

	targets := []*int{&v.Major, &v.Minor, &v.Patch}

	parts := strings.Split(numbers, ".")
	if len(parts) > len(targets) {
		return v, fmt.Errorf("%w: too many components in %q", errInvalidVersion, s)
	}

	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return v, fmt.Errorf("%w: bad component %q in %q", errInvalidVersion, part, s)
		}

		*targets[i] = n
	}

	return v, nil
}

// String renders the canonical text form, omitting unspecified components.
func (v Version) String() string {
	var b strings.Builder

	for _, part := range []int{v.Major, v.Minor, v.Patch} {
		if part == Unspecified {
			break
		}

		if b.Len() > 0 {
			b.WriteByte('.')
		}

		b.WriteString(strconv.Itoa(part))
	}

	if v.Type != ReleaseTypeNone {
		b.WriteString(v.Type.String())

		if v.Build != Unspecified {
			b.WriteString(strconv.Itoa(v.Build))
		}
	}

	if v.Hash != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}

		b.WriteString("(" + v.Hash + ")")
	}

	return b.String()
}

// MarshalText encodes the version in its canonical text form.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText parses the canonical text form.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// IsFullySpecified reports whether every component up to the build number is
// present, i.e. the version denotes exactly one release.
func (v Version) IsFullySpecified() bool {
	return v.Major != Unspecified &&
		v.Minor != Unspecified &&
		v.Patch != Unspecified &&
		v.Type != ReleaseTypeNone &&
		v.Build != Unspecified
}

// Compare defines a total order over versions. It returns a negative number
// if v is older than other, zero if equal, and a positive number otherwise.
// Unspecified components sort before specified ones; the hash is the final
// tie-break so the order stays deterministic for rebuilt releases.
func (v Version) Compare(other Version) int {
	pairs := [...][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
		{v.Type.ordinal(), other.Type.ordinal()},
		{v.Build, other.Build},
	}

	for _, pair := range pairs {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}

			return 1
		}
	}

	return strings.Compare(v.Hash, other.Hash)
}

// isHashOnly reports whether the version carries a hash and nothing else.
func (v Version) isHashOnly() bool {
	return v.Hash != "" &&
		v.Major == Unspecified &&
		v.Minor == Unspecified &&
		v.Patch == Unspecified &&
		v.Type == ReleaseTypeNone &&
		v.Build == Unspecified
}

// MatchesVersionOrHash reports whether other denotes the same release as v,
// either by matching build hashes or by full numeric equality. Use it when
// the query is fully specified.
func (v Version) MatchesVersionOrHash(other Version) bool {
	if v.Hash != "" && other.Hash != "" && strings.EqualFold(v.Hash, other.Hash) {
		return true
	}

	return v.Major == other.Major &&
		v.Minor == other.Minor &&
		v.Patch == other.Patch &&
		v.Type == other.Type &&
		v.Build == other.Build
}

// FuzzyMatches reports whether the candidate agrees with every component the
// query v specifies, treating unspecified components as wildcards. A build
// hash match short-circuits to true, which keeps FuzzyMatches a superset of
// MatchesVersionOrHash. A query consisting of nothing but a hash matches by
// hash alone instead of wildcarding everything.
func (v Version) FuzzyMatches(other Version) bool {
	if v.Hash != "" {
		if other.Hash != "" && strings.EqualFold(v.Hash, other.Hash) {
			return true
		}

		if v.isHashOnly() {
			return false
		}
	}

	if v.Major != Unspecified && v.Major != other.Major {
		return false
	}

	if v.Minor != Unspecified && v.Minor != other.Minor {
		return false
	}

	if v.Patch != Unspecified && v.Patch != other.Patch {
		return false
	}

	if v.Type != ReleaseTypeNone && v.Type != other.Type {
		return false
	}

	if v.Build != Unspecified && v.Build != other.Build {
		return false
	}

	return true
}

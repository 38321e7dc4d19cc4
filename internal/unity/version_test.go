package unity

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseVersion_Full parses a complete version string with a hash.
func TestParseVersion_Full(t *testing.T) {
	t.Parallel()

	v, err := ParseVersion("2021.1.5f1 (c0fa087b1a3e)")
	require.NoError(t, err)
	require.Equal(t, Version{
		Major: 2021,
		Minor: 1,
		Patch: 5,
		Type:  ReleaseTypeFinal,
		Build: 1,
		Hash:  "c0fa087b1a3e",
	}, v)
	require.True(t, v.IsFullySpecified())
	require.Equal(t, "2021.1.5f1 (c0fa087b1a3e)", v.String())
}

// TestParseVersion_Partial parses partial forms and keeps missing components unspecified.
func TestParseVersion_Partial(t *testing.T) {
	t.Parallel()

	v, err := ParseVersion("2021.1")
	require.NoError(t, err)
	require.Equal(t, 2021, v.Major)
	require.Equal(t, 1, v.Minor)
	require.Equal(t, Unspecified, v.Patch)
	require.Equal(t, ReleaseTypeNone, v.Type)
	require.False(t, v.IsFullySpecified())
	require.Equal(t, "2021.1", v.String())

	v, err = ParseVersion("2021.2.0b")
	require.NoError(t, err)
	require.Equal(t, ReleaseTypeBeta, v.Type)
	require.Equal(t, Unspecified, v.Build)

	// Hash-only query.
	v, err = ParseVersion("(c0fa087b1a3e)")
	require.NoError(t, err)
	require.Equal(t, Unspecified, v.Major)
	require.Equal(t, "c0fa087b1a3e", v.Hash)
}

// TestParseVersion_Invalid rejects malformed input.
func TestParseVersion_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "x.y.z", "2021.1.5f1.3.3", "2021.-1", "2021.1.5q1"} {
		_, err := ParseVersion(input)
		require.Error(t, err, "input %q", input)
	}
}

// TestVersionCompare_Order sorts a shuffled list descending and checks the result.
func TestVersionCompare_Order(t *testing.T) {
	t.Parallel()

	parse := func(s string) Version {
		v, err := ParseVersion(s)
		require.NoError(t, err)

		return v
	}

	versions := []Version{
		parse("2020.3.30f1"),
		parse("2021.2.0b3"),
		parse("2021.1.5f1"),
		parse("2021.2.0f1"),
		parse("2021.1"),
		parse("2021.2.0a10"),
	}

	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Compare(versions[j]) > 0
	})

	got := make([]string, 0, len(versions))
	for _, v := range versions {
		got = append(got, v.String())
	}

	require.Equal(t, []string{
		"2021.2.0f1",
		"2021.2.0b3",
		"2021.2.0a10",
		"2021.1.5f1",
		"2021.1",
		"2020.3.30f1",
	}, got)
}

// TestVersionCompare_HashTieBreak keeps the order deterministic for rebuilt releases.
func TestVersionCompare_HashTieBreak(t *testing.T) {
	t.Parallel()

	a, err := ParseVersion("2021.1.5f1 (aaa)")
	require.NoError(t, err)

	b, err := ParseVersion("2021.1.5f1 (bbb)")
	require.NoError(t, err)

	require.Negative(t, a.Compare(b))
	require.Positive(t, b.Compare(a))
	require.Zero(t, a.Compare(a))
}

// TestMatchesVersionOrHash covers numeric equality and the hash shortcut.
func TestMatchesVersionOrHash(t *testing.T) {
	t.Parallel()

	candidate, err := ParseVersion("2021.1.5f1 (abc123)")
	require.NoError(t, err)

	exact, err := ParseVersion("2021.1.5f1")
	require.NoError(t, err)
	require.True(t, exact.MatchesVersionOrHash(candidate))

	// A differing numeric version still matches through the hash.
	byHash, err := ParseVersion("2021.1.4f1 (abc123)")
	require.NoError(t, err)
	require.True(t, byHash.MatchesVersionOrHash(candidate))

	other, err := ParseVersion("2021.1.6f1")
	require.NoError(t, err)
	require.False(t, other.MatchesVersionOrHash(candidate))
}

// TestFuzzyMatches treats unspecified query components as wildcards.
func TestFuzzyMatches(t *testing.T) {
	t.Parallel()

	candidate, err := ParseVersion("2021.1.5f1 (abc123)")
	require.NoError(t, err)

	for _, query := range []string{"2021", "2021.1", "2021.1.5", "2021.1.5f", "2021.1.5f1"} {
		q, qErr := ParseVersion(query)
		require.NoError(t, qErr)
		require.True(t, q.FuzzyMatches(candidate), "query %q", query)
	}

	for _, query := range []string{"2020", "2021.2", "2021.1.4", "2021.1.5b"} {
		q, qErr := ParseVersion(query)
		require.NoError(t, qErr)
		require.False(t, q.FuzzyMatches(candidate), "query %q", query)
	}
}

// TestFuzzyMatches_HashOnlyQuery matches strictly by hash when the query
// carries nothing else.
func TestFuzzyMatches_HashOnlyQuery(t *testing.T) {
	t.Parallel()

	candidate, err := ParseVersion("2021.1.5f1 (abc123)")
	require.NoError(t, err)

	hit, err := ParseVersion("(abc123)")
	require.NoError(t, err)
	require.True(t, hit.FuzzyMatches(candidate))

	miss, err := ParseVersion("(def456)")
	require.NoError(t, err)
	require.False(t, miss.FuzzyMatches(candidate))

	// A candidate without a hash cannot satisfy a hash-only query.
	plain, err := ParseVersion("2021.1.5f1")
	require.NoError(t, err)
	require.False(t, hit.FuzzyMatches(plain))
}

// TestMatchImplication checks that a version-or-hash match always implies a fuzzy match.
func TestMatchImplication(t *testing.T) {
	t.Parallel()

	parse := func(s string) Version {
		v, err := ParseVersion(s)
		require.NoError(t, err)

		return v
	}

	queries := []Version{
		parse("2021.1.5f1"),
		parse("2021.1.4f1 (abc123)"),
		parse("2021.1.5f1 (zzz999)"),
	}
	candidates := []Version{
		parse("2021.1.5f1 (abc123)"),
		parse("2021.1.5f1"),
		parse("2021.2.0b3"),
	}

	for _, q := range queries {
		for _, c := range candidates {
			if q.MatchesVersionOrHash(c) {
				require.True(t, q.FuzzyMatches(c), "query %s, candidate %s", q, c)
			}
		}
	}
}

// TestReleaseTypeText round-trips channel letters through the text codec.
func TestReleaseTypeText(t *testing.T) {
	t.Parallel()

	for _, rt := range []ReleaseType{ReleaseTypeAlpha, ReleaseTypeBeta, ReleaseTypeFinal, ReleaseTypePatch} {
		text, err := rt.MarshalText()
		require.NoError(t, err)

		var decoded ReleaseType
		require.NoError(t, decoded.UnmarshalText(text))
		require.Equal(t, rt, decoded)
	}

	_, err := ParseReleaseType("q")
	require.Error(t, err)
}

package rules

import (
	"testing"

	"github.com/poiesic/titlegate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup is a static exact-match set.
type fakeLookup map[string]struct{}

func (f fakeLookup) ContainsExact(text string) bool {
	_, ok := f[core.NormalizeKey(text)]
	return ok
}

func newTestFilter(t *testing.T, rules *RuleSet, known ...string) *Filter {
	t.Helper()
	lookup := fakeLookup{}
	for _, title := range known {
		lookup[core.NormalizeKey(title)] = struct{}{}
	}
	f, err := NewFilter(rules, lookup)
	require.NoError(t, err)
	return f
}

func TestNewFilter(t *testing.T) {
	t.Run("nil index", func(t *testing.T) {
		_, err := NewFilter(Empty(), nil)
		assert.Equal(t, ErrIndexRequired, err)
	})

	t.Run("nil rules treated as empty", func(t *testing.T) {
		f, err := NewFilter(nil, fakeLookup{})
		require.NoError(t, err)
		assert.False(t, f.Check("anything at all").Blocked)
	})
}

func TestCheck_DisallowedWords(t *testing.T) {
	rules := &RuleSet{DisallowedWords: []string{"fake", "banned"}}
	f := newTestFilter(t, rules)

	t.Run("whole word blocks", func(t *testing.T) {
		result := f.Check("fake news today")
		require.True(t, result.Blocked)
		assert.Contains(t, result.Reason, "fake")
		require.Len(t, result.Details, 1)
		assert.Equal(t, core.CheckDisallowedWord, result.Details[0].Check)
		assert.Equal(t, "fake", result.Details[0].MatchedWord)
	})

	t.Run("partial word does not block", func(t *testing.T) {
		// "cat" inside "category" must not match; same for "fake" inside
		// "fakery".
		result := f.Check("fakery gazette")
		assert.False(t, result.Blocked)
	})

	t.Run("case-insensitive", func(t *testing.T) {
		result := f.Check("FAKE Tribune")
		assert.True(t, result.Blocked)
	})

	t.Run("collects every violation", func(t *testing.T) {
		result := f.Check("fake banned bulletin")
		require.True(t, result.Blocked)
		assert.Len(t, result.Details, 2)
		// The primary reason is the first violation in check order.
		assert.Contains(t, result.Reason, "fake")
	})
}

func TestCheck_WholeWordBoundary(t *testing.T) {
	rules := &RuleSet{DisallowedWords: []string{"cat"}}
	f := newTestFilter(t, rules)

	assert.True(t, f.Check("cat news").Blocked)
	assert.False(t, f.Check("category news").Blocked)
}

func TestCheck_Affixes(t *testing.T) {
	rules := &RuleSet{DisallowedAffixes: []string{"new"}}
	f := newTestFilter(t, rules)

	t.Run("prefix blocks", func(t *testing.T) {
		result := f.Check("new morning herald")
		require.True(t, result.Blocked)
		assert.Equal(t, core.CheckDisallowedPrefix, result.Details[0].Check)
		assert.Contains(t, result.Reason, "prefix")
	})

	t.Run("suffix blocks", func(t *testing.T) {
		result := f.Check("morning herald new")
		require.True(t, result.Blocked)
		assert.Equal(t, core.CheckDisallowedSuffix, result.Details[0].Check)
	})

	t.Run("interior token does not block", func(t *testing.T) {
		result := f.Check("morning new herald")
		assert.False(t, result.Blocked)
	})

	t.Run("single-token title does not block", func(t *testing.T) {
		result := f.Check("new")
		assert.False(t, result.Blocked)
	})
}

func TestCheck_Periodicity(t *testing.T) {
	rules := &RuleSet{PeriodicityMarkers: []string{"daily", "weekly"}}

	t.Run("marker plus existing title blocks", func(t *testing.T) {
		f := newTestFilter(t, rules, "morning herald")

		result := f.Check("daily morning herald")
		require.True(t, result.Blocked)
		require.Len(t, result.Details, 1)
		assert.Equal(t, core.CheckPeriodicity, result.Details[0].Check)
		assert.Equal(t, "daily", result.Details[0].MatchedWord)
		assert.Equal(t, "morning herald", result.Details[0].MatchedTitle)
		assert.Contains(t, result.Reason, "periodicity")
	})

	t.Run("marker at end blocks", func(t *testing.T) {
		f := newTestFilter(t, rules, "morning herald")
		assert.True(t, f.Check("morning herald weekly").Blocked)
	})

	t.Run("every matched marker is stripped", func(t *testing.T) {
		f := newTestFilter(t, rules, "morning herald")
		assert.True(t, f.Check("daily morning herald weekly").Blocked)
	})

	t.Run("marker without existing title passes", func(t *testing.T) {
		f := newTestFilter(t, rules, "morning herald")
		assert.False(t, f.Check("daily evening post").Blocked)
	})

	t.Run("marker-only title passes", func(t *testing.T) {
		f := newTestFilter(t, rules, "morning herald")
		assert.False(t, f.Check("daily").Blocked)
	})

	t.Run("no markers configured passes", func(t *testing.T) {
		f := newTestFilter(t, Empty(), "morning herald")
		assert.False(t, f.Check("daily morning herald").Blocked)
	})
}

func TestCheck_EmptyRuleSetNeverBlocks(t *testing.T) {
	f := newTestFilter(t, Empty())
	assert.False(t, f.Check("fake daily news").Blocked)
}

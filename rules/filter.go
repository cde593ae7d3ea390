package rules

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/titlegate/core"
)

// ExactLookup is the index capability the filter needs: an O(1)
// case-insensitive membership test over registered titles.
type ExactLookup interface {
	ContainsExact(text string) bool
}

// Filter applies a RuleSet to candidate titles.
type Filter struct {
	rules  *RuleSet
	index  ExactLookup
	logger *slog.Logger
}

// Option configures a Filter.
type Option func(*Filter)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filter) {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
	}
}

// NewFilter creates a rule filter over the given rule set and title index.
// A nil rule set is treated as empty.
func NewFilter(rules *RuleSet, index ExactLookup, opts ...Option) (*Filter, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if rules == nil {
		rules = Empty()
	}

	f := &Filter{
		rules:  rules,
		index:  index,
		logger: slog.Default().With("component", "rule-filter"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Result is the outcome of a rule check.
// Details lists every violation found, not just the first; Reason is the
// first violation in check order.
type Result struct {
	Blocked bool
	Reason  string
	Details []core.Detail
}

// Check evaluates every rule against the candidate title.
// All checks run even after a violation is found so the result explains
// every ground for rejection.
func (f *Filter) Check(title string) Result {
	var details []core.Detail

	// 1. Disallowed words, matched only as whole tokens.
	for _, word := range f.rules.DisallowedWords {
		if core.ContainsToken(title, word) {
			details = append(details, core.Detail{
				Check:       core.CheckDisallowedWord,
				Description: fmt.Sprintf("Contains disallowed word: '%s'", core.NormalizeKey(word)),
				MatchedWord: core.NormalizeKey(word),
			})
		}
	}

	// 2. Disallowed prefixes and suffixes at a word boundary.
	norm := core.NormalizeKey(title)
	for _, affix := range f.rules.DisallowedAffixes {
		a := core.NormalizeKey(affix)
		if strings.HasPrefix(norm, a+" ") {
			details = append(details, core.Detail{
				Check:       core.CheckDisallowedPrefix,
				Description: fmt.Sprintf("Disallowed prefix: '%s'", a),
				MatchedWord: a,
			})
		}
		if strings.HasSuffix(norm, " "+a) {
			details = append(details, core.Detail{
				Check:       core.CheckDisallowedSuffix,
				Description: fmt.Sprintf("Disallowed suffix: '%s'", a),
				MatchedWord: a,
			})
		}
	}

	// 3. Periodicity-strip lookup: removing every matched marker must not
	// leave an already-registered title behind.
	if detail, ok := f.checkPeriodicity(title); ok {
		details = append(details, detail)
	}

	if len(details) == 0 {
		return Result{}
	}
	return Result{
		Blocked: true,
		Reason:  details[0].Description,
		Details: details,
	}
}

// checkPeriodicity strips every occurring periodicity marker from the title
// and tests whether the remainder exactly matches a registered title.
// Stripping is deliberately aggressive: every occurrence of every matched
// marker is removed, which can over-strip a title that uses a marker word as
// meaningful content.
func (f *Filter) checkPeriodicity(title string) (core.Detail, bool) {
	var found []string
	for _, marker := range f.rules.PeriodicityMarkers {
		if core.ContainsToken(title, marker) {
			found = append(found, core.NormalizeKey(marker))
		}
	}
	if len(found) == 0 {
		return core.Detail{}, false
	}

	markers := make(map[string]struct{}, len(found))
	for _, m := range found {
		markers[m] = struct{}{}
	}

	var kept []string
	for _, token := range core.Tokens(title) {
		if _, ok := markers[token]; ok {
			continue
		}
		kept = append(kept, token)
	}
	stripped := strings.Join(kept, " ")

	if stripped == "" || !f.index.ContainsExact(stripped) {
		return core.Detail{}, false
	}

	return core.Detail{
		Check: core.CheckPeriodicity,
		Description: fmt.Sprintf(
			"Cannot form a new title by adding periodicity '%s' to existing title", found[0]),
		MatchedWord:  found[0],
		MatchedTitle: stripped,
	}, true
}

package rules

import (
	"encoding/json"
	"fmt"
	"os"
)

// RuleSet holds the lexical rules applied to candidate titles.
// Loaded once at process start, read-only thereafter.
type RuleSet struct {
	DisallowedWords    []string `json:"disallowed_words"`
	DisallowedAffixes  []string `json:"disallowed_prefixes"`
	PeriodicityMarkers []string `json:"periodicity_words"`
}

// Empty returns a RuleSet with no rules configured.
// With an empty rule set no rule-based rejection can occur.
func Empty() *RuleSet {
	return &RuleSet{}
}

// Load reads a RuleSet from a JSON document at path.
//
// A missing document is not fatal: Load returns an empty RuleSet together
// with ErrRuleDocumentMissing so the caller can log the degradation and
// proceed. A document that exists but cannot be parsed is a real error.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), fmt.Errorf("%w: %s", ErrRuleDocumentMissing, path)
		}
		return nil, fmt.Errorf("cannot read rule document %s: %w", path, err)
	}

	var rs RuleSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("invalid rule document %s: %w", path, err)
	}
	return &rs, nil
}

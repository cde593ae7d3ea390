// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package verify

import (
	"fmt"

	"github.com/poiesic/titlegate/core"
)

// ExactLookup answers membership queries against the registered title set.
type ExactLookup interface {
	ContainsExact(text string) bool
}

// CombinationDetector flags two-word candidates whose words are both
// already registered as standalone titles. "Hindu" and "Times" registered
// means "Hindu Times" is a trivial combination, not a new title.
type CombinationDetector struct {
	index ExactLookup
}

// NewCombinationDetector creates a detector backed by the given exact set.
func NewCombinationDetector(index ExactLookup) (*CombinationDetector, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	return &CombinationDetector{index: index}, nil
}

// Check reports whether the candidate is a combination of two existing
// titles. Candidates with any token count other than two never match.
func (d *CombinationDetector) Check(title string) (core.Detail, bool) {
	tokens := core.Tokens(title)
	if len(tokens) != 2 {
		return core.Detail{}, false
	}

	if !d.index.ContainsExact(tokens[0]) || !d.index.ContainsExact(tokens[1]) {
		return core.Detail{}, false
	}

	return core.Detail{
		Check:       core.CheckCombination,
		Description: fmt.Sprintf("Combination of existing titles: '%s' and '%s'", tokens[0], tokens[1]),
		Score:       100,
	}, true
}

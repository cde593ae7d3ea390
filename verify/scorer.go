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
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/titlegate/core"
	"github.com/poiesic/titlegate/index"
)

const (
	// topNeighbors is how many nearest registered titles each candidate
	// is compared against.
	topNeighbors = 5

	// semanticDetailThreshold is the semantic score above which a
	// neighbor is reported as a detail.
	semanticDetailThreshold = 40

	// phoneticDetailThreshold is the phonetic score above which a
	// neighbor is reported as a detail.
	phoneticDetailThreshold = 60
)

// NeighborSearcher finds the registered titles nearest to a query text.
type NeighborSearcher interface {
	SearchNearest(ctx context.Context, text string, k int) ([]index.Match, error)
}

// Scorer fuses semantic and phonetic similarity against the nearest
// registered titles into a single 0 to 100 score per candidate.
type Scorer struct {
	index  NeighborSearcher
	logger *slog.Logger
}

// NewScorer creates a scorer over the given neighbor index.
func NewScorer(idx NeighborSearcher, logger *slog.Logger) (*Scorer, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		index:  idx,
		logger: logger.With("component", "scorer"),
	}, nil
}

// Score returns the candidate's highest fused similarity against its
// nearest neighbors, with one detail per neighbor signal that crossed its
// reporting threshold. Neighbors whose normalized form equals the
// candidate's are skipped so a registered title never scores against
// itself. An empty index yields a zero score and no details.
func (s *Scorer) Score(ctx context.Context, title string) (float64, []core.Detail, error) {
	matches, err := s.index.SearchNearest(ctx, title, topNeighbors)
	if err != nil {
		return 0, nil, fmt.Errorf("neighbor search: %w", err)
	}

	key := core.NormalizeKey(title)

	var (
		highest float64
		details []core.Detail
	)
	for _, m := range matches {
		if core.NormalizeKey(m.Title) == key {
			continue
		}

		phonetic, soundsAlike := PhoneticSimilarity(title, m.Title)
		combined := m.Score
		if phonetic > combined {
			combined = phonetic
		}
		if combined > highest {
			highest = combined
		}

		if m.Score > semanticDetailThreshold {
			details = append(details, core.Detail{
				Check:        core.CheckSemantic,
				Description:  fmt.Sprintf("Semantic similarity %.2f%% with existing title '%s'", m.Score, m.Title),
				MatchedTitle: m.Title,
				Score:        m.Score,
			})
		}
		if phonetic > phoneticDetailThreshold {
			description := fmt.Sprintf("Phonetic similarity %.2f%% with existing title '%s'", phonetic, m.Title)
			if soundsAlike {
				description = fmt.Sprintf("Sounds identical to existing title '%s'", m.Title)
			}
			details = append(details, core.Detail{
				Check:        core.CheckPhonetic,
				Description:  description,
				MatchedTitle: m.Title,
				Score:        phonetic,
			})
		}
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].Score > details[j].Score
	})

	s.logger.Debug("scored candidate",
		"title", title,
		"neighbors", len(matches),
		"score", highest,
		"details", len(details))

	return highest, details, nil
}

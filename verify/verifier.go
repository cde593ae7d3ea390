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
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/titlegate/core"
	"github.com/poiesic/titlegate/index"
	"github.com/poiesic/titlegate/rules"
	"github.com/poiesic/titlegate/storage"
)

// rejectionThreshold is the fused similarity score at or above which a
// candidate is rejected. Approval requires a score strictly below it.
const rejectionThreshold = 50.0

const approvedReason = "Title is unique and follows guidelines"

// TitleIndex combines the index operations the pipeline needs: exact set
// membership for the cheap stages, nearest-neighbor search for scoring,
// and insertion for approved candidates.
type TitleIndex interface {
	ContainsExact(text string) bool
	SearchNearest(ctx context.Context, text string, k int) ([]index.Match, error)
	Insert(ctx context.Context, text string) error
}

// Verifier runs candidates through the full verification pipeline and, on
// approval, registers them in both the index and the record store.
type Verifier struct {
	filter   *rules.Filter
	detector *CombinationDetector
	scorer   *Scorer
	index    TitleIndex
	titles   storage.TitleRepository
	logger   *slog.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLogger sets the logger used by the verifier and its stages.
func WithLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewVerifier wires the pipeline stages over a shared title index. A nil
// rule set behaves as an empty one, so the rule stage never blocks.
func NewVerifier(idx TitleIndex, titles storage.TitleRepository, ruleSet *rules.RuleSet, opts ...VerifierOption) (*Verifier, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if titles == nil {
		return nil, ErrRepositoryRequired
	}

	v := &Verifier{
		index:  idx,
		titles: titles,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With("component", "verifier")

	filter, err := rules.NewFilter(ruleSet, idx, rules.WithLogger(v.logger))
	if err != nil {
		return nil, fmt.Errorf("rule filter: %w", err)
	}
	v.filter = filter

	detector, err := NewCombinationDetector(idx)
	if err != nil {
		return nil, fmt.Errorf("combination detector: %w", err)
	}
	v.detector = detector

	scorer, err := NewScorer(idx, v.logger)
	if err != nil {
		return nil, fmt.Errorf("scorer: %w", err)
	}
	v.scorer = scorer

	return v, nil
}

// Verify runs the candidate through the pipeline and returns the decision.
// Approved titles are registered as a side effect. See VerifyWithMonitor.
func (v *Verifier) Verify(ctx context.Context, title string) (*core.Decision, error) {
	return v.VerifyWithMonitor(ctx, title, NoopMonitor())
}

// VerifyWithMonitor is Verify with per-stage callbacks. Stages run in a
// fixed order and a blocking stage skips everything after it, so a
// rule-rejected candidate never costs an embedding call.
func (v *Verifier) VerifyWithMonitor(ctx context.Context, title string, monitor Monitor) (*core.Decision, error) {
	if core.NormalizeKey(title) == "" {
		return nil, core.ErrEmptyTitleText
	}
	if monitor == nil {
		monitor = NoopMonitor()
	}
	monitor.Begin(title)

	ruleResult := v.filter.Check(title)
	monitor.RuleChecked(ruleResult.Blocked)
	if ruleResult.Blocked {
		decision := rejection(title, ruleResult.Reason, 100, ruleResult.Details)
		monitor.Decided(decision)
		v.logger.Info("title rejected by rules", "title", title, "reason", ruleResult.Reason)
		return decision, nil
	}

	comboDetail, blocked := v.detector.Check(title)
	monitor.CombinationChecked(blocked)
	if blocked {
		decision := rejection(title, comboDetail.Description, 100, append(ruleResult.Details, comboDetail))
		monitor.Decided(decision)
		v.logger.Info("title rejected as combination", "title", title, "reason", comboDetail.Description)
		return decision, nil
	}

	score, details, err := v.scorer.Score(ctx, title)
	if err != nil {
		return nil, err
	}
	monitor.SimilarityScored(score)
	details = append(ruleResult.Details, details...)

	if score >= rejectionThreshold {
		reason := fmt.Sprintf("Title is too similar to existing titles (%.2f%% match)", score)
		decision := rejection(title, reason, score, details)
		monitor.Decided(decision)
		v.logger.Info("title rejected by similarity", "title", title, "score", score)
		return decision, nil
	}

	if err := v.register(ctx, title); err != nil {
		return nil, err
	}

	rounded := round2(score)
	decision := &core.Decision{
		Title:                   title,
		Status:                  core.StatusApproved,
		Reason:                  approvedReason,
		SimilarityScore:         rounded,
		VerificationProbability: 100 - rounded,
		Details:                 details,
	}
	monitor.Decided(decision)
	v.logger.Info("title approved", "title", title, "score", score)
	return decision, nil
}

// register writes an approved title to the index first and the record
// store second. A store-level duplicate means a concurrent request won the
// race for the same title; the index insert was already a no-op then, so
// the duplicate is swallowed.
func (v *Verifier) register(ctx context.Context, title string) error {
	if err := v.index.Insert(ctx, title); err != nil {
		return fmt.Errorf("index insert: %w", err)
	}
	if _, err := v.titles.AddTitle(ctx, title); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			v.logger.Debug("title already registered", "title", title)
			return nil
		}
		return fmt.Errorf("store title: %w", err)
	}
	return nil
}

func rejection(title, reason string, score float64, details []core.Detail) *core.Decision {
	rounded := round2(score)
	probability := 100 - rounded
	if probability < 0 {
		probability = 0
	}
	return &core.Decision{
		Title:                   title,
		Status:                  core.StatusRejected,
		Reason:                  reason,
		SimilarityScore:         rounded,
		VerificationProbability: probability,
		Details:                 details,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

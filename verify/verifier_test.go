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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/titlegate/ai/mock"
	"github.com/poiesic/titlegate/core"
	"github.com/poiesic/titlegate/index"
	"github.com/poiesic/titlegate/rules"
	"github.com/poiesic/titlegate/storage"
	"github.com/poiesic/titlegate/storage/badger"
)

type verifierFixture struct {
	verifier *Verifier
	index    *index.Index
	titles   storage.TitleRepository
	embedder *mock.MockEmbedder
}

// newVerifierFixture wires a verifier over an in-memory store and a
// 4-dimensional index preloaded with the given titles.
func newVerifierFixture(t *testing.T, ruleSet *rules.RuleSet, vectors map[string][]float32, seed ...string) *verifierFixture {
	t.Helper()

	embedder := vectorEmbedder(vectors)
	idx := newSeededIndex(t, embedder, seed...)

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	for _, title := range seed {
		_, err := repo.AddTitle(context.Background(), title)
		require.NoError(t, err)
	}

	v, err := NewVerifier(idx, repo, ruleSet)
	require.NoError(t, err)

	return &verifierFixture{verifier: v, index: idx, titles: repo, embedder: embedder}
}

func TestNewVerifier(t *testing.T) {
	t.Run("requires index and repository", func(t *testing.T) {
		repo, backend, err := badger.NewMemoryRepository()
		require.NoError(t, err)
		defer backend.Close()
		defer repo.Close()

		_, err = NewVerifier(nil, repo, nil)
		assert.ErrorIs(t, err, ErrIndexRequired)

		embedder := mock.NewMockEmbedder()
		idx, err := index.New(embedder, index.WithDimension(4))
		require.NoError(t, err)

		_, err = NewVerifier(idx, nil, nil)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})
}

func TestVerifyRuleRejection(t *testing.T) {
	ruleSet := &rules.RuleSet{DisallowedWords: []string{"police"}}
	f := newVerifierFixture(t, ruleSet, nil)

	decision, err := f.verifier.Verify(context.Background(), "Police Daily")
	require.NoError(t, err)

	assert.Equal(t, core.StatusRejected, decision.Status)
	assert.Equal(t, "Contains disallowed word: 'police'", decision.Reason)
	assert.Equal(t, 100.0, decision.SimilarityScore)
	assert.Zero(t, decision.VerificationProbability)
	require.Len(t, decision.Details, 1)
	assert.Equal(t, core.CheckDisallowedWord, decision.Details[0].Check)

	// The cheap stage rejected, so no embedding was computed.
	assert.Zero(t, f.embedder.CallCount())
	assert.False(t, f.index.ContainsExact("Police Daily"))
}

func TestVerifyCombinationRejection(t *testing.T) {
	vectors := map[string][]float32{
		"hindu": {1, 0, 0, 0},
		"times": {0, 1, 0, 0},
	}
	f := newVerifierFixture(t, nil, vectors, "Hindu", "Times")
	seedCalls := f.embedder.CallCount()

	decision, err := f.verifier.Verify(context.Background(), "Hindu Times")
	require.NoError(t, err)

	assert.Equal(t, core.StatusRejected, decision.Status)
	assert.Equal(t, "Combination of existing titles: 'hindu' and 'times'", decision.Reason)
	assert.Equal(t, 100.0, decision.SimilarityScore)
	assert.Zero(t, decision.VerificationProbability)
	require.Len(t, decision.Details, 1)
	assert.Equal(t, core.CheckCombination, decision.Details[0].Check)
	assert.Equal(t, 100.0, decision.Details[0].Score)

	// Rejection happened before the similarity stage.
	assert.Equal(t, seedCalls, f.embedder.CallCount())
}

func TestVerifySemanticRejection(t *testing.T) {
	vectors := map[string][]float32{
		"alpha journal": {1, 0, 0, 0},
		"zulu quorum":   {0.8, 0.6, 0, 0},
	}
	f := newVerifierFixture(t, nil, vectors, "alpha journal")

	decision, err := f.verifier.Verify(context.Background(), "zulu quorum")
	require.NoError(t, err)

	assert.Equal(t, core.StatusRejected, decision.Status)
	assert.Contains(t, decision.Reason, "Title is too similar to existing titles")
	assert.Contains(t, decision.Reason, "% match")
	assert.InDelta(t, 80.0, decision.SimilarityScore, 0.01)
	assert.InDelta(t, 20.0, decision.VerificationProbability, 0.01)
	require.NotEmpty(t, decision.Details)
	assert.Equal(t, core.CheckSemantic, decision.Details[0].Check)

	// Rejected candidates are never registered.
	assert.False(t, f.index.ContainsExact("zulu quorum"))
	approved, err := f.titles.ListApproved(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, approved, "zulu quorum")
}

func TestVerifyPhoneticRejection(t *testing.T) {
	// Semantically orthogonal but phonetically identical.
	vectors := map[string][]float32{
		"namaskar": {1, 0, 0, 0},
		"namascar": {0, 1, 0, 0},
	}
	f := newVerifierFixture(t, nil, vectors, "namaskar")

	decision, err := f.verifier.Verify(context.Background(), "namascar")
	require.NoError(t, err)

	assert.Equal(t, core.StatusRejected, decision.Status)
	assert.Equal(t, 100.0, decision.SimilarityScore)
	assert.Zero(t, decision.VerificationProbability)
	require.Len(t, decision.Details, 1)
	assert.Equal(t, core.CheckPhonetic, decision.Details[0].Check)
}

func TestVerifyApproval(t *testing.T) {
	vectors := map[string][]float32{
		"alpha journal": {1, 0, 0, 0},
		"quiet meadow":  {0, 0, 0.6, 0.8},
	}
	f := newVerifierFixture(t, nil, vectors, "alpha journal")
	ctx := context.Background()

	decision, err := f.verifier.Verify(ctx, "quiet meadow")
	require.NoError(t, err)

	assert.Equal(t, core.StatusApproved, decision.Status)
	assert.True(t, decision.Approved())
	assert.Equal(t, "Title is unique and follows guidelines", decision.Reason)
	assert.Less(t, decision.SimilarityScore, 50.0)
	assert.InDelta(t, 100.0, decision.SimilarityScore+decision.VerificationProbability, 0.001)
	assert.Empty(t, decision.Details)

	// Approval registers the title in both the index and the store.
	assert.True(t, f.index.ContainsExact("quiet meadow"))
	approved, err := f.titles.ListApproved(ctx)
	require.NoError(t, err)
	assert.Contains(t, approved, "quiet meadow")

	// Re-verifying the same title must not fail or duplicate it: the
	// index skips self matches and the store swallows the duplicate.
	again, err := f.verifier.Verify(ctx, "quiet meadow")
	require.NoError(t, err)
	assert.Equal(t, core.StatusApproved, again.Status)

	approved, err = f.titles.ListApproved(ctx)
	require.NoError(t, err)
	count := 0
	for _, text := range approved {
		if text == "quiet meadow" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestVerifyThresholdBoundary(t *testing.T) {
	t.Run("exactly 50 is rejected", func(t *testing.T) {
		vectors := map[string][]float32{
			"axis base":   {1, 0, 0, 0},
			"zulu quorum": {0.5, 0.5, 0.5, 0.5},
		}
		f := newVerifierFixture(t, nil, vectors, "axis base")

		decision, err := f.verifier.Verify(context.Background(), "zulu quorum")
		require.NoError(t, err)
		assert.Equal(t, core.StatusRejected, decision.Status)
		assert.Equal(t, 50.0, decision.SimilarityScore)
		assert.Equal(t, 50.0, decision.VerificationProbability)
	})

	t.Run("just below 50 is approved", func(t *testing.T) {
		vectors := map[string][]float32{
			"axis base":   {1, 0, 0, 0},
			"zulu quorum": {0.48, 0.6, 0.4, 0.5},
		}
		f := newVerifierFixture(t, nil, vectors, "axis base")

		decision, err := f.verifier.Verify(context.Background(), "zulu quorum")
		require.NoError(t, err)
		assert.Equal(t, core.StatusApproved, decision.Status)
		assert.Less(t, decision.SimilarityScore, 50.0)
	})
}

func TestVerifyEmbeddingFailureDegrades(t *testing.T) {
	// Only the seed title has a vector; embedding the candidate fails and
	// the index degrades it to a zero vector, so similarity cannot block.
	vectors := map[string][]float32{
		"alpha journal": {1, 0, 0, 0},
	}
	f := newVerifierFixture(t, nil, vectors, "alpha journal")

	decision, err := f.verifier.Verify(context.Background(), "umlaut zyx")
	require.NoError(t, err)
	assert.Equal(t, core.StatusApproved, decision.Status)
	assert.Less(t, decision.SimilarityScore, 50.0)
	assert.InDelta(t, 100.0, decision.SimilarityScore+decision.VerificationProbability, 0.001)
}

func TestVerifyEmptyTitle(t *testing.T) {
	f := newVerifierFixture(t, nil, nil)

	_, err := f.verifier.Verify(context.Background(), "   ")
	assert.ErrorIs(t, err, core.ErrEmptyTitleText)
}

// recordingMonitor captures the pipeline callbacks in order.
type recordingMonitor struct {
	began      []string
	rule       []bool
	combo      []bool
	similarity []float64
	decisions  []*core.Decision
}

func (m *recordingMonitor) Begin(title string)              { m.began = append(m.began, title) }
func (m *recordingMonitor) RuleChecked(blocked bool)        { m.rule = append(m.rule, blocked) }
func (m *recordingMonitor) CombinationChecked(blocked bool) { m.combo = append(m.combo, blocked) }
func (m *recordingMonitor) SimilarityScored(score float64)  { m.similarity = append(m.similarity, score) }
func (m *recordingMonitor) Decided(d *core.Decision)        { m.decisions = append(m.decisions, d) }

func TestVerifyWithMonitor(t *testing.T) {
	t.Run("rule rejection skips later callbacks", func(t *testing.T) {
		ruleSet := &rules.RuleSet{DisallowedWords: []string{"police"}}
		f := newVerifierFixture(t, ruleSet, nil)
		monitor := &recordingMonitor{}

		_, err := f.verifier.VerifyWithMonitor(context.Background(), "Police Daily", monitor)
		require.NoError(t, err)

		assert.Equal(t, []string{"Police Daily"}, monitor.began)
		assert.Equal(t, []bool{true}, monitor.rule)
		assert.Empty(t, monitor.combo)
		assert.Empty(t, monitor.similarity)
		require.Len(t, monitor.decisions, 1)
		assert.Equal(t, core.StatusRejected, monitor.decisions[0].Status)
	})

	t.Run("approval reports every stage", func(t *testing.T) {
		vectors := map[string][]float32{
			"quiet meadow": {0, 0, 0.6, 0.8},
		}
		f := newVerifierFixture(t, nil, vectors)
		monitor := &recordingMonitor{}

		decision, err := f.verifier.VerifyWithMonitor(context.Background(), "quiet meadow", monitor)
		require.NoError(t, err)

		assert.Equal(t, []bool{false}, monitor.rule)
		assert.Equal(t, []bool{false}, monitor.combo)
		require.Len(t, monitor.similarity, 1)
		assert.Zero(t, monitor.similarity[0])
		require.Len(t, monitor.decisions, 1)
		assert.Same(t, decision, monitor.decisions[0])
	})
}

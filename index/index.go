package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/poiesic/titlegate/ai"
	"github.com/poiesic/titlegate/core"
)

const (
	defaultEmbedCacheTTL     = time.Minute
	defaultEmbedCacheCleanup = 5 * time.Minute
)

// Match is a single nearest-neighbor result.
// Score is a cosine-similarity percentage clamped at 100.
type Match struct {
	Title string
	Score float64
}

// TitleLister supplies the approved titles of the durable record store for
// hydration reconciliation.
type TitleLister interface {
	ListApproved(ctx context.Context) ([]string, error)
}

// Index is the hybrid in-memory title index.
//
// Reads (ContainsExact, SearchNearest, Keys, Size) may run fully in
// parallel. Insert serializes behind the writer lock, so the vector matrix,
// the ordinal text sequence, and the key map always mutate as one unit.
type Index struct {
	mu       sync.RWMutex
	dim      int
	texts    []string       // ordinal -> canonical text
	vectors  []float32      // flat row-major matrix, len == len(texts)*dim
	ordinals map[string]int // normalized key -> ordinal

	embedder   ai.Embedder
	embedCache *cache.Cache
	logger     *slog.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithDimension sets the embedding dimension.
// Default is ai.DefaultDimension.
func WithDimension(dim int) Option {
	return func(idx *Index) {
		if dim > 0 {
			idx.dim = dim
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
	}
}

// WithEmbedCacheTTL sets how long a computed embedding is reused.
// A verification that approves a title embeds it during scoring and again on
// insertion; the cache collapses those into a single provider call.
func WithEmbedCacheTTL(ttl time.Duration) Option {
	return func(idx *Index) {
		idx.embedCache = cache.New(ttl, defaultEmbedCacheCleanup)
	}
}

// New creates an empty Index backed by the given embedder.
func New(embedder ai.Embedder, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	idx := &Index{
		dim:        ai.DefaultDimension,
		ordinals:   make(map[string]int),
		embedder:   embedder,
		embedCache: cache.New(defaultEmbedCacheTTL, defaultEmbedCacheCleanup),
		logger:     slog.Default().With("component", "title-index"),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// Dimension returns the embedding dimension of the index.
func (idx *Index) Dimension() int {
	return idx.dim
}

// Size returns the number of indexed titles.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.texts)
}

// ContainsExact reports whether the title is already indexed,
// case-insensitively. O(1).
func (idx *Index) ContainsExact(text string) bool {
	key := core.NormalizeKey(text)
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.ordinals[key]
	return ok
}

// Keys returns a copy of the normalized key set.
func (idx *Index) Keys() map[string]struct{} {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	keys := make(map[string]struct{}, len(idx.ordinals))
	for k := range idx.ordinals {
		keys[k] = struct{}{}
	}
	return keys
}

// embed resolves a normalized embedding for text, consulting the short-TTL
// cache first. A provider failure degrades to a zero vector rather than
// failing the request; rule and combination checks remain valid regardless.
func (idx *Index) embed(ctx context.Context, text string) ([]float32, error) {
	key := core.NormalizeKey(text)
	if cached, ok := idx.embedCache.Get(key); ok {
		return cached.([]float32), nil
	}

	vec, err := idx.embedder.EmbedText(ctx, text)
	if err != nil {
		idx.logger.Warn("embedding unavailable, degrading to zero vector", "err", err)
		return make([]float32, idx.dim), nil
	}
	if len(vec) != idx.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), idx.dim)
	}

	normalized := normalizeL2(vec)
	idx.embedCache.Set(key, normalized, cache.DefaultExpiration)
	return normalized, nil
}

// SearchNearest embeds text and returns up to k indexed titles ordered by
// descending semantic similarity. Similarity is reported as a percentage in
// [0,100], clamped at 100 to absorb floating-point overshoot.
// An empty index yields an empty result without an embedding call.
func (idx *Index) SearchNearest(ctx context.Context, text string, k int) ([]Match, error) {
	if idx.Size() == 0 || k <= 0 {
		return nil, nil
	}

	query, err := idx.embed(ctx, text)
	if err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matches := make([]Match, 0, len(idx.texts))
	for i, title := range idx.texts {
		row := idx.vectors[i*idx.dim : (i+1)*idx.dim]
		score := dotProduct(query, row) * 100
		if score > 100 {
			score = 100
		}
		matches = append(matches, Match{Title: title, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Insert adds a title to the index. A title already present
// (case-insensitively) is a no-op. Safe for concurrent callers: all three
// structures mutate atomically behind the writer lock, and the duplicate
// check repeats under the lock so racing inserts of the same title resolve
// to exactly one entry.
func (idx *Index) Insert(ctx context.Context, text string) error {
	key := core.NormalizeKey(text)
	if key == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidTitle, core.ErrEmptyTitleText)
	}
	if idx.ContainsExact(key) {
		return nil
	}

	// Embed outside the writer lock; this is the dominant latency cost.
	vec, err := idx.embed(ctx, text)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.appendLocked(text, vec)
	return nil
}

// Add appends a title with a precomputed embedding, normalizing it first.
// Duplicate keys are skipped. Offline rebuilds use this to batch their
// provider calls instead of going through Insert one title at a time.
func (idx *Index) Add(text string, vec []float32) error {
	key := core.NormalizeKey(text)
	if key == "" {
		return fmt.Errorf("%w: %w", core.ErrInvalidTitle, core.ErrEmptyTitleText)
	}
	if len(vec) != idx.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), idx.dim)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.appendLocked(text, normalizeL2(vec))
	return nil
}

// appendLocked appends one entry to all three structures. Caller holds the
// writer lock. Duplicate keys are skipped, which makes hydration and racing
// inserts idempotent.
func (idx *Index) appendLocked(text string, vec []float32) {
	key := core.NormalizeKey(text)
	if _, ok := idx.ordinals[key]; ok {
		return
	}
	idx.ordinals[key] = len(idx.texts)
	idx.texts = append(idx.texts, text)
	idx.vectors = append(idx.vectors, vec...)
}

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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/titlegate/ai"
	"github.com/poiesic/titlegate/index"
)

// Config holds configuration for a rebuild.
type Config struct {
	// BatchSize is the number of titles embedded per provider call
	BatchSize int

	// ReportInterval is how often to report progress (number of titles)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed
	// embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Rebuilder re-embeds every approved title in the record store and builds
// a fresh index from the results.
type Rebuilder struct {
	titles    index.TitleLister
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	indexOpts []index.Option
}

// NewRebuilder creates a rebuilder.
// progress: where to write progress output (typically os.Stderr)
// indexOpts are passed through to the index being built, most commonly
// index.WithDimension when the new model has a different dimensionality.
func NewRebuilder(titles index.TitleLister, embedder ai.Embedder, config *Config, progress io.Writer, indexOpts ...index.Option) (*Rebuilder, error) {
	if titles == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Rebuilder{
		titles:    titles,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		indexOpts: indexOpts,
	}, nil
}

// Run embeds every approved title in batches and returns the rebuilt
// index. Embedding failures are retried with exponential backoff; a batch
// that exhausts its retries aborts the rebuild.
func (r *Rebuilder) Run(ctx context.Context) (*index.Index, error) {
	approved, err := r.titles.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query titles: %w", err)
	}

	idx, err := index.New(r.embedder, r.indexOpts...)
	if err != nil {
		return nil, err
	}

	total := len(approved)
	if total == 0 {
		fmt.Fprintf(r.progress, "No approved titles found in database (0 titles)\n")
		return idx, nil
	}

	fmt.Fprintf(r.progress, "Starting rebuild of %d titles (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	for start := 0; start < total; start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > total {
			end = total
		}
		batch := approved[start:end]

		if err := r.processBatch(ctx, idx, batch); err != nil {
			return nil, err
		}
		tracker.Increment(len(batch))
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Rebuild complete. Processed %d titles in %v (%.1f titles/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return idx, nil
}

// processBatch embeds one batch with retry and loads it into the index.
func (r *Rebuilder) processBatch(ctx context.Context, idx *index.Index, batch []string) error {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = r.embedder.EmbedTexts(ctx, batch)
		return err
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i, text := range batch {
		if err := idx.Add(text, embeddings[i]); err != nil {
			return fmt.Errorf("failed to index %q: %w", text, err)
		}
	}
	return nil
}

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


package titlegate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/titlegate/ai"
	"github.com/poiesic/titlegate/ai/openai"
	"github.com/poiesic/titlegate/core"
	"github.com/poiesic/titlegate/index"
	"github.com/poiesic/titlegate/rules"
	"github.com/poiesic/titlegate/storage"
	"github.com/poiesic/titlegate/storage/badger"
	"github.com/poiesic/titlegate/verify"
)

// Engine owns the full verification stack: the badger-backed title store,
// the embedding provider, the in-memory hybrid index, and the pipeline
// wired over them.
type Engine struct {
	backend     *badger.Backend
	titles      storage.TitleRepository
	provider    ai.Provider
	index       *index.Index
	verifier    *verify.Verifier
	ruleSet     *rules.RuleSet
	snapshotDir string
	modelID     string
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig    *ai.Config
	provider    ai.Provider
	rulesPath   string
	snapshotDir string
	inMemory    bool
	logger      *slog.Logger
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects a pre-built embedding provider instead of dialing
// one from the AI config. The engine takes ownership and closes it.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithRulesPath sets the lexical rule document. A missing document is not
// an error; the rule stage simply never blocks.
func WithRulesPath(path string) EngineOption {
	return func(o *engineOptions) {
		o.rulesPath = path
	}
}

// WithSnapshotDir sets where index snapshots are read from and written to.
func WithSnapshotDir(dir string) EngineOption {
	return func(o *engineOptions) {
		o.snapshotDir = dir
	}
}

// WithInMemory opens the record store in memory, for tests and dry runs.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithEngineLogger sets the logger shared by every component.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine opens the record store at filePath and wires the verification
// pipeline over it. Call Hydrate before serving verifications so the index
// reflects the registered titles.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	titles, err := badger.NewTitleRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			titles.Close()
			backend.Close()
			return nil, err
		}
	}

	idx, err := index.New(provider.Embedder(),
		index.WithDimension(options.aiConfig.Dimension),
		index.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		titles.Close()
		backend.Close()
		return nil, err
	}

	ruleSet := rules.Empty()
	if options.rulesPath != "" {
		ruleSet, err = rules.Load(options.rulesPath)
		if err != nil {
			if !errors.Is(err, rules.ErrRuleDocumentMissing) {
				provider.Close()
				titles.Close()
				backend.Close()
				return nil, err
			}
			options.logger.Warn("rule document missing, lexical checks disabled",
				"path", options.rulesPath)
		}
	}

	verifier, err := verify.NewVerifier(idx, titles, ruleSet,
		verify.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		titles.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:     backend,
		titles:      titles,
		provider:    provider,
		index:       idx,
		verifier:    verifier,
		ruleSet:     ruleSet,
		snapshotDir: options.snapshotDir,
		modelID:     options.aiConfig.EmbeddingModel,
		logger:      options.logger,
	}, nil
}

// Hydrate loads the index snapshot, if one exists, and reconciles the
// index against the record store.
func (e *Engine) Hydrate(ctx context.Context) error {
	return e.index.Hydrate(ctx, e.snapshotDir, e.titles)
}

// Verify runs a candidate title through the pipeline. Approved titles are
// registered in the index and the record store.
func (e *Engine) Verify(ctx context.Context, title string) (*core.Decision, error) {
	return e.verifier.Verify(ctx, title)
}

// VerifyWithMonitor is Verify with per-stage callbacks.
func (e *Engine) VerifyWithMonitor(ctx context.Context, title string, monitor verify.Monitor) (*core.Decision, error) {
	return e.verifier.VerifyWithMonitor(ctx, title, monitor)
}

// WriteSnapshot persists the current index state to the snapshot
// directory for the next process start. Without a configured snapshot
// directory it is a no-op.
func (e *Engine) WriteSnapshot() error {
	if e.snapshotDir == "" {
		return nil
	}
	return e.index.WriteSnapshot(e.snapshotDir, e.modelID)
}

// Index exposes the underlying title index.
func (e *Engine) Index() *index.Index {
	return e.index
}

// Titles exposes the underlying title repository.
func (e *Engine) Titles() storage.TitleRepository {
	return e.titles
}

// Rules exposes the loaded rule set.
func (e *Engine) Rules() *rules.RuleSet {
	return e.ruleSet
}

func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.titles.Close(); err != nil {
		e.logger.Error("error closing title repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

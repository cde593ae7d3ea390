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


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/titlegate"
	"github.com/poiesic/titlegate/ai"
	"github.com/poiesic/titlegate/ai/openai"
	"github.com/poiesic/titlegate/core"
	"github.com/poiesic/titlegate/index"
	"github.com/poiesic/titlegate/reindex"
	"github.com/poiesic/titlegate/storage/badger"
)

func main() {
	app := &cli.App{
		Name:   "titlegate",
		Usage:  "Publication title verification service",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve title verification over HTTP",
				Action: serveCommand,
				Flags: append(engineFlags(),
					&cli.StringFlag{
						Name:  "listen",
						Usage: "HTTP listen address",
						Value: ":8080",
					},
				),
			},
			{
				Name:      "verify",
				Usage:     "Verify one or more candidate titles and print the decisions",
				Action:    verifyCommand,
				ArgsUsage: "TITLE [TITLE...]",
				Flags:     engineFlags(),
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the index snapshot by re-embedding all stored titles",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "snapshot",
						Usage:    "Directory to write the rebuilt index snapshot",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding dimension of the new model",
						Value: ai.DefaultDimension,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of titles to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N titles",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "rules",
			Usage: "Path to the lexical rule document (JSON)",
		},
		&cli.StringFlag{
			Name:  "snapshot",
			Usage: "Directory for index snapshots",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "paraphrase-multilingual-minilm",
		},
	}
}

func buildEngine(c *cli.Context) (*titlegate.Engine, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	engine, err := titlegate.NewEngine(c.String("db"),
		titlegate.WithAIConfig(aiConfig),
		titlegate.WithRulesPath(c.String("rules")),
		titlegate.WithSnapshotDir(c.String("snapshot")))
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}
	return engine, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := engine.Hydrate(ctx); err != nil {
		return fmt.Errorf("index hydration failed: %w", err)
	}
	slog.Info("index hydrated", "titles", engine.Index().Size())

	server := &http.Server{
		Addr:              c.String("listen"),
		Handler:           newMux(engine),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}

	if err := engine.WriteSnapshot(); err != nil {
		slog.Error("snapshot write failed", "err", err)
	}
	return nil
}

func verifyCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one title is required")
	}

	engine, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := c.Context
	if err := engine.Hydrate(ctx); err != nil {
		return fmt.Errorf("index hydration failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	for _, title := range c.Args().Slice() {
		decision, err := engine.Verify(ctx, title)
		if err != nil {
			return fmt.Errorf("verification of %q failed: %w", title, err)
		}
		if err := encoder.Encode(decision); err != nil {
			return err
		}
	}

	return engine.WriteSnapshot()
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewTitleRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithDimension(c.Int("dimension")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	rebuilder, err := reindex.NewRebuilder(repo, embedder, config, os.Stderr,
		index.WithDimension(aiConfig.Dimension))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	idx, err := rebuilder.Run(ctx)
	if err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	if err := idx.WriteSnapshot(c.String("snapshot"), aiConfig.EmbeddingModel); err != nil {
		return fmt.Errorf("snapshot write failed: %w", err)
	}
	return nil
}

type verifyRequest struct {
	Title string `json:"title"`
}

func newMux(engine *titlegate.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /verify", func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		decision, err := engine.Verify(r.Context(), req.Title)
		if err != nil {
			if errors.Is(err, core.ErrEmptyTitleText) {
				http.Error(w, "title must not be empty", http.StatusBadRequest)
				return
			}
			slog.Error("verification failed", "title", req.Title, "err", err)
			http.Error(w, "verification failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(decision); err != nil {
			slog.Error("response encoding failed", "err", err)
		}
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// Copyright 2025 Ailsa Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ailsahq/grantseek/ai"
	"github.com/ailsahq/grantseek/ai/openai"
	"github.com/ailsahq/grantseek/reembed"
	"github.com/ailsahq/grantseek/search"
	"github.com/ailsahq/grantseek/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "grantseek",
		Usage: "Hybrid retrieval and ranking over a grant funding index",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank grants in the index against a query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session identifier for follow-up queries across invocations",
					},
					&cli.BoolFlag{
						Name:  "active-only",
						Usage: "Only return grants still accepting applications",
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum number of grants to return (0 uses the engine default)",
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
				},
			},
			{
				Name:   "grants",
				Usage:  "List the most recently updated grants in the index",
				Action: grantsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of grants to list",
						Value: 20,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all indexed chunks with new embeddings",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
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
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
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

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	// Open database
	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	grantRepo, err := badger.NewGrantRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create grant repository: %w", err)
	}
	defer grantRepo.Close()

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create chunk repository: %w", err)
	}
	defer chunkRepo.Close()

	sessionRepo, err := badger.NewSessionRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create session repository: %w", err)
	}
	defer sessionRepo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	engine, err := search.NewEngine(grantRepo, chunkRepo, sessionRepo, provider)
	if err != nil {
		return fmt.Errorf("failed to create ranking engine: %w", err)
	}
	defer engine.Close()

	resp, err := engine.Search(ctx, &search.Request{
		SessionID:  c.String("session"),
		Query:      query,
		ActiveOnly: c.Bool("active-only"),
		MaxResults: c.Int("max-results"),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	printResponse(resp)
	return nil
}

func printResponse(resp *search.Response) {
	fmt.Printf("Intent: %s\n", resp.Intent)
	if resp.NoRetrieval {
		fmt.Println("Definition query; nothing to retrieve from the index.")
		return
	}
	if resp.NoCandidates {
		fmt.Println("No grants matched the query.")
		return
	}
	if resp.Relaxed {
		fmt.Printf("Threshold relaxed to %.2f; treat these matches as low confidence.\n", resp.EffectiveThreshold)
	}

	fmt.Printf("Found %d grants\n", len(resp.Results))
	for i, result := range resp.Results {
		closes := "no deadline"
		if !result.ClosesAt.IsZero() {
			closes = "closes " + result.ClosesAt.Format("2006-01-02")
		}
		fmt.Printf("%d: %s (%s) [%0.3f] %s\n", i+1, result.Title, result.GrantId, result.Adjusted, closes)
	}
	for _, id := range resp.MetadataMissing {
		fmt.Printf("warning: metadata missing for %s\n", id)
	}
}

func grantsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	grantRepo, err := badger.NewGrantRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create grant repository: %w", err)
	}
	defer grantRepo.Close()

	grants, err := grantRepo.GetRecentGrants(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list grants: %w", err)
	}

	for _, grant := range grants {
		fmt.Printf("%s\t%s\t%s\t%s\n", grant.Id, grant.Status, grant.UpdatedAt.Format("2006-01-02"), grant.Title)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	// Validate flags
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	// Open database
	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewChunkRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	// Create AI config
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	// Create embedder
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	// Create reembedding config
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	// Validate config
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	// Create reembedder
	reembedder := reembed.NewReembedder(repo, embedder, reembedConfig, os.Stderr)

	// Run reembedding
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

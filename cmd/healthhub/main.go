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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/healthhub"
	"github.com/poiesic/healthhub/ai"
	"github.com/poiesic/healthhub/index"
	"github.com/poiesic/healthhub/ingestion"
	"github.com/poiesic/healthhub/rag"
	"github.com/poiesic/healthhub/server"
	"github.com/poiesic/healthhub/source"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "healthhub",
		Usage: "Healthcare data ingestion and grounded question answering",
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
				Name:   "ingest",
				Usage:  "Process all configured sources and print a quality report",
				Action: ingestCommand,
				Flags: []cli.Flag{
					dataDirFlag(),
				},
			},
			{
				Name:   "upload",
				Usage:  "Process all sources and upsert documents into the vector index",
				Action: uploadCommand,
				Flags:  append([]cli.Flag{dataDirFlag()}, append(storeFlags(), aiFlags()...)...),
			},
			{
				Name:      "query",
				Usage:     "Ask a question against the indexed data",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of documents to retrieve",
						Value: 10,
					},
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Restrict retrieval to one business domain",
					},
				}, append(storeFlags(), aiFlags()...)...),
			},
			{
				Name:   "stats",
				Usage:  "Print vector index statistics",
				Action: statsCommand,
				Flags:  append(storeFlags(), aiFlags()...),
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					dataDirFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
						Value: ":8000",
					},
					&cli.IntFlag{
						Name:  "rate-limit",
						Usage: "Requests allowed per client per window",
						Value: 20,
					},
					&cli.DurationFlag{
						Name:  "rate-window",
						Usage: "Rate limit window",
						Value: time.Minute,
					},
					&cli.StringFlag{
						Name:  "allow-origin",
						Usage: "CORS allowed origin",
						Value: "*",
					},
				}, append(storeFlags(), aiFlags()...)...),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dataDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Aliases: []string{"d"},
		Usage:   "Base directory containing the data/ source tree",
		Value:   ".",
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "local-db",
			Usage: "Path to the local vector store (used when no Pinecone API key is set)",
			Value: "healthhub-index",
		},
		&cli.StringFlag{
			Name:    "pinecone-api-key",
			Usage:   "Pinecone API key; enables the managed index",
			EnvVars: []string{"PINECONE_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "pinecone-index",
			Usage: "Pinecone index name",
			Value: "healthhub",
		},
		&cli.StringFlag{
			Name:  "pinecone-namespace",
			Usage: "Pinecone namespace",
		},
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible service host URL",
			Value: "https://api.openai.com/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "text-embedding-ada-002",
		},
		&cli.StringFlag{
			Name:  "generator-model",
			Usage: "Generation model name",
			Value: "gpt-4",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the AI service",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.Float64Flag{
			Name:  "temperature",
			Usage: "Generation temperature",
			Value: 0.3,
		},
		&cli.IntFlag{
			Name:  "max-tokens",
			Usage: "Maximum generated tokens",
			Value: 500,
		},
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	sources := source.DefaultSources(c.String("data-dir"))
	pipeline, err := ingestion.NewPipeline(sources)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	report := pipeline.ProcessAllSources(ctx)
	fmt.Println(pipeline.GenerateReport(report))

	if report.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d sources failed", report.Summary.Failed, report.Summary.Total)
	}
	return nil
}

func uploadCommand(c *cli.Context) error {
	ctx := context.Background()

	hub, err := openHub(ctx, c)
	if err != nil {
		return err
	}
	defer hub.Close()

	pipeline, err := hub.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	report := pipeline.ProcessAllSources(ctx)
	fmt.Fprintln(os.Stderr, pipeline.GenerateReport(report))

	docs := pipeline.PrepareForVectorDB(report)
	if len(docs) == 0 {
		return fmt.Errorf("no documents to upload")
	}

	result, err := hub.Client().Upsert(ctx, docs)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Uploaded %d/%d documents in %s\n", result.Successful, result.Total, result.Elapsed)
	if result.Failed > 0 {
		return fmt.Errorf("%d documents failed to upload", result.Failed)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: healthhub query <question>")
	}

	hub, err := openHub(ctx, c)
	if err != nil {
		return err
	}
	defer hub.Close()

	engine, err := hub.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}

	opts := []rag.QueryOption{rag.WithTopK(c.Int("top-k"))}
	if domain := c.String("domain"); domain != "" {
		opts = append(opts, rag.WithFilter(index.Metadata{"domain": domain}))
	}

	result, err := engine.Answer(ctx, question, opts...)
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	hub, err := openHub(ctx, c)
	if err != nil {
		return err
	}
	defer hub.Close()

	stats, err := hub.Client().Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	fmt.Printf("Dimension: %d\n", stats.Dimension)
	fmt.Printf("Total vectors: %d\n", stats.TotalVectorCount)
	for name, count := range stats.Namespaces {
		if name == "" {
			name = "(default)"
		}
		fmt.Printf("Namespace %s: %d\n", name, count)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub, err := openHub(ctx, c)
	if err != nil {
		return err
	}
	defer hub.Close()

	srv, err := hub.NewServer(
		server.WithRateLimit(c.Int("rate-limit"), c.Duration("rate-window")),
		server.WithAllowedOrigin(c.String("allow-origin")),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	return srv.ListenAndServe(ctx, c.String("addr"))
}

// openHub builds a hub from the shared store and AI flags. The data-dir
// flag is optional; commands without it keep the default source layout.
func openHub(ctx context.Context, c *cli.Context) (*healthhub.Hub, error) {
	aiOpts := []ai.ConfigOption{
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithTemperature(c.Float64("temperature")),
		ai.WithMaxTokens(c.Int("max-tokens")),
	}
	if key := c.String("api-key"); key != "" {
		aiOpts = append(aiOpts, ai.WithAPIKey(key))
	}
	aiConfig := ai.NewConfig(aiOpts...)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	storeCfg := healthhub.StoreConfig{
		LocalPath:         c.String("local-db"),
		PineconeAPIKey:    c.String("pinecone-api-key"),
		PineconeIndex:     c.String("pinecone-index"),
		PineconeNamespace: c.String("pinecone-namespace"),
	}

	opts := []healthhub.HubOption{healthhub.WithAIConfig(aiConfig)}
	if dataDir := c.String("data-dir"); dataDir != "" {
		opts = append(opts, healthhub.WithSources(source.DefaultSources(dataDir)))
	}

	hub, err := healthhub.NewHub(ctx, storeCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open hub: %w", err)
	}
	return hub, nil
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

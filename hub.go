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


package healthhub

import (
	"context"
	"log/slog"

	"github.com/poiesic/healthhub/ai"
	"github.com/poiesic/healthhub/ai/openai"
	"github.com/poiesic/healthhub/index"
	"github.com/poiesic/healthhub/index/badgerstore"
	"github.com/poiesic/healthhub/index/pinecone"
	"github.com/poiesic/healthhub/ingestion"
	"github.com/poiesic/healthhub/rag"
	"github.com/poiesic/healthhub/server"
	"github.com/poiesic/healthhub/source"
)

// StoreConfig selects and configures the vector store backend. When
// PineconeAPIKey is set the managed Pinecone index is used; otherwise a
// local badger store is opened at LocalPath.
type StoreConfig struct {
	LocalPath         string
	InMemory          bool
	PineconeAPIKey    string
	PineconeIndex     string
	PineconeNamespace string
}

// Hub wires the full system: sources, AI provider, vector index client,
// ingestion pipeline, and query engine.
type Hub struct {
	store    index.Store
	client   *index.Client
	provider ai.Provider
	sources  []source.Config
	logger   *slog.Logger
}

// HubOption configures a Hub.
type HubOption func(*hubOptions)

type hubOptions struct {
	aiConfig   *ai.Config
	sources    []source.Config
	clientOpts []index.ClientOption
}

// WithAIConfig overrides the default AI provider configuration.
func WithAIConfig(config *ai.Config) HubOption {
	return func(o *hubOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithSources overrides the canonical source set.
func WithSources(sources []source.Config) HubOption {
	return func(o *hubOptions) {
		o.sources = sources
	}
}

// WithClientOptions passes extra options to the index client.
func WithClientOptions(opts ...index.ClientOption) HubOption {
	return func(o *hubOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// NewHub opens the configured store, connects the AI provider, and
// returns a ready hub.
func NewHub(ctx context.Context, storeCfg StoreConfig, opts ...HubOption) (*Hub, error) {
	options := &hubOptions{
		aiConfig: ai.DefaultConfig(),
		sources:  source.DefaultSources(""),
	}
	for _, opt := range opts {
		opt(options)
	}

	var (
		store index.Store
		err   error
	)
	if storeCfg.PineconeAPIKey != "" {
		store, err = pinecone.New(ctx, pinecone.Config{
			APIKey:    storeCfg.PineconeAPIKey,
			IndexName: storeCfg.PineconeIndex,
			Namespace: storeCfg.PineconeNamespace,
		})
	} else {
		store, err = badgerstore.Open(storeCfg.LocalPath, storeCfg.InMemory)
	}
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		store.Close()
		return nil, err
	}

	client, err := index.NewClient(store, provider.Embedder(), options.clientOpts...)
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	return &Hub{
		store:    store,
		client:   client,
		provider: provider,
		sources:  options.sources,
		logger:   slog.Default(),
	}, nil
}

// Close shuts down the AI provider and the vector store.
func (h *Hub) Close() error {
	if err := h.provider.Close(); err != nil {
		h.logger.Error("error closing AI provider", "err", err)
	}
	if err := h.client.Close(); err != nil {
		h.logger.Error("error closing vector store", "err", err)
		return err
	}
	return nil
}

// Client returns the vector index client.
func (h *Hub) Client() *index.Client {
	return h.client
}

// Sources returns the configured data sources.
func (h *Hub) Sources() []source.Config {
	return h.sources
}

// NewIngestionPipeline creates a pipeline over the hub's sources.
func (h *Hub) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(h.sources, opts...)
}

// NewEngine creates a query engine over the hub's index and generator.
func (h *Hub) NewEngine(opts ...rag.Option) (*rag.Engine, error) {
	return rag.NewEngine(h.client, h.provider.Generator(), opts...)
}

// NewServer creates an HTTP server over the hub's components.
func (h *Hub) NewServer(opts ...server.Option) (*server.Server, error) {
	engine, err := h.NewEngine()
	if err != nil {
		return nil, err
	}
	pipeline, err := h.NewIngestionPipeline()
	if err != nil {
		return nil, err
	}
	return server.New(engine, h.client, pipeline, h.sources, opts...)
}

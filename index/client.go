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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/healthhub/ai"
	"github.com/poiesic/healthhub/core"
	"golang.org/x/time/rate"
)

const (
	// defaultBatchSize is the number of texts embedded and upserted per batch.
	defaultBatchSize = 100
	// defaultMaxRetries is the attempt budget per embedding batch.
	defaultMaxRetries = 3
	// defaultRetryBaseDelay doubles on each failed attempt.
	defaultRetryBaseDelay = 2 * time.Second
	// defaultPacingInterval is the minimum spacing between batches.
	defaultPacingInterval = 1 * time.Second
	// metadataTextLimit caps how much document text is stored in index
	// metadata for grounding retrieved answers.
	metadataTextLimit = 2000
)

// Client drives embedding and vector index operations. All document
// traffic to the index flows through a Client; it owns batching, retry,
// and pacing policy so stores stay simple.
type Client struct {
	store          Store
	embedder       ai.Embedder
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	pacingInterval time.Duration
	dimension      int
	clock          func() time.Time
	logger         *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithBatchSize sets how many texts are embedded per request.
func WithBatchSize(size int) ClientOption {
	return func(c *Client) error {
		if size < 1 {
			size = 1
		}
		c.batchSize = size
		return nil
	}
}

// WithMaxRetries sets the attempt budget per embedding batch.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) error {
		if n < 1 {
			n = 1
		}
		c.maxRetries = n
		return nil
	}
}

// WithRetryBaseDelay sets the first backoff delay.
func WithRetryBaseDelay(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			d = defaultRetryBaseDelay
		}
		c.retryBaseDelay = d
		return nil
	}
}

// WithPacingInterval sets the minimum spacing between embedding batches.
// Zero disables pacing.
func WithPacingInterval(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d < 0 {
			d = 0
		}
		c.pacingInterval = d
		return nil
	}
}

// WithDimension sets the vector width the client expects back from the
// embedder. Default is Dimension.
func WithDimension(n int) ClientOption {
	return func(c *Client) error {
		if n < 1 {
			n = Dimension
		}
		c.dimension = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "index-client")
		return nil
	}
}

// WithClock overrides the time source used for elapsed measurements.
// Intended for tests.
func WithClock(clock func() time.Time) ClientOption {
	return func(c *Client) error {
		if clock == nil {
			clock = time.Now
		}
		c.clock = clock
		return nil
	}
}

// NewClient creates a client over the given store and embedder.
func NewClient(store Store, embedder ai.Embedder, opts ...ClientOption) (*Client, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	c := &Client{
		store:          store,
		embedder:       embedder,
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		pacingInterval: defaultPacingInterval,
		dimension:      Dimension,
		clock:          time.Now,
		logger:         slog.Default().With("component", "index-client"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Embed generates embeddings for texts in configured batch sizes,
// preserving input order. Each batch gets its own retry budget with
// exponential backoff, and successive batches are paced to stay under
// provider rate limits. A batch that exhausts its retries fails the whole
// call; embeddings are all-or-nothing.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	limiter := rate.NewLimiter(rate.Every(c.pacingInterval), 1)
	if c.pacingInterval == 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	totalBatches := (len(texts) + c.batchSize - 1) / c.batchSize
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		end := min(start+c.batchSize, len(texts))
		batch := texts[start:end]
		batchNum := start/c.batchSize + 1

		var vectors [][]float32
		err := RetryWithBackoff(ctx, func() error {
			v, err := c.embedder.EmbedTexts(ctx, batch)
			if err != nil {
				return err
			}
			vectors = v
			return nil
		}, c.maxRetries, c.retryBaseDelay)
		if err != nil {
			c.logger.Error("embedding batch failed",
				"batch", batchNum, "batches", totalBatches, "err", err)
			return nil, fmt.Errorf("%w: batch %d/%d: %v", ErrEmbeddingFailed, batchNum, totalBatches, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: batch %d/%d returned %d vectors for %d texts",
				ErrEmbeddingFailed, batchNum, totalBatches, len(vectors), len(batch))
		}
		for _, v := range vectors {
			if len(v) != c.dimension {
				return nil, fmt.Errorf("%w: batch %d/%d returned a %d-dim vector, want %d",
					ErrDimensionMismatch, batchNum, totalBatches, len(v), c.dimension)
			}
		}

		c.logger.Debug("embedded batch", "batch", batchNum, "batches", totalBatches, "size", len(batch))
		out = append(out, vectors...)
	}

	return out, nil
}

// Upsert embeds documents and writes them to the store in batches.
// Embedding failure aborts the call; store failures are isolated per
// batch and tallied rather than propagated, so one bad batch never
// discards the rest of the upload.
func (c *Client) Upsert(ctx context.Context, docs []core.Document) (*UpsertResult, error) {
	if len(docs) == 0 {
		return &UpsertResult{}, nil
	}

	started := c.clock()

	texts := make([]string, len(docs))
	for i := range docs {
		if err := core.ValidateDocument(&docs[i]); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		texts[i] = docs[i].Text
	}

	vectors, err := c.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(docs))
	for i, doc := range docs {
		entries[i] = Entry{
			ID:       doc.ID,
			Vector:   vectors[i],
			Metadata: metadataFor(doc),
		}
	}

	result := &UpsertResult{Total: len(docs)}
	for start := 0; start < len(entries); start += c.batchSize {
		end := min(start+c.batchSize, len(entries))
		batch := entries[start:end]

		if err := c.store.Upsert(ctx, batch); err != nil {
			c.logger.Error("upsert batch failed", "from", start, "to", end, "err", err)
			result.Failed += len(batch)
			continue
		}
		result.Successful += len(batch)
	}

	result.Elapsed = c.clock().Sub(started)
	c.logger.Info("upsert complete",
		"total", result.Total,
		"successful", result.Successful,
		"failed", result.Failed,
		"elapsed", result.Elapsed)

	return result, nil
}

// Query embeds the text and returns the topK most similar entries,
// optionally restricted by a metadata filter.
func (c *Client) Query(ctx context.Context, text string, topK int, filter Metadata) ([]Match, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if topK < 1 {
		topK = 1
	}

	var vector []float32
	err := RetryWithBackoff(ctx, func() error {
		v, err := c.embedder.EmbedText(ctx, text)
		if err != nil {
			return err
		}
		vector = v
		return nil
	}, c.maxRetries, c.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrEmbeddingFailed, err)
	}
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("%w: query returned a %d-dim vector, want %d",
			ErrDimensionMismatch, len(vector), c.dimension)
	}

	return c.store.Query(ctx, vector, topK, filter)
}

// Stats reports the store's current contents.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	stats, err := c.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStatsFailed, err)
	}
	return stats, nil
}

// Close closes the underlying store.
func (c *Client) Close() error {
	return c.store.Close()
}

// metadataFor flattens document metadata for index storage. Text is
// truncated so index payloads stay bounded.
func metadataFor(doc core.Document) Metadata {
	text := doc.Text
	if len(text) > metadataTextLimit {
		text = text[:metadataTextLimit]
	}
	return Metadata{
		"source":              doc.Meta.Source,
		"domain":              string(doc.Meta.Domain),
		"source_type":         string(doc.Meta.SourceType),
		"data_classification": string(doc.Meta.Classification),
		"timestamp":           doc.Meta.Timestamp.Format(time.RFC3339),
		"text":                text,
	}
}

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


package pinecone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"github.com/poiesic/healthhub/index"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrAPIKeyRequired is returned when no API key is configured.
	ErrAPIKeyRequired = errors.New("pinecone api key required")

	// ErrIndexNameRequired is returned when no index name is configured.
	ErrIndexNameRequired = errors.New("pinecone index name required")
)

// Config holds connection settings for a Pinecone index.
type Config struct {
	APIKey    string
	IndexName string
	Namespace string
}

// Store implements index.Store on a Pinecone serverless index.
type Store struct {
	conn   *pinecone.IndexConnection
	logger *slog.Logger
}

var _ index.Store = (*Store)(nil)

// New connects to the named Pinecone index and returns a store bound to
// its namespace.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.IndexName == "" {
		return nil, ErrIndexNameRequired
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating pinecone client: %w", err)
	}

	idx, err := client.DescribeIndex(ctx, cfg.IndexName)
	if err != nil {
		return nil, fmt.Errorf("describing index %q: %w", cfg.IndexName, err)
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      idx.Host,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to index %q: %w", cfg.IndexName, err)
	}

	return &Store{
		conn:   conn,
		logger: slog.Default().With("component", "pinecone-store", "index", cfg.IndexName),
	}, nil
}

// Upsert writes one batch of entries.
func (s *Store) Upsert(ctx context.Context, entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	vectors := make([]*pinecone.Vector, len(entries))
	for i, entry := range entries {
		metadata, err := metadataStruct(entry.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %q: %w", entry.ID, err)
		}
		values := entry.Vector
		vectors[i] = &pinecone.Vector{
			Id:       entry.ID,
			Values:   &values,
			Metadata: metadata,
		}
	}

	count, err := s.conn.UpsertVectors(ctx, vectors)
	if err != nil {
		return fmt.Errorf("upserting %d vectors: %w", len(vectors), err)
	}

	s.logger.Debug("upserted vectors", "count", count)
	return nil
}

// Query returns the topK nearest entries, optionally filtered. Filter
// pairs become implicit equality conditions on metadata.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter index.Metadata) ([]index.Match, error) {
	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	}

	if len(filter) > 0 {
		metadataFilter, err := metadataStruct(filter)
		if err != nil {
			return nil, fmt.Errorf("encoding filter: %w", err)
		}
		req.MetadataFilter = metadataFilter
	}

	res, err := s.conn.QueryByVectorValues(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	matches := make([]index.Match, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m.Vector == nil {
			continue
		}
		matches = append(matches, index.Match{
			ID:       m.Vector.Id,
			Score:    m.Score,
			Metadata: metadataFromStruct(m.Vector.Metadata),
		})
	}
	return matches, nil
}

// Stats reports index-wide vector counts per namespace.
func (s *Store) Stats(ctx context.Context) (*index.Stats, error) {
	res, err := s.conn.DescribeIndexStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("describing index stats: %w", err)
	}

	stats := &index.Stats{
		TotalVectorCount: int(res.TotalVectorCount),
		Namespaces:       make(map[string]int, len(res.Namespaces)),
	}
	if res.Dimension != nil {
		stats.Dimension = int(*res.Dimension)
	}
	for name, summary := range res.Namespaces {
		if summary != nil {
			stats.Namespaces[name] = int(summary.VectorCount)
		}
	}
	return stats, nil
}

// Close releases the index connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// metadataStruct converts flat string metadata to the protobuf struct the
// Pinecone API expects.
func metadataStruct(metadata index.Metadata) (*structpb.Struct, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	fields := make(map[string]any, len(metadata))
	for k, v := range metadata {
		fields[k] = v
	}
	return structpb.NewStruct(fields)
}

// metadataFromStruct flattens returned metadata back to strings.
func metadataFromStruct(s *structpb.Struct) index.Metadata {
	if s == nil {
		return nil
	}
	metadata := make(index.Metadata, len(s.Fields))
	for k, v := range s.Fields {
		metadata[k] = v.GetStringValue()
	}
	return metadata
}

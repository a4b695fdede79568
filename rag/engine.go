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


package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/healthhub/ai"
	"github.com/poiesic/healthhub/index"
	"github.com/poiesic/healthhub/taxonomy"
)

// defaultTopK is the number of documents retrieved per question when the
// caller does not override it.
const defaultTopK = 10

// Engine answers questions grounded in documents retrieved from the
// vector index.
type Engine struct {
	client    *index.Client
	generator ai.Generator
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a retrieval engine over the given index client and
// generator.
func NewEngine(client *index.Client, generator ai.Generator, opts ...Option) (*Engine, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	e := &Engine{
		client:    client,
		generator: generator,
		logger:    slog.Default().With("component", "rag"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// queryConfig collects per-question settings.
type queryConfig struct {
	topK   int
	filter index.Metadata
}

// QueryOption adjusts a single Answer call.
type QueryOption func(*queryConfig)

// WithTopK sets how many documents to retrieve. Values below 1 fall back
// to the default.
func WithTopK(topK int) QueryOption {
	return func(c *queryConfig) {
		if topK > 0 {
			c.topK = topK
		}
	}
}

// WithFilter restricts retrieval to vectors whose metadata matches every
// given pair.
func WithFilter(filter index.Metadata) QueryOption {
	return func(c *queryConfig) {
		c.filter = filter
	}
}

// Source describes one retrieved document that informed an answer.
type Source struct {
	ID     string  `json:"id"`
	Score  float32 `json:"score"`
	Domain string  `json:"domain"`
	Origin string  `json:"origin"`
}

// Result is a grounded answer with its supporting sources.
type Result struct {
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	Sources         []Source `json:"sources"`
	DomainsSearched []string `json:"domains_searched"`
}

// Answer retrieves documents relevant to the question and generates a
// grounded answer citing them. The detected domain hint is diagnostic
// only; retrieval is never narrowed by it. DomainsSearched reflects an
// explicit domain filter and stays empty otherwise.
func (e *Engine) Answer(ctx context.Context, question string, opts ...QueryOption) (*Result, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	cfg := queryConfig{topK: defaultTopK}
	for _, opt := range opts {
		opt(&cfg)
	}

	hint, hits := taxonomy.DetectDomain(question)
	e.logger.Debug("detected domain hint", "domain", hint, "keyword_hits", hits)

	matches, err := e.client.Query(ctx, question, cfg.topK, cfg.filter)
	if err != nil {
		e.logger.Error("retrieval failed", "err", err)
		return nil, fmt.Errorf("%w: retrieving documents: %v", ErrQueryFailed, err)
	}

	answer, err := e.generator.Generate(ctx, systemPrompt, userPrompt(question, matches))
	if err != nil {
		e.logger.Error("generation failed", "err", err)
		return nil, fmt.Errorf("%w: generating answer: %v", ErrQueryFailed, err)
	}

	sources := make([]Source, len(matches))
	for i, match := range matches {
		sources[i] = Source{
			ID:     match.ID,
			Score:  match.Score,
			Domain: match.Metadata["domain"],
			Origin: match.Metadata["source"],
		}
	}

	result := &Result{
		Question:        question,
		Answer:          withCitations(answer, sources),
		Sources:         sources,
		DomainsSearched: []string{},
	}
	if domain, ok := cfg.filter["domain"]; ok && domain != "" {
		result.DomainsSearched = []string{domain}
	}
	return result, nil
}

// userPrompt combines the retrieved context with the question.
func userPrompt(question string, matches []index.Match) string {
	var b strings.Builder
	b.WriteString("Retrieved documents:\n\n")
	b.WriteString(formatContext(matches))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// withCitations appends a source appendix unless the generator already
// produced one.
func withCitations(answer string, sources []Source) string {
	if len(sources) == 0 || strings.Contains(answer, "Sources:") {
		return answer
	}

	var b strings.Builder
	b.WriteString(answer)
	b.WriteString("\n\nSources:\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] %s (%s)\n", i+1, src.ID, src.Domain)
	}
	return strings.TrimRight(b.String(), "\n")
}

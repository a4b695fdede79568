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


package ingestion

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/healthhub/source"
	"github.com/poiesic/healthhub/taxonomy"
	"github.com/poiesic/healthhub/validate"
)

// taggingSampleLimit caps how much loaded content is fed to the domain
// classifier. A sample is enough; full documents only slow matching down.
const taggingSampleLimit = 1000

// Pipeline runs the load, validate, and tag stages over a configured set
// of data sources.
type Pipeline struct {
	sources []source.Config
	tagger  *taxonomy.Tagger
	loader  func(source.Config) (*source.ParsedSource, error)
	clock   func() time.Time
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "ingestion-pipeline")
		return nil
	}
}

// WithClock overrides the time source used for report timestamps and
// document metadata. Intended for tests.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) error {
		if clock == nil {
			clock = time.Now
		}
		p.clock = clock
		return nil
	}
}

// WithLoader replaces the file loader. Intended for tests that feed
// in-memory sources.
func WithLoader(loader func(source.Config) (*source.ParsedSource, error)) Option {
	return func(p *Pipeline) error {
		if loader == nil {
			loader = source.Load
		}
		p.loader = loader
		return nil
	}
}

// NewPipeline creates a pipeline over the given source configurations.
func NewPipeline(sources []source.Config, opts ...Option) (*Pipeline, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	p := &Pipeline{
		sources: sources,
		loader:  source.Load,
		clock:   time.Now,
		logger:  slog.Default().With("component", "ingestion-pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	tagger, err := taxonomy.NewTagger(
		taxonomy.WithLogger(p.logger),
		taxonomy.WithClock(p.clock),
	)
	if err != nil {
		return nil, err
	}
	p.tagger = tagger

	return p, nil
}

// ProcessAllSources runs every configured source through the
// load-validate-tag sequence. Failures are recorded per source and never
// abort the run; a canceled context stops processing early with whatever
// results were already collected.
func (p *Pipeline) ProcessAllSources(ctx context.Context) *Report {
	report := &Report{GeneratedAt: p.clock().UTC()}

	for _, cfg := range p.sources {
		if ctx.Err() != nil {
			p.logger.Warn("ingestion interrupted", "err", ctx.Err(),
				"processed", len(report.Sources), "configured", len(p.sources))
			break
		}
		report.Sources = append(report.Sources, p.processSource(cfg))
	}

	report.Summary = summarize(report.Sources)
	p.logger.Info("ingestion complete",
		"total", report.Summary.Total,
		"successful", report.Summary.Successful,
		"failed", report.Summary.Failed,
		"quality", report.Summary.QualityScore)

	return report
}

// processSource runs one source through load, validate, and tag. Any
// stage failure marks the source failed and records every error found.
func (p *Pipeline) processSource(cfg source.Config) *SourceResult {
	result := &SourceResult{Filepath: cfg.Filepath, Status: StatusFailed}

	parsed, err := p.loader(cfg)
	if err != nil {
		p.logger.Warn("source load failed", "path", cfg.Filepath, "err", err)
		result.Errors = []string{err.Error()}
		return result
	}

	if errs := validateParsed(parsed, cfg); len(errs) > 0 {
		p.logger.Warn("source validation failed", "path", cfg.Filepath, "errors", len(errs))
		result.Errors = errs
		return result
	}

	tags, err := p.tagger.TagDocument(taggingSample(parsed), cfg.Filepath)
	if err != nil {
		result.Errors = []string{err.Error()}
		return result
	}

	result.Status = StatusSuccess
	result.Parsed = parsed
	result.Tags = tags

	p.logger.Debug("source processed",
		"path", cfg.Filepath,
		"domain", tags.Domain,
		"classification", tags.Classification)

	return result
}

// validateParsed applies the structural checks appropriate to the
// source's shape.
func validateParsed(parsed *source.ParsedSource, cfg source.Config) []string {
	switch parsed.Kind {
	case source.KindTable:
		return validate.Table(parsed.Table, cfg.RequiredColumns).Errors
	case source.KindItems:
		return validate.Keyed(parsed.Items, cfg.RequiredKeys).Errors
	case source.KindFeed:
		if len(parsed.Feed) == 0 {
			return []string{"Feed contains no entries"}
		}
		return nil
	default:
		return []string{"unrecognized source kind"}
	}
}

// taggingSample extracts a representative text sample for domain
// classification.
func taggingSample(parsed *source.ParsedSource) string {
	var b strings.Builder

	switch parsed.Kind {
	case source.KindTable:
		b.WriteString(strings.Join(parsed.Table.Columns, " "))
		for i, row := range parsed.Table.Rows {
			if i >= 5 {
				break
			}
			b.WriteString(" ")
			b.WriteString(strings.Join(row, " "))
		}
	case source.KindItems:
		raw, err := json.Marshal(parsed.Items)
		if err == nil {
			b.Write(raw)
		}
	case source.KindFeed:
		for i, entry := range parsed.Feed {
			if i >= 5 {
				break
			}
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(entry.Title)
			b.WriteString(" ")
			b.WriteString(entry.Description)
			b.WriteString(" ")
			b.WriteString(entry.Category)
		}
	}

	sample := b.String()
	if len(sample) > taggingSampleLimit {
		sample = sample[:taggingSampleLimit]
	}
	return sample
}

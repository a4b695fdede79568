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


package taxonomy

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/healthhub/core"
)

// Tagger classifies raw content into the healthcare taxonomy and derives
// provenance metadata from the source path.
type Tagger struct {
	clock  func() time.Time
	logger *slog.Logger
}

// Option configures a Tagger.
type Option func(*Tagger) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tagger) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger.With("component", "taxonomy-tagger")
		return nil
	}
}

// WithClock overrides the time source used for TaggedAt timestamps.
// Intended for tests that need deterministic metadata.
func WithClock(clock func() time.Time) Option {
	return func(t *Tagger) error {
		if clock == nil {
			clock = time.Now
		}
		t.clock = clock
		return nil
	}
}

// NewTagger creates a tagger with the default time source and logger.
func NewTagger(opts ...Option) (*Tagger, error) {
	t := &Tagger{
		clock:  time.Now,
		logger: slog.Default().With("component", "taxonomy-tagger"),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// TagDocument classifies content and derives the full metadata record for
// the source at sourcePath.
//
// Derivation rules:
//   - Domain comes from keyword detection over the content.
//   - SourceType is internal when the path contains an "internal/"
//     segment, external otherwise.
//   - SourceSystem is the path's base name without extension.
//   - Classification follows the domain's PII rule.
//
// The same content and path always produce the same tags apart from the
// TaggedAt timestamp.
func (t *Tagger) TagDocument(content, sourcePath string) (*core.TagMetadata, error) {
	if strings.TrimSpace(sourcePath) == "" || strings.ContainsAny(sourcePath, "\n\r") {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFilepath, sourcePath)
	}

	domain, matches := DetectDomain(content)

	sourceType := core.SourceTypeExternal
	if strings.Contains(sourcePath, "internal/") {
		sourceType = core.SourceTypeInternal
	}

	base := filepath.Base(sourcePath)
	sourceSystem := strings.TrimSuffix(base, filepath.Ext(base))

	tags := &core.TagMetadata{
		Domain:         domain,
		SourceType:     sourceType,
		SourceSystem:   sourceSystem,
		Classification: core.ClassificationFor(domain),
		TaggedAt:       t.clock().UTC(),
		Filepath:       sourcePath,
	}

	t.logger.Debug("tagged document",
		"path", sourcePath,
		"domain", domain,
		"matches", matches,
		"classification", tags.Classification)

	return tags, nil
}

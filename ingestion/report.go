package ingestion

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/healthhub/core"
	"github.com/poiesic/healthhub/source"
)

// SourceStatus is the terminal state of one source in a pipeline run.
type SourceStatus string

const (
	// StatusSuccess means the source loaded, validated, and tagged cleanly.
	StatusSuccess SourceStatus = "success"
	// StatusFailed means at least one stage rejected the source.
	StatusFailed SourceStatus = "failed"
)

// SourceResult records the outcome for a single source. Parsed and Tags
// are populated only on success; Errors only on failure.
type SourceResult struct {
	Filepath string
	Status   SourceStatus
	Parsed   *source.ParsedSource
	Tags     *core.TagMetadata
	Errors   []string
}

// Summary aggregates a run. QualityScore is the percentage of sources
// that processed successfully.
type Summary struct {
	Total        int
	Successful   int
	Failed       int
	QualityScore float64
}

// Report is the full outcome of one pipeline run.
type Report struct {
	GeneratedAt time.Time
	Sources     []*SourceResult
	Summary     Summary
}

func summarize(results []*SourceResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Status == StatusSuccess {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.QualityScore = 100 * float64(s.Successful) / float64(s.Total)
	}
	return s
}

// GenerateReport renders a run report as human-readable text: overall
// quality, per-source status with error details, and domain, source-type,
// and classification breakdowns over the successful sources.
func (p *Pipeline) GenerateReport(report *Report) string {
	if report == nil {
		return ""
	}

	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString("HEALTHCARE DATA INGESTION REPORT\n")
	b.WriteString("Generated: " + report.GeneratedAt.Format(time.RFC3339) + "\n")
	b.WriteString(rule + "\n\n")

	b.WriteString("SUMMARY\n")
	fmt.Fprintf(&b, "  Total sources: %d\n", report.Summary.Total)
	fmt.Fprintf(&b, "  Successful:    %d\n", report.Summary.Successful)
	fmt.Fprintf(&b, "  Failed:        %d\n", report.Summary.Failed)
	fmt.Fprintf(&b, "  Quality score: %.1f%%\n\n", report.Summary.QualityScore)

	b.WriteString("SOURCES\n")
	for _, r := range report.Sources {
		if r.Status == StatusSuccess {
			fmt.Fprintf(&b, "  ✓ %s [%s/%s/%s]\n",
				r.Filepath, r.Tags.Domain, r.Tags.SourceType, r.Tags.Classification)
		} else {
			fmt.Fprintf(&b, "  ✗ %s\n", r.Filepath)
			for _, e := range r.Errors {
				fmt.Fprintf(&b, "      - %s\n", e)
			}
		}
	}

	byDomain := make(map[string]int)
	bySourceType := make(map[string]int)
	byClassification := make(map[string]int)
	for _, r := range report.Sources {
		if r.Status != StatusSuccess {
			continue
		}
		byDomain[string(r.Tags.Domain)]++
		bySourceType[string(r.Tags.SourceType)]++
		byClassification[string(r.Tags.Classification)]++
	}

	b.WriteString("\nBREAKDOWN BY DOMAIN\n")
	writeBreakdown(&b, byDomain)

	b.WriteString("\nBREAKDOWN BY SOURCE TYPE\n")
	writeBreakdown(&b, bySourceType)

	b.WriteString("\nBREAKDOWN BY CLASSIFICATION\n")
	writeBreakdown(&b, byClassification)

	return b.String()
}

// writeBreakdown renders counts sorted by key so report output is stable.
func writeBreakdown(b *strings.Builder, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %d\n", k, counts[k])
	}
}

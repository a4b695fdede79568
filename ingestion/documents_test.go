package ingestion

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/healthhub/core"
	"github.com/poiesic/healthhub/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successReport(t *testing.T, path string, parsed *source.ParsedSource, cfg source.Config) (*Pipeline, *Report) {
	t.Helper()
	loader := &memoryLoader{parsed: map[string]*source.ParsedSource{path: parsed}}
	cfg.Filepath = path
	p := newTestPipeline(t, loader, []source.Config{cfg})
	return p, p.ProcessAllSources(context.Background())
}

func TestPrepareForVectorDBTableRoundTrip(t *testing.T) {
	p, report := successReport(t, "data/internal/member_eligibility.csv", eligibilityTable(),
		source.Config{Format: source.FormatTable})

	docs := p.PrepareForVectorDB(report)
	require.Len(t, docs, 2)

	// Row IDs are one-based.
	assert.Equal(t, "member_eligibility_1", docs[0].ID)
	assert.Equal(t, "member_id: WHP100001. status: active. plan_type: Gold PPO", docs[0].Text)
	assert.Equal(t, "member_eligibility_2", docs[1].ID)

	// Metadata carries the source path plus the tagged taxonomy, stamped
	// at conversion time.
	assert.Equal(t, "data/internal/member_eligibility.csv", docs[0].Meta.Source)
	assert.Equal(t, core.DomainEligibility, docs[0].Meta.Domain)
	assert.Equal(t, core.SourceTypeInternal, docs[0].Meta.SourceType)
	assert.Equal(t, core.ClassificationPII, docs[0].Meta.Classification)
	assert.Equal(t, fixedTime, docs[0].Meta.Timestamp)
}

func TestPrepareForVectorDBKeyedItems(t *testing.T) {
	p, report := successReport(t, "data/internal/claims_history.json", claimsItems(),
		source.Config{Format: source.FormatKeyed, RequiredKeys: []string{"claims"}})

	docs := p.PrepareForVectorDB(report)
	require.Len(t, docs, 2)

	// Natural claim_id keys become document IDs.
	assert.Equal(t, "claims_history_CLM001", docs[0].ID)
	assert.Equal(t, "claims_history_CLM002", docs[1].ID)

	// Field names are humanized and integers render without decimals.
	assert.Contains(t, docs[0].Text, "Claim Id: CLM001")
	assert.Contains(t, docs[0].Text, "Billed Amount: 250")
	assert.Contains(t, docs[0].Text, "Cpt Code: 99213")
	assert.Contains(t, docs[1].Text, "Billed Amount: 125.5")
}

func TestPrepareForVectorDBKeyedWithoutList(t *testing.T) {
	parsed := &source.ParsedSource{
		Kind:  source.KindItems,
		Items: map[string]any{"summary": "plan coverage details", "copay": 20.0},
	}
	p, report := successReport(t, "data/internal/benefits_notes.json", parsed,
		source.Config{Format: source.FormatKeyed})

	docs := p.PrepareForVectorDB(report)
	require.Len(t, docs, 1)
	assert.Equal(t, "benefits_notes_1", docs[0].ID)
	assert.Contains(t, docs[0].Text, "plan coverage details")
}

func TestPrepareForVectorDBKeyedRunningCount(t *testing.T) {
	parsed := &source.ParsedSource{
		Kind: source.KindItems,
		Items: map[string]any{
			"records": []any{
				map[string]any{"note": "no identifier here"},
				"bare string record",
			},
		},
	}
	loader := &memoryLoader{parsed: map[string]*source.ParsedSource{
		"data/internal/member_eligibility.csv": eligibilityTable(),
		"data/internal/care_notes.json":        parsed,
	}}
	sources := []source.Config{
		{Filepath: "data/internal/member_eligibility.csv", Format: source.FormatTable},
		{Filepath: "data/internal/care_notes.json", Format: source.FormatKeyed},
	}
	p := newTestPipeline(t, loader, sources)
	report := p.ProcessAllSources(context.Background())

	docs := p.PrepareForVectorDB(report)
	require.Len(t, docs, 4)

	// Synthetic keyed IDs continue the batch-wide count after the two
	// table rows.
	assert.Equal(t, "care_notes_3", docs[2].ID)
	assert.Equal(t, "care_notes_4", docs[3].ID)
	assert.Equal(t, "bare string record", docs[3].Text)
}

func TestPrepareForVectorDBFeed(t *testing.T) {
	p, report := successReport(t, "data/external/cms_policy_updates.xml", policyFeed(),
		source.Config{Format: source.FormatFeed})

	docs := p.PrepareForVectorDB(report)
	require.Len(t, docs, 1)

	// Entry IDs come from the sanitized title.
	assert.Equal(t, "cms_policy_updates_CMS_prior_authorization_policy", docs[0].ID)
	assert.Contains(t, docs[0].Text, "Title: CMS prior authorization policy")
	assert.Contains(t, docs[0].Text, "Category: regulation")
	assert.Equal(t, core.DomainCompliance, docs[0].Meta.Domain)
}

func TestSanitizeDocID(t *testing.T) {
	assert.Equal(t, "CMS_prior_authorization_policy", sanitizeDocID("CMS prior authorization policy"))
	assert.Equal(t, "Q4-2025_rates__final_", sanitizeDocID("Q4-2025 rates (final)"))
	assert.Equal(t, "", sanitizeDocID(""))
	assert.Len(t, []rune(sanitizeDocID(strings.Repeat("x", 80))), 50)
}

func TestFeedUntitledEntriesUseIndex(t *testing.T) {
	parsed := &source.ParsedSource{
		Kind: source.KindFeed,
		Feed: []source.FeedEntry{
			{Description: "unlabeled bulletin"},
			{Description: "another bulletin"},
		},
	}
	p, report := successReport(t, "data/external/cms_policy_updates.xml", parsed,
		source.Config{Format: source.FormatFeed})

	docs := p.PrepareForVectorDB(report)
	require.Len(t, docs, 2)
	assert.Equal(t, "cms_policy_updates_1", docs[0].ID)
	assert.Equal(t, "cms_policy_updates_2", docs[1].ID)
}

func TestPrepareForVectorDBDuplicateIDs(t *testing.T) {
	parsed := &source.ParsedSource{
		Kind: source.KindItems,
		Items: map[string]any{
			"drugs": []any{
				map[string]any{"drug_name": "Metformin", "tier": 1.0},
				map[string]any{"drug_name": "Metformin", "tier": 2.0},
				map[string]any{"drug_name": "Metformin", "tier": 3.0},
			},
		},
	}
	p, report := successReport(t, "data/external/fda_drug_database.json", parsed,
		source.Config{Format: source.FormatKeyed, RequiredKeys: []string{"drugs"}})

	docs := p.PrepareForVectorDB(report)
	require.Len(t, docs, 3)

	ids := map[string]bool{}
	for _, d := range docs {
		assert.False(t, ids[d.ID], "duplicate id %s", d.ID)
		ids[d.ID] = true
	}
	assert.Equal(t, "fda_drug_database_Metformin", docs[0].ID)
	assert.Equal(t, "fda_drug_database_Metformin_1", docs[1].ID)
	assert.Equal(t, "fda_drug_database_Metformin_2", docs[2].ID)
}

func TestPrepareForVectorDBSkipsFailedSources(t *testing.T) {
	loader := &memoryLoader{
		parsed: map[string]*source.ParsedSource{
			"good.csv": eligibilityTable(),
		},
	}
	sources := []source.Config{
		{Filepath: "good.csv", Format: source.FormatTable},
		{Filepath: "missing.csv", Format: source.FormatTable},
	}
	p := newTestPipeline(t, loader, sources)
	report := p.ProcessAllSources(context.Background())

	docs := p.PrepareForVectorDB(report)
	assert.Len(t, docs, 2) // only the good table's rows

	assert.Empty(t, p.PrepareForVectorDB(nil))
}

func TestHumanizeKey(t *testing.T) {
	assert.Equal(t, "Billed Amount", humanizeKey("billed_amount"))
	assert.Equal(t, "Npi", humanizeKey("npi"))
	assert.Equal(t, "Drug Name", humanizeKey("drug_name"))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "a, b", formatValue([]any{"a", "b"}))
	assert.Equal(t, "3", formatValue(3.0))
	assert.Equal(t, "2.5", formatValue(2.5))
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "true", formatValue(true))
}

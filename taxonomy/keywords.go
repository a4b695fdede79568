package taxonomy

import (
	"regexp"
	"strings"

	"github.com/poiesic/healthhub/core"
)

// domainKeywords binds a domain to the terms that signal it.
// The slice order below is the tie-break order: when two domains score
// the same keyword count, the one listed first wins.
type domainKeywords struct {
	domain   core.Domain
	keywords []string
}

var keywordTable = []domainKeywords{
	{core.DomainEligibility, []string{
		"member_id", "member", "active", "inactive", "status",
		"plan_type", "effective_date",
	}},
	{core.DomainClaims, []string{
		"claim_id", "claim", "cpt_code", "diagnosis", "billed_amount",
		"provider_npi", "adjudication",
	}},
	{core.DomainBenefits, []string{
		"copay", "coinsurance", "deductible", "prior_auth",
		"out_of_pocket", "coverage",
	}},
	{core.DomainPharmacy, []string{
		"drug", "medication", "prescription", "formulary", "tier", "fda",
	}},
	{core.DomainCompliance, []string{
		"cms", "policy", "regulation", "requirement", "mandate", "standard",
	}},
	{core.DomainProviders, []string{
		"provider", "npi", "specialty", "network", "quality_rating",
		"accepting_patients",
	}},
}

// keywordPatterns holds one compiled whole-word pattern per keyword,
// indexed in parallel with keywordTable. Compiled once at init since the
// taxonomy is fixed.
var keywordPatterns = compilePatterns()

func compilePatterns() [][]*regexp.Regexp {
	patterns := make([][]*regexp.Regexp, len(keywordTable))
	for i, dk := range keywordTable {
		patterns[i] = make([]*regexp.Regexp, len(dk.keywords))
		for j, kw := range dk.keywords {
			patterns[i][j] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return patterns
}

// DetectDomain scores content against every domain's keyword list and
// returns the best-scoring domain along with its match count. Matching is
// case insensitive and counts every whole-word occurrence, so repeated
// terms weigh more. Empty content and content with no matches both return
// (DomainUnknown, 0).
func DetectDomain(content string) (core.Domain, int) {
	if content == "" {
		return core.DomainUnknown, 0
	}

	lowered := strings.ToLower(content)

	best := core.DomainUnknown
	bestCount := 0
	for i := range keywordTable {
		count := 0
		for _, pattern := range keywordPatterns[i] {
			count += len(pattern.FindAllStringIndex(lowered, -1))
		}
		// Strict > keeps the first-listed domain on ties.
		if count > bestCount {
			best = keywordTable[i].domain
			bestCount = count
		}
	}

	return best, bestCount
}

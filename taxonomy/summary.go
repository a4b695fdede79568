package taxonomy

import "github.com/poiesic/healthhub/core"

// Summary aggregates tagging results across a set of sources.
type Summary struct {
	TotalSources     int
	ByDomain         map[core.Domain]int
	BySourceType     map[core.SourceType]int
	ByClassification map[core.Classification]int
}

// Summarize builds aggregate counts from a batch of tag records.
// Nil entries are skipped. An empty batch yields zeroed, non-nil maps.
func Summarize(tags []*core.TagMetadata) *Summary {
	s := &Summary{
		ByDomain:         make(map[core.Domain]int),
		BySourceType:     make(map[core.SourceType]int),
		ByClassification: make(map[core.Classification]int),
	}

	for _, tag := range tags {
		if tag == nil {
			continue
		}
		s.TotalSources++
		s.ByDomain[tag.Domain]++
		s.BySourceType[tag.SourceType]++
		s.ByClassification[tag.Classification]++
	}

	return s
}

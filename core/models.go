package core

import "time"

// Domain identifies the healthcare business domain a piece of content
// belongs to. Domains drive data classification and retrieval filtering.
type Domain string

const (
	// DomainEligibility covers member enrollment and coverage status data.
	DomainEligibility Domain = "eligibility"
	// DomainClaims covers claim submissions and adjudication data.
	DomainClaims Domain = "claims"
	// DomainBenefits covers plan design data such as copays and deductibles.
	DomainBenefits Domain = "benefits"
	// DomainPharmacy covers drug and formulary data.
	DomainPharmacy Domain = "pharmacy"
	// DomainCompliance covers regulatory policy and mandate data.
	DomainCompliance Domain = "compliance"
	// DomainProviders covers provider directory and network data.
	DomainProviders Domain = "providers"
	// DomainUnknown is assigned when no domain keyword matches.
	DomainUnknown Domain = "unknown"
)

// Domains lists the known business domains in canonical order.
// DomainUnknown is intentionally excluded.
func Domains() []Domain {
	return []Domain{
		DomainEligibility,
		DomainClaims,
		DomainBenefits,
		DomainPharmacy,
		DomainCompliance,
		DomainProviders,
	}
}

// ContainsPII reports whether content in this domain carries personally
// identifiable information. Eligibility and claims data always do; every
// other domain, including unknown, is treated as public.
func (d Domain) ContainsPII() bool {
	return d == DomainEligibility || d == DomainClaims
}

// SourceType distinguishes data produced inside the organization from
// data pulled from external publishers.
type SourceType string

const (
	// SourceTypeInternal marks data originating from internal systems.
	SourceTypeInternal SourceType = "internal"
	// SourceTypeExternal marks data from outside publishers (CMS, FDA, etc).
	SourceTypeExternal SourceType = "external"
)

// Classification is the data sensitivity label attached to tagged content.
type Classification string

const (
	// ClassificationPII marks content containing member-identifying data.
	ClassificationPII Classification = "PII"
	// ClassificationPublic marks content safe for unrestricted handling.
	ClassificationPublic Classification = "public"
)

// ClassificationFor maps a domain to its data classification.
// The mapping is total: every domain value gets a label.
func ClassificationFor(d Domain) Classification {
	if d.ContainsPII() {
		return ClassificationPII
	}
	return ClassificationPublic
}

// TagMetadata is the full classification record produced for a data source.
type TagMetadata struct {
	Domain         Domain
	SourceType     SourceType
	SourceSystem   string // source filename without extension
	Classification Classification
	TaggedAt       time.Time
	Filepath       string
}

// DocumentMeta carries the provenance and classification attached to an
// indexed document. It travels with the document into the vector index.
type DocumentMeta struct {
	Source         string
	Domain         Domain
	SourceType     SourceType
	Classification Classification
	Timestamp      time.Time
}

// Document is a single indexable unit of text with its metadata.
// IDs are unique within one pipeline run.
type Document struct {
	ID   string
	Text string
	Meta DocumentMeta
}

// Package taxonomy classifies healthcare content into business domains
// using keyword-based scoring, and derives source metadata (source type,
// source system, data classification) from file paths.
//
// Classification is deterministic: the same content always maps to the
// same domain, and PII labeling follows strictly from the domain.
package taxonomy

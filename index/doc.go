// Package index manages the vector index: embedding document batches,
// uploading them to a Store implementation, and running filtered
// similarity queries.
//
// The Client is intentionally sequential. Embedding batches are paced and
// retried one at a time, which keeps ordering deterministic and stays
// friendly to provider rate limits.
package index

package index

import "time"

// Dimension is the embedding width every entry in the index must have.
// It matches the text-embedding-ada-002 output size.
const Dimension = 1536

// Metadata is the flat string map stored alongside each vector. Keys used
// by the pipeline: source, domain, source_type, data_classification,
// timestamp, text.
type Metadata map[string]string

// Entry is one vector plus its metadata, keyed by document ID.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Match is one retrieval hit, scored by similarity to the query vector.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Stats summarizes index contents.
type Stats struct {
	Dimension        int            `json:"dimension"`
	TotalVectorCount int            `json:"total_vector_count"`
	Namespaces       map[string]int `json:"namespaces"`
}

// UpsertResult reports the outcome of an upload run. Batches fail
// independently, so Successful and Failed always sum to Total.
type UpsertResult struct {
	Total      int
	Successful int
	Failed     int
	Elapsed    time.Duration
}

package index

import "context"

// Store is the vector index abstraction the client drives. Production
// runs use the Pinecone-backed store; local and test runs use the
// Badger-backed one.
//
// Implementations must treat Upsert as an overwrite on ID collision and
// must return matches from Query in descending score order.
type Store interface {
	// Upsert writes one batch of entries. The batch either fully
	// succeeds or returns an error; partial writes within a batch are
	// the implementation's responsibility to avoid.
	Upsert(ctx context.Context, entries []Entry) error

	// Query returns up to topK entries most similar to the vector.
	// A non-empty filter restricts matches to entries whose metadata
	// contains every filter pair exactly.
	Query(ctx context.Context, vector []float32, topK int, filter Metadata) ([]Match, error)

	// Stats reports the current index contents.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases the store's resources.
	Close() error
}

package badgerstore

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/poiesic/healthhub/index"
)

// Serializers for the stored entry layout: id, vector, metadata, in that
// order. The layout is append-only; new fields go at the end.
var (
	vectorSer   = ord.NewSliceSer[float32](raw.Float32)
	metadataSer = ord.NewMapSer[string, string](ord.String, ord.String)
)

// marshalEntry serializes an entry for storage.
func marshalEntry(entry *index.Entry) []byte {
	size := ord.String.Size(entry.ID) +
		vectorSer.Size(entry.Vector) +
		metadataSer.Size(map[string]string(entry.Metadata))

	bs := make([]byte, size)
	n := ord.String.Marshal(entry.ID, bs)
	n += vectorSer.Marshal(entry.Vector, bs[n:])
	metadataSer.Marshal(map[string]string(entry.Metadata), bs[n:])
	return bs
}

// unmarshalEntry deserializes an entry from storage.
func unmarshalEntry(bs []byte) (*index.Entry, error) {
	id, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return nil, fmt.Errorf("decoding entry id: %w", err)
	}

	vector, n2, err := vectorSer.Unmarshal(bs[n:])
	if err != nil {
		return nil, fmt.Errorf("decoding entry vector: %w", err)
	}

	metadata, _, err := metadataSer.Unmarshal(bs[n+n2:])
	if err != nil {
		return nil, fmt.Errorf("decoding entry metadata: %w", err)
	}

	return &index.Entry{ID: id, Vector: vector, Metadata: index.Metadata(metadata)}, nil
}

package badgerstore

import "github.com/go-crypt/x/blake2b"

// Key prefix for index entries
const entryPrefix = "vecent:"

// makeEntryKey generates a fixed-width key for an entry by hashing its
// document ID. Entries carry their full ID in the value, so the 64-bit
// digest only has to keep keys short and uniformly distributed.
func makeEntryKey(id string) []byte {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(id))

	buf := make([]byte, 0, len(entryPrefix)+8)
	buf = append(buf, entryPrefix...)
	return h.Sum(buf)
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badgerstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/healthhub/index"
)

// Store implements index.Store on an embedded BadgerDB. Vectors are
// normalized on write so similarity reduces to a dot product at query
// time. Queries scan the full entry space; this store targets local
// development and test datasets, not production corpus sizes.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ index.Store = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a BadgerDB-backed store at the specified path.
// Creates the directory if it doesn't exist.
func Open(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "badger-store"),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (s *Store) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := s.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Upsert writes one batch of entries in a single transaction. Vectors
// are normalized before storage; existing entries with the same ID are
// overwritten.
func (s *Store) Upsert(ctx context.Context, entries []index.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.withTx(func(tx *badger.Txn) error {
		for i := range entries {
			entry := entries[i]
			entry.Vector = normalizeVector(entry.Vector)

			if err := tx.Set(makeEntryKey(entry.ID), marshalEntry(&entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Query scans every stored entry, scores it against the query vector,
// and returns the topK best matches in descending score order. A filter
// keeps only entries whose metadata contains every filter pair.
func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter index.Metadata) ([]index.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := normalizeVector(vector)
	var matches []index.Match

	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *index.Entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = unmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
			}

			if len(entry.Vector) == 0 || !metadataMatches(entry.Metadata, filter) {
				continue
			}

			matches = append(matches, index.Match{
				ID:       entry.ID,
				Score:    dotProduct(query, entry.Vector),
				Metadata: entry.Metadata,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(matches, func(a, b index.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Stats counts stored entries. Dimension is read off the first entry;
// an empty store reports the configured index dimension.
func (s *Store) Stats(ctx context.Context) (*index.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &index.Stats{Dimension: index.Dimension, Namespaces: map[string]int{}}

	err := s.withTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		first := true
		for iter.Rewind(); iter.Valid(); iter.Next() {
			stats.TotalVectorCount++
			if !first {
				continue
			}
			first = false
			err := iter.Item().Value(func(val []byte) error {
				entry, err := unmarshalEntry(val)
				if err != nil {
					return err
				}
				stats.Dimension = len(entry.Vector)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	stats.Namespaces[""] = stats.TotalVectorCount
	return stats, nil
}

// metadataMatches reports whether metadata contains every filter pair.
// A nil or empty filter matches everything.
func metadataMatches(metadata index.Metadata, filter index.Metadata) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

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


package index

import "errors"

var (
	// ErrStoreRequired is returned when a client is created without a store.
	ErrStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when a client is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyQuery is returned when a query has no usable text.
	ErrEmptyQuery = errors.New("query text cannot be empty")

	// ErrEmbeddingFailed is returned when a batch cannot be embedded
	// after all retry attempts.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrDimensionMismatch is returned when an embedder hands back vectors
	// whose width differs from the configured index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStatsFailed is returned when the store cannot report its stats.
	ErrStatsFailed = errors.New("index stats unavailable")

	// ErrInvalidMaxAttempts is returned for a non-positive retry budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)

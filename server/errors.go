package server

import "errors"

var (
	// ErrEngineRequired is returned when no query engine is provided.
	ErrEngineRequired = errors.New("query engine is required")

	// ErrClientRequired is returned when no index client is provided.
	ErrClientRequired = errors.New("index client is required")

	// ErrPipelineRequired is returned when no ingestion pipeline is provided.
	ErrPipelineRequired = errors.New("ingestion pipeline is required")
)

package rag

import "errors"

var (
	// ErrClientRequired is returned when no index client is provided.
	ErrClientRequired = errors.New("index client is required")

	// ErrGeneratorRequired is returned when no generator is provided.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrEmptyQuestion is returned when the question is blank.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrQueryFailed wraps retrieval and generation failures.
	ErrQueryFailed = errors.New("query failed")
)

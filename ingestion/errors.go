package ingestion

import "errors"

var (
	// ErrNoSources is returned when a pipeline is created without any
	// source configurations.
	ErrNoSources = errors.New("at least one source config required")

	// ErrNilReport is returned when a nil report is passed to a stage
	// that consumes one.
	ErrNilReport = errors.New("report is nil")
)

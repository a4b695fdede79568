package source

import "errors"

var (
	// ErrUnsupportedFormat is returned when a Config names a format the
	// loader has no parser for.
	ErrUnsupportedFormat = errors.New("unsupported source format")

	// ErrNotAnObject is returned when keyed data does not contain a
	// top-level object.
	ErrNotAnObject = errors.New("keyed source must contain a top-level object")
)

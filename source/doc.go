// Package source loads heterogeneous healthcare data files (CSV tables,
// JSON documents, RSS/Atom feeds) into a small set of normalized shapes
// that the rest of the pipeline consumes.
package source

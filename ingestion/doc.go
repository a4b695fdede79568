// Package ingestion orchestrates the load, validate, and tag stages for a
// configured set of data sources, and converts the survivors into
// documents ready for vector indexing.
//
// Sources are processed strictly in configuration order and in isolation:
// one bad file never prevents the rest from being ingested. The outcome of
// a run is a Report that records per-source status and aggregate quality.
package ingestion

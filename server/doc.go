// Package server exposes the ingestion pipeline and query engine over
// HTTP. It is a thin JSON adapter: validation, redaction, and rate
// limiting happen here, everything else is delegated to the core
// packages.
package server

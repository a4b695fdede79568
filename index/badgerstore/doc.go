// Package badgerstore implements index.Store on an embedded BadgerDB.
// It exists for local development, air-gapped deployments, and tests:
// the full pipeline runs against it without any external vector service.
package badgerstore

// Package pinecone provides an index.Store backed by a Pinecone
// serverless index. It is the production store; local development and
// tests use the badger-backed store instead.
package pinecone

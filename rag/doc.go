// Package rag answers natural-language questions about healthcare data by
// retrieving relevant documents from the vector index and generating a
// grounded, cited response.
package rag

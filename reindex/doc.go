// Package reindex rebuilds the title vector index from the record store,
// typically after switching to a new embedding model.
//
// Titles are embedded in batches with retry and exponential backoff, and
// progress is reported to a configurable writer. The result is a fresh
// in-memory index ready to be written out as a snapshot.
package reindex

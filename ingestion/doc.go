// Package ingestion drives documents from raw bytes to searchable chunks.
//
// A Pipeline run claims a processing document with a fresh run token, fetches
// its source when needed, extracts and chunks its text, then embeds each
// chunk and derives its knowledge entry in order. The run ends by moving the
// document to ready or failed; a failed document always carries a message.
//
// Runs are scheduled on a bounded worker pool. A run that finds its document
// missing, no longer processing, or held by another run does nothing.
package ingestion

// Package reembed re-embeds every stored chunk with the configured embedder.
//
// Switching embedding models leaves existing chunks with vectors from the old
// model, which the retriever then skips as dimension mismatches. A
// Reembedder walks all chunks in ID order, embeds them in batches with retry
// and backoff, normalizes the vectors and writes them back. After each batch
// it stores a checkpoint, so an interrupted run resumes after the last
// completed batch instead of starting over.
package reembed

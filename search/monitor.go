package search

import (
	"github.com/poiesic/scholia/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query Query)
	ChunkScored(chunk *core.Chunk, score float32)
	// ChunkSkipped is called for chunks whose vector cannot be compared with the query.
	ChunkSkipped(chunk *core.Chunk)
	Finish(scanned int, results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Query)                              {}
func (n *noopMonitor) ChunkScored(_ *core.Chunk, _ float32)       {}
func (n *noopMonitor) ChunkSkipped(_ *core.Chunk)                 {}
func (n *noopMonitor) Finish(_ int, _ []*core.SearchResult)       {}

package metrics

import (
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/search"
)

// searchMonitor feeds retrieval counters. It keeps no per-search state, so
// one instance can observe concurrent searches.
type searchMonitor struct {
	m *Metrics
}

var _ search.SearchMonitor = searchMonitor{}

// SearchMonitor returns a search.SearchMonitor that records into m.
func (m *Metrics) SearchMonitor() search.SearchMonitor {
	return searchMonitor{m: m}
}

func (s searchMonitor) Start(search.Query)               {}
func (s searchMonitor) ChunkScored(*core.Chunk, float32) {}
func (s searchMonitor) ChunkSkipped(*core.Chunk)         { s.m.ChunkSkipped() }
func (s searchMonitor) Finish(scanned int, _ []*core.SearchResult) {
	s.m.SearchFinished(scanned)
}

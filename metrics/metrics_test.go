package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/poiesic/scholia/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IngestionFinished(OutcomeReady, time.Second)
		m.ChunksIngested(3)
		m.ObserveEmbedding(time.Millisecond, nil)
		m.GenerationFinished("chat", time.Second, errors.New("x"))
		m.SearchFinished(10)
		m.ChunkSkipped()
		mon := m.SearchMonitor()
		mon.ChunkSkipped(&core.Chunk{})
		mon.Finish(1, nil)
	})
	assert.Nil(t, m.Registry())
}

func TestCounters(t *testing.T) {
	m := New()

	m.IngestionFinished(OutcomeReady, time.Second)
	m.IngestionFinished(OutcomeReady, time.Second)
	m.IngestionFinished(OutcomeSkipped, 0)
	m.ChunksIngested(4)
	m.ChunksIngested(0)
	m.GenerationFinished("chat", time.Second, nil)
	m.GenerationFinished("faq", time.Second, errors.New("boom"))

	mon := m.SearchMonitor()
	mon.ChunkSkipped(&core.Chunk{})
	mon.Finish(7, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ingestionRuns.WithLabelValues(OutcomeReady)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ingestionRuns.WithLabelValues(OutcomeSkipped)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.chunksIngested))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationRequests.WithLabelValues("chat", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.generationRequests.WithLabelValues("faq", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searches))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.chunksScanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.chunksSkipped))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ChunksIngested(2)
	m.ObserveEmbedding(10*time.Millisecond, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "scholia_ingestion_chunks_total 2")
	assert.Contains(t, string(body), `scholia_embedding_request_duration_seconds_count{result="ok"} 1`)
}

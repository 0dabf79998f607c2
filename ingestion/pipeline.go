package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/chunk"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/extract"
	"github.com/poiesic/scholia/knowledge"
	"github.com/poiesic/scholia/metrics"
	"github.com/poiesic/scholia/storage"
)

// Pipeline schedules ingestion runs on a bounded worker pool.
type Pipeline struct {
	documentRepository storage.DocumentRepository
	pool               *ants.Pool
	proc               processor

	fetcher   Fetcher
	extractor *extract.Extractor
	chunker   *chunk.Chunker
	knowledge knowledge.Extractor
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithFetcher sets the source fetcher. Default is a SourceFetcher with a
// 30 second timeout.
func WithFetcher(fetcher Fetcher) Option {
	return func(p *Pipeline) error {
		p.fetcher = fetcher
		return nil
	}
}

// WithExtractor sets the text extractor.
func WithExtractor(extractor *extract.Extractor) Option {
	return func(p *Pipeline) error {
		p.extractor = extractor
		return nil
	}
}

// WithChunker sets the chunker. Default uses chunk.DefaultMaxLength.
func WithChunker(chunker *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		p.chunker = chunker
		return nil
	}
}

// WithKnowledgeExtractor sets the knowledge extractor.
// Default is knowledge.TemplateExtractor.
func WithKnowledgeExtractor(extractor knowledge.Extractor) Option {
	return func(p *Pipeline) error {
		p.knowledge = extractor
		return nil
	}
}

// WithMetrics records run outcomes into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) error {
		p.metrics = m
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	knowledgeRepository storage.KnowledgeRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}

	p := &Pipeline{
		documentRepository: documentRepository,
		knowledge:          knowledge.TemplateExtractor{},
		logger:             slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}

	if p.pool == nil {
		poolSize := max(runtime.NumCPU()/2, 1)
		pool, err := ants.NewPool(poolSize)
		if err != nil {
			return nil, err
		}
		p.pool = pool
	}
	if p.fetcher == nil {
		p.fetcher = NewSourceFetcher(nil, 0)
	}
	if p.extractor == nil {
		extractor, err := extract.NewExtractor(extract.WithLogger(p.logger))
		if err != nil {
			p.Release()
			return nil, err
		}
		p.extractor = extractor
	}
	if p.chunker == nil {
		chunker, err := chunk.NewChunker()
		if err != nil {
			p.Release()
			return nil, err
		}
		p.chunker = chunker
	}

	// Create the processor after options are applied (so it gets final config)
	segments, err := newSegmentWriter(chunkRepository, knowledgeRepository, embedder, p.knowledge, p.metrics, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.proc = &documentProcessor{
		documentRepository: documentRepository,
		fetcher:            p.fetcher,
		extractor:          p.extractor,
		chunker:            p.chunker,
		segments:           segments,
		logger:             p.logger.With("component", "ingestion"),
	}

	return p, nil
}

// Schedule submits an ingestion run for the document and returns immediately.
// Errors during the run are logged and recorded on the document.
func (p *Pipeline) Schedule(id core.ID) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPipelineClosed
	}

	p.pending.Add(1)
	err := p.pool.Submit(func() {
		defer p.pending.Done()
		if err := p.Run(context.Background(), id); err != nil {
			p.logger.Error("ingestion run failed", "document", id, "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		return err
	}
	return nil
}

// Run executes an ingestion run synchronously. A document that cannot be
// claimed is skipped without error.
func (p *Pipeline) Run(ctx context.Context, id core.ID) error {
	start := time.Now()
	outcome, err := p.proc.process(ctx, id)
	p.metrics.IngestionFinished(outcome, time.Since(start))
	return err
}

// Submit schedules a run for a processing document and returns it. When the
// run cannot be scheduled the document is moved to failed, so that it can be
// retried, and the failed record is returned instead.
func (p *Pipeline) Submit(ctx context.Context, doc *core.Document) (*core.Document, error) {
	err := p.Schedule(doc.Id)
	if err == nil {
		return doc, nil
	}
	p.logger.Warn("could not schedule ingestion run", "document", doc.Id, "err", err)

	ctx = context.WithoutCancel(ctx)
	token := uuid.NewString()
	if _, claimErr := p.documentRepository.ClaimDocument(ctx, doc.Id, token); claimErr != nil {
		return nil, errors.Join(err, claimErr)
	}
	failed, finishErr := p.documentRepository.FinishDocument(ctx, doc.Id, token, core.Failed(SchedulingFailedMessage+": "+err.Error()))
	if finishErr != nil {
		return nil, errors.Join(err, finishErr)
	}
	return failed, nil
}

// Retry purges a failed document's chunks and knowledge entries, returns it
// to processing and submits a new run.
func (p *Pipeline) Retry(ctx context.Context, id core.ID) (*core.Document, error) {
	doc, err := p.documentRepository.ResetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	p.logger.Info("document reset for re-ingestion", "document", id)
	return p.Submit(ctx, doc)
}

// Resume releases the run tokens left behind by an unclean shutdown and
// schedules a run for every document still processing. It returns the number
// of documents resumed and must be called before any other run is scheduled.
func (p *Pipeline) Resume(ctx context.Context) (int, error) {
	ids, err := p.documentRepository.ReleaseClaims(ctx)
	if err != nil {
		return 0, err
	}
	var errs []error
	for _, id := range ids {
		if _, err := p.Submit(ctx, &core.Document{Id: id}); err != nil {
			errs = append(errs, err)
		}
	}
	if len(ids) > 0 {
		p.logger.Info("resumed interrupted ingestion", "documents", len(ids))
	}
	return len(ids), errors.Join(errs...)
}

// Wait blocks until every scheduled run has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release stops accepting runs, waits for in-flight runs and releases the
// worker pool. The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.pending.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
}

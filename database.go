// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package scholia

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/scholia/access"
	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/chunk"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/extract"
	"github.com/poiesic/scholia/generation"
	"github.com/poiesic/scholia/ingestion"
	"github.com/poiesic/scholia/knowledge"
	"github.com/poiesic/scholia/metrics"
	"github.com/poiesic/scholia/reembed"
	"github.com/poiesic/scholia/search"
	"github.com/poiesic/scholia/storage/badger"
)

// Database ties storage, the AI provider, ingestion and generation together.
// All operations take the caller's owner ID and only touch that owner's data.
type Database struct {
	repos        *badger.Repositories
	provider     ai.AIProvider
	embedder     *ai.ResilientEmbedder
	guard        *access.Guard
	pipeline     *ingestion.Pipeline
	searcher     *search.Searcher
	orchestrator *generation.Orchestrator
	metrics      *metrics.Metrics
	validator    *validator.Validate
	logger       *slog.Logger
	closeOnce    sync.Once
	closeErr     error
}

// NewDatabase opens (or creates) the database at filePath and starts the
// ingestion worker pool. Documents still processing from an earlier process
// are rescheduled.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.metrics == nil {
		options.metrics = metrics.New()
	}

	repos, err := badger.OpenRepositories(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	db := &Database{
		repos:     repos,
		provider:  options.provider,
		metrics:   options.metrics,
		validator: newValidator(options.localFiles),
		logger:    options.logger.With("component", "database"),
	}
	if db.provider == nil {
		db.provider, err = NewProvider(context.Background(), options.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
	}

	if err := db.wire(options); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	// Documents left processing by an earlier process are picked up again.
	if _, err := db.pipeline.Resume(context.Background()); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	return db, nil
}

func (db *Database) wire(options *databaseOptions) error {
	logger := options.logger
	var err error

	db.embedder, err = ai.NewResilientEmbedderFromConfig(db.provider.Embedder(), options.aiConfig,
		ai.WithObserver(db.metrics.ObserveEmbedding),
		ai.WithEmbedLogger(logger))
	if err != nil {
		return err
	}

	db.guard, err = access.NewGuard(db.repos.Documents, db.repos.Notebooks, db.repos.Contents)
	if err != nil {
		return err
	}

	pipelineOpts, err := db.pipelineOptions(options)
	if err != nil {
		return err
	}
	db.pipeline, err = ingestion.NewPipeline(db.repos.Documents, db.repos.Chunks, db.repos.Knowledge, db.embedder, pipelineOpts...)
	if err != nil {
		return err
	}

	retriever, err := search.NewExhaustiveRetriever(db.repos.Chunks,
		search.WithLogger(logger),
		search.WithMonitor(db.metrics.SearchMonitor()))
	if err != nil {
		return err
	}
	db.searcher, err = search.NewSearcher(retriever, db.embedder, logger)
	if err != nil {
		return err
	}

	generationOpts := []generation.Option{
		generation.WithLogger(logger),
		generation.WithMetrics(db.metrics),
	}
	if options.topK > 0 {
		generationOpts = append(generationOpts, generation.WithTopK(options.topK))
	}
	if options.generateTimeout > 0 {
		generationOpts = append(generationOpts, generation.WithGenerateTimeout(options.generateTimeout))
	}
	db.orchestrator, err = generation.NewOrchestrator(db.guard, generation.Repositories{
		Chats:     db.repos.Chats,
		Contents:  db.repos.Contents,
		Chunks:    db.repos.Chunks,
		Knowledge: db.repos.Knowledge,
	}, db.searcher, db.provider.Generator(), generationOpts...)
	return err
}

func (db *Database) pipelineOptions(options *databaseOptions) ([]ingestion.Option, error) {
	logger := options.logger
	opts := []ingestion.Option{
		ingestion.WithLogger(logger),
		ingestion.WithMetrics(db.metrics),
		ingestion.WithFetcher(ingestion.NewSourceFetcher(nil, options.fetchTimeout,
			ingestion.WithLocalFiles(options.localFiles))),
	}
	if options.poolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(options.poolSize))
	}

	extractOpts := []extract.Option{extract.WithLogger(logger)}
	if options.extractTimeout > 0 {
		extractOpts = append(extractOpts, extract.WithTimeout(options.extractTimeout))
	}
	extractor, err := extract.NewExtractor(extractOpts...)
	if err != nil {
		return nil, err
	}
	opts = append(opts, ingestion.WithExtractor(extractor))

	if options.maxChunkLength > 0 {
		chunker, err := chunk.NewChunker(chunk.WithMaxLength(options.maxChunkLength))
		if err != nil {
			return nil, err
		}
		opts = append(opts, ingestion.WithChunker(chunker))
	}

	if options.llmKnowledge {
		extractorOpts := []knowledge.LLMOption{knowledge.WithLogger(logger)}
		if options.generateTimeout > 0 {
			extractorOpts = append(extractorOpts, knowledge.WithTimeout(options.generateTimeout))
		}
		extractor, err := knowledge.NewLLMExtractor(db.provider.Generator(), extractorOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ingestion.WithKnowledgeExtractor(extractor))
	}
	return opts, nil
}

// Close waits for in-flight ingestion runs and then releases the AI
// provider and storage. Calling Close more than once returns the first result.
func (db *Database) Close() error {
	db.closeOnce.Do(func() {
		var errs []error
		if db.pipeline != nil {
			db.pipeline.Release()
		}
		if db.provider != nil {
			if err := db.provider.Close(); err != nil {
				db.logger.Error("error closing AI provider", "err", err)
				errs = append(errs, err)
			}
		}
		if err := db.repos.Close(); err != nil {
			db.logger.Error("error closing storage", "err", err)
			errs = append(errs, err)
		}
		db.closeErr = errors.Join(errs...)
	})
	return db.closeErr
}

// Wait blocks until every scheduled ingestion run has finished.
func (db *Database) Wait() {
	db.pipeline.Wait()
}

// Metrics returns the metrics the database records into.
func (db *Database) Metrics() *metrics.Metrics {
	return db.metrics
}

// CreateDocument stores a new document in processing state and schedules
// its ingestion run. If the run cannot be scheduled the document is returned
// failed and can be retried.
func (db *Database) CreateDocument(ctx context.Context, owner core.OwnerID, req CreateDocumentRequest) (*core.Document, error) {
	if err := access.Authenticated(owner); err != nil {
		return nil, err
	}
	if err := db.validate(req); err != nil {
		return nil, err
	}

	var notebook *core.Notebook
	if req.NotebookID != 0 {
		var err error
		if notebook, err = db.guard.Notebook(ctx, owner, req.NotebookID); err != nil {
			return nil, err
		}
	}

	doc, err := db.repos.Documents.AddDocument(ctx, &core.Document{
		Owner:     owner,
		Name:      req.Name,
		Type:      req.Type,
		SourceURL: req.SourceURL,
		Text:      req.Text,
		Status:    core.Processing(),
	})
	if err != nil {
		return nil, err
	}
	if notebook != nil {
		if err := db.repos.Notebooks.LinkDocument(ctx, notebook.Id, doc.Id); err != nil {
			return nil, err
		}
	}

	if doc, err = db.pipeline.Submit(ctx, doc); err != nil {
		return nil, err
	}
	db.logger.Debug("document created", "document", doc.Id, "type", doc.Type, "state", doc.Status.State())
	return doc, nil
}

// GetDocument returns the document including its current status.
func (db *Database) GetDocument(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Document, error) {
	return db.guard.Document(ctx, owner, id)
}

// ListDocuments returns the owner's documents. An anonymous caller gets none.
func (db *Database) ListDocuments(ctx context.Context, owner core.OwnerID) ([]*core.Document, error) {
	if access.Authenticated(owner) != nil {
		return []*core.Document{}, nil
	}
	return db.repos.Documents.ListDocuments(ctx, owner)
}

// UpdateDocument edits a document's name or text. Stored chunks are not
// recomputed; use RetryDocument on failed documents to re-ingest.
func (db *Database) UpdateDocument(ctx context.Context, owner core.OwnerID, id core.ID, req UpdateDocumentRequest) (*core.Document, error) {
	if err := db.validate(req); err != nil {
		return nil, err
	}
	doc, err := db.guard.Document(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		doc.Name = *req.Name
	}
	if req.Text != nil {
		doc.Text = req.Text
	}
	return db.repos.Documents.UpdateDocument(ctx, doc)
}

// DeleteDocument removes a document with its chunks, knowledge entries and
// notebook links.
func (db *Database) DeleteDocument(ctx context.Context, owner core.OwnerID, id core.ID) error {
	if _, err := db.guard.Document(ctx, owner, id); err != nil {
		return err
	}
	return db.repos.Documents.DeleteDocument(ctx, id)
}

// RetryDocument purges a failed document's derived records and schedules a
// new ingestion run. Documents that are not failed are rejected with
// core.ErrInvalidTransition.
func (db *Database) RetryDocument(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Document, error) {
	if _, err := db.guard.Document(ctx, owner, id); err != nil {
		return nil, err
	}
	return db.pipeline.Retry(ctx, id)
}

func (db *Database) CreateNotebook(ctx context.Context, owner core.OwnerID, req CreateNotebookRequest) (*core.Notebook, error) {
	if err := access.Authenticated(owner); err != nil {
		return nil, err
	}
	if err := db.validate(req); err != nil {
		return nil, err
	}
	return db.repos.Notebooks.AddNotebook(ctx, &core.Notebook{
		Owner:       owner,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	})
}

func (db *Database) GetNotebook(ctx context.Context, owner core.OwnerID, id core.ID) (*core.Notebook, error) {
	return db.guard.Notebook(ctx, owner, id)
}

// ListNotebooks returns the owner's notebooks. An anonymous caller gets none.
func (db *Database) ListNotebooks(ctx context.Context, owner core.OwnerID) ([]*core.Notebook, error) {
	if access.Authenticated(owner) != nil {
		return []*core.Notebook{}, nil
	}
	return db.repos.Notebooks.ListNotebooks(ctx, owner)
}

// DeleteNotebook removes a notebook with its chat history, generated
// content and document links. The documents themselves are kept.
func (db *Database) DeleteNotebook(ctx context.Context, owner core.OwnerID, id core.ID) error {
	if _, err := db.guard.Notebook(ctx, owner, id); err != nil {
		return err
	}
	return db.repos.Notebooks.DeleteNotebook(ctx, id)
}

// AddDocumentToNotebook links one of the owner's documents to one of the
// owner's notebooks.
func (db *Database) AddDocumentToNotebook(ctx context.Context, owner core.OwnerID, notebookID, documentID core.ID) error {
	if _, err := db.guard.Notebook(ctx, owner, notebookID); err != nil {
		return err
	}
	if _, err := db.guard.Document(ctx, owner, documentID); err != nil {
		return err
	}
	return db.repos.Notebooks.LinkDocument(ctx, notebookID, documentID)
}

// ListNotebookDocuments returns the documents linked to a notebook, or none
// when the caller may not read the notebook.
func (db *Database) ListNotebookDocuments(ctx context.Context, owner core.OwnerID, notebookID core.ID) ([]*core.Document, error) {
	ok, err := db.guard.Listable(ctx, owner, notebookID)
	if err != nil || !ok {
		return []*core.Document{}, err
	}
	ids, err := db.repos.Notebooks.ListNotebookDocuments(ctx, notebookID)
	if err != nil {
		return nil, err
	}
	return db.guard.Documents(ctx, owner, ids)
}

// SendMessage records the user's query and the assistant's reply. The turn is
// returned even when answering failed; the error then describes the failure
// and the stored reply carries an error message.
func (db *Database) SendMessage(ctx context.Context, owner core.OwnerID, notebookID core.ID, query string) (*generation.Turn, error) {
	return db.orchestrator.SendMessage(ctx, owner, notebookID, query)
}

// ListMessages returns a notebook's chat history in submission order.
func (db *Database) ListMessages(ctx context.Context, owner core.OwnerID, notebookID core.ID) ([]*core.ChatMessage, error) {
	return db.orchestrator.ListMessages(ctx, owner, notebookID)
}

// GenerateContent builds and stores a new structured artifact.
func (db *Database) GenerateContent(ctx context.Context, owner core.OwnerID, req GenerateContentRequest) (*core.GeneratedContent, error) {
	if err := db.validate(req); err != nil {
		return nil, err
	}
	return db.orchestrator.GenerateContent(ctx, owner, generation.Request{
		NotebookID:  req.NotebookID,
		DocumentIDs: req.DocumentIDs,
		Type:        req.Type,
	})
}

// ListGeneratedContent returns a notebook's artifacts, optionally filtered by type.
func (db *Database) ListGeneratedContent(ctx context.Context, owner core.OwnerID, notebookID core.ID, contentType core.ContentType) ([]*core.GeneratedContent, error) {
	return db.orchestrator.ListContent(ctx, owner, notebookID, contentType)
}

func (db *Database) GetGeneratedContent(ctx context.Context, owner core.OwnerID, id core.ID) (*core.GeneratedContent, error) {
	return db.guard.Content(ctx, owner, id)
}

// Search returns the owner's k chunks most similar to query, optionally
// limited to the given documents. k <= 0 selects search.DefaultK.
func (db *Database) Search(ctx context.Context, owner core.OwnerID, query string, k int, documentIDs ...core.ID) ([]*core.SearchResult, error) {
	if err := access.Authenticated(owner); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = search.DefaultK
	}
	return db.searcher.FindSimilar(ctx, owner, query, k, documentIDs...)
}

// NewReembedder returns a job that recomputes every chunk vector with the
// current embedder. progress receives human readable progress lines.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.repos.Chunks, db.repos.Checkpoints, db.embedder, config, progress)
}

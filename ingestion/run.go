package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/scholia/chunk"
	"github.com/poiesic/scholia/core"
	"github.com/poiesic/scholia/extract"
	"github.com/poiesic/scholia/metrics"
	"github.com/poiesic/scholia/storage"
)

// documentProcessor implements the ingestion state machine for one document.
type documentProcessor struct {
	documentRepository storage.DocumentRepository
	fetcher            Fetcher
	extractor          *extract.Extractor
	chunker            *chunk.Chunker
	segments           *segmentWriter
	logger             *slog.Logger
}

var _ processor = (*documentProcessor)(nil)

func (dp *documentProcessor) process(ctx context.Context, id core.ID) (string, error) {
	token := uuid.NewString()
	doc, err := dp.documentRepository.ClaimDocument(ctx, id, token)
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrNotProcessing),
		errors.Is(err, storage.ErrAlreadyClaimed):
		dp.logger.Debug("skipping ingestion run", "document", id, "reason", err)
		return metrics.OutcomeSkipped, nil
	case err != nil:
		return metrics.OutcomeError, err
	}

	logger := dp.logger.With("document", id, "run", token)
	logger.Info("ingestion run started", "type", doc.Type)

	status := dp.run(ctx, doc, token, logger)

	// The final status is written even if ctx was cancelled mid-run.
	finishCtx := context.WithoutCancel(ctx)
	if _, err := dp.documentRepository.FinishDocument(finishCtx, id, token, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrRunTokenMismatch) {
			logger.Info("document released during ingestion run", "reason", err)
			return metrics.OutcomeSkipped, nil
		}
		logger.Error("failed to finish document", "state", status.State(), "err", err)
		if _, fallbackErr := dp.documentRepository.FinishDocument(finishCtx, id, token, core.Failed(UnrecordedResultMessage)); fallbackErr != nil {
			return metrics.OutcomeError, errors.Join(err, fallbackErr)
		}
		return metrics.OutcomeFailed, err
	}
	logger.Info("ingestion run finished", "state", status.State(), "message", status.Message())

	if status.IsFailed() {
		return metrics.OutcomeFailed, nil
	}
	return metrics.OutcomeReady, nil
}

// run performs the fetch, extract, chunk and embed steps and returns the
// status the document should end in.
func (dp *documentProcessor) run(ctx context.Context, doc *core.Document, token string, logger *slog.Logger) core.Status {
	text, status, ok := dp.resolveText(ctx, doc, token, logger)
	if !ok {
		return status
	}

	segments := dp.chunker.Chunk(text)
	if len(segments) == 0 {
		logger.Info("no processable content", "textLength", len(text))
		return core.Ready(NoContentNote)
	}

	written, err := dp.segments.write(ctx, doc, token, segments)
	if err != nil {
		logger.Error("chunk processing failed",
			"written", written,
			"segments", len(segments),
			"err", err)
		return core.Failed(err.Error())
	}
	logger.Debug("chunks written", "count", written)
	return core.Ready("")
}

// resolveText returns the document's text, fetching and extracting it when
// only a source URL is known. ok is false when the run must end with status.
func (dp *documentProcessor) resolveText(ctx context.Context, doc *core.Document, token string, logger *slog.Logger) (string, core.Status, bool) {
	if doc.HasText() {
		return doc.TextOrEmpty(), core.Status{}, true
	}
	if doc.SourceURL == "" {
		if doc.Type == core.DocumentTypeText {
			return "", core.Status{}, true
		}
		logger.Warn("document has no text and no source URL")
		return "", core.Failed(MissingSourceMessage), false
	}

	data, err := dp.fetcher.Fetch(ctx, doc.SourceURL)
	if err != nil {
		logger.Error("failed to fetch document source", "url", doc.SourceURL, "err", err)
		var statusErr *FetchStatusError
		if errors.As(err, &statusErr) {
			return "", core.Failed(statusErr.Error()), false
		}
		return "", core.Failed("Failed to fetch document content: " + err.Error()), false
	}

	text := dp.extractor.Extract(ctx, data, doc.Type)
	if err := dp.documentRepository.SetDocumentText(ctx, doc.Id, token, text); err != nil {
		logger.Error("failed to store extracted text", "err", err)
		return "", core.Failed(err.Error()), false
	}
	return text, core.Status{}, true
}

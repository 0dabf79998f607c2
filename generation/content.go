package generation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/scholia/ai"
	"github.com/poiesic/scholia/core"
)

// Request asks for one structured artifact built from DocumentIDs.
type Request struct {
	NotebookID  core.ID
	DocumentIDs []core.ID
	Type        core.ContentType
}

// GenerateContent builds an artifact of req.Type from the requested
// documents and stores it as a new record. Generation errors are returned
// and nothing is stored.
func (o *Orchestrator) GenerateContent(ctx context.Context, owner core.OwnerID, req Request) (*core.GeneratedContent, error) {
	if err := core.ValidateContentType(req.Type); err != nil {
		return nil, err
	}
	if len(req.DocumentIDs) == 0 {
		return nil, ErrNoDocuments
	}
	notebook, err := o.guard.Notebook(ctx, owner, req.NotebookID)
	if err != nil {
		return nil, err
	}
	docs, err := o.guard.Documents(ctx, owner, req.DocumentIDs)
	if err != nil {
		return nil, err
	}

	material := make([]documentMaterial, 0, len(docs))
	for _, doc := range docs {
		m, err := o.gather(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("gathering document %d: %w", doc.Id, err)
		}
		material = append(material, m)
	}

	prompt, err := formatContentPrompt(req.Type, notebook.Title, material)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With("notebook", notebook.Id, "type", req.Type)
	logger.Info("generating content", "documents", len(docs), "promptLength", len(prompt))

	start := time.Now()
	body, err := o.generate(ctx, prompt)
	o.metrics.GenerationFinished(string(req.Type), time.Since(start), err)
	if err != nil {
		logger.Error("content generation failed", "err", err)
		return nil, err
	}

	return o.repos.Contents.AddGeneratedContent(ctx, &core.GeneratedContent{
		Owner:           owner,
		NotebookID:      notebook.Id,
		Type:            req.Type,
		Title:           req.Type.Label() + ": " + notebook.Title,
		Body:            body,
		SourceDocuments: slices.Clone(req.DocumentIDs),
	})
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	body, err := o.generator.Generate(ctx, ai.GenerateRequest{
		System: contentSystemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return "", ai.ErrEmptyResponse
	}
	return body, nil
}

// gather collects a document's knowledge entries. Documents without entries
// contribute their chunk texts instead.
func (o *Orchestrator) gather(ctx context.Context, doc *core.Document) (documentMaterial, error) {
	m := documentMaterial{name: doc.Name}

	entries, err := o.repos.Knowledge.ListKnowledgeByDocument(ctx, doc.Id)
	if err != nil {
		return m, err
	}
	for _, e := range entries {
		if e.Summary != "" {
			m.summaries = append(m.summaries, e.Summary)
		}
		m.facts = append(m.facts, e.Facts...)
		m.questions = append(m.questions, e.Questions...)
	}
	if len(entries) > 0 {
		return m, nil
	}

	chunks, err := o.repos.Chunks.ListChunksByDocument(ctx, doc.Id)
	if err != nil {
		return m, err
	}
	for _, c := range chunks {
		m.excerpts = append(m.excerpts, c.Text)
	}
	return m, nil
}

// ListContent returns the notebook's artifacts, optionally filtered by type.
// Callers that may not read the notebook get an empty list.
func (o *Orchestrator) ListContent(ctx context.Context, owner core.OwnerID, notebookID core.ID, contentType core.ContentType) ([]*core.GeneratedContent, error) {
	ok, err := o.guard.Listable(ctx, owner, notebookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*core.GeneratedContent{}, nil
	}
	return o.repos.Contents.ListGeneratedContent(ctx, notebookID, contentType)
}

package server

import (
	"time"

	"github.com/poiesic/scholia/core"
)

type documentView struct {
	ID        core.ID           `json:"id"`
	Name      string            `json:"name"`
	Type      core.DocumentType `json:"type"`
	SourceURL string            `json:"sourceUrl,omitempty"`
	Status    core.Status       `json:"status"`
	HasText   bool              `json:"hasText"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func newDocumentView(d *core.Document) documentView {
	return documentView{
		ID:        d.Id,
		Name:      d.Name,
		Type:      d.Type,
		SourceURL: d.SourceURL,
		Status:    d.Status,
		HasText:   d.HasText(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type notebookView struct {
	ID          core.ID   `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newNotebookView(n *core.Notebook) notebookView {
	return notebookView{
		ID:          n.Id,
		Title:       n.Title,
		Description: n.Description,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

type messageView struct {
	ID        core.ID   `json:"id"`
	Role      core.Role `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func newMessageView(m *core.ChatMessage) *messageView {
	if m == nil {
		return nil
	}
	return &messageView{ID: m.Id, Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt}
}

type contentView struct {
	ID              core.ID          `json:"id"`
	NotebookID      core.ID          `json:"notebookId"`
	Type            core.ContentType `json:"contentType"`
	Title           string           `json:"title"`
	Body            string           `json:"body"`
	SourceDocuments []core.ID        `json:"sourceDocuments"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func newContentView(g *core.GeneratedContent) contentView {
	return contentView{
		ID:              g.Id,
		NotebookID:      g.NotebookID,
		Type:            g.Type,
		Title:           g.Title,
		Body:            g.Body,
		SourceDocuments: g.SourceDocuments,
		CreatedAt:       g.CreatedAt,
	}
}

type searchResultView struct {
	ChunkID    core.ID `json:"chunkId"`
	DocumentID core.ID `json:"documentId"`
	Position   int     `json:"position"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

// mapViews converts every item with fn. The result is never nil so empty
// listings encode as [].
func mapViews[T, V any](items []T, fn func(T) V) []V {
	views := make([]V, 0, len(items))
	for _, item := range items {
		views = append(views, fn(item))
	}
	return views
}

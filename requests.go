package scholia

import (
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/scholia/core"
)

// CreateDocumentRequest describes a new document. Either Text or SourceURL
// carries the content; a text document may have neither and ends up empty.
// SourceURL must be http(s) unless the Database was opened WithLocalFiles,
// which also admits file:// URLs.
type CreateDocumentRequest struct {
	Name       string            `json:"name" validate:"required,max=255"`
	Type       core.DocumentType `json:"type" validate:"required,oneof=pdf text word url"`
	Text       *string           `json:"text,omitempty"`
	SourceURL  string            `json:"sourceUrl,omitempty" validate:"omitempty,source_url"`
	NotebookID core.ID           `json:"notebookId,omitempty"` // Optional notebook to link the document to
}

// UpdateDocumentRequest edits a document's name or text. Nil fields are kept.
type UpdateDocumentRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Text *string `json:"text,omitempty"`
}

type CreateNotebookRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4096"`
}

// GenerateContentRequest asks for a structured artifact built from documents
// linked to a notebook.
type GenerateContentRequest struct {
	NotebookID  core.ID          `json:"notebookId" validate:"required"`
	DocumentIDs []core.ID        `json:"documentIds" validate:"required,min=1,dive,required"`
	Type        core.ContentType `json:"contentType" validate:"required,oneof=study_guide faq briefing_doc timeline"`
}

func newValidator(localFiles bool) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("source_url", func(fl validator.FieldLevel) bool {
		return sourceURLAllowed(fl.Field().String(), localFiles)
	})
	return v
}

func sourceURLAllowed(raw string, localFiles bool) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return localFiles && u.Path != ""
	}
	return false
}

func (db *Database) validate(req any) error {
	if err := db.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

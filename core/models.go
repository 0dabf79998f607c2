package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences.
type ID uint64

// OwnerID identifies the user that owns an entity. It is opaque to this module;
// an empty OwnerID means the caller is unauthenticated.
type OwnerID string

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Owned is implemented by every entity that is scoped to an owner.
type Owned interface {
	OwnedBy() OwnerID
}

// DocumentType is the declared format of an uploaded document.
type DocumentType string

const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeText DocumentType = "text"
	DocumentTypeWord DocumentType = "word"
	DocumentTypeURL  DocumentType = "url"
)

// Document is an uploaded source. Its Status is driven by the ingestion pipeline.
type Document struct {
	Id        ID
	Owner     OwnerID
	Name      string
	Type      DocumentType
	SourceURL string    // Optional remote location of the raw bytes
	Text      *string   // Extracted text, nil until extraction completes
	Status    Status
	RunToken  string    // Held by the ingestion run currently processing the document
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Document) OwnedBy() OwnerID { return d.Owner }

// HasText reports whether text has already been extracted or supplied.
func (d *Document) HasText() bool {
	return d.Text != nil
}

// TextOrEmpty returns the extracted text, or "" when none is present.
func (d *Document) TextOrEmpty() string {
	if d.Text == nil {
		return ""
	}
	return *d.Text
}

// Chunk is a bounded-length span of a document paired with its embedding.
type Chunk struct {
	Id         ID
	Owner      OwnerID
	DocumentID ID
	Position   int // Order of the chunk within its document
	Text       string
	Vector     []float32
	CreatedAt  time.Time
}

func (c *Chunk) OwnedBy() OwnerID { return c.Owner }

// KnowledgeEntry holds the derived summary, facts and questions for one chunk.
type KnowledgeEntry struct {
	Id         ID
	Owner      OwnerID
	DocumentID ID
	ChunkID    ID
	Summary    string
	Facts      []string
	Questions  []string
	Vector     []float32 // Optional
	CreatedAt  time.Time
}

func (k *KnowledgeEntry) OwnedBy() OwnerID { return k.Owner }

// Notebook groups documents, chat history and generated content for one owner.
type Notebook struct {
	Id          ID
	Owner       OwnerID
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (n *Notebook) OwnedBy() OwnerID { return n.Owner }

// ContentType identifies the kind of structured artifact to generate.
type ContentType string

const (
	ContentTypeStudyGuide  ContentType = "study_guide"
	ContentTypeFAQ         ContentType = "faq"
	ContentTypeBriefingDoc ContentType = "briefing_doc"
	ContentTypeTimeline    ContentType = "timeline"
)

// ContentTypes lists every supported content type.
var ContentTypes = []ContentType{
	ContentTypeStudyGuide,
	ContentTypeFAQ,
	ContentTypeBriefingDoc,
	ContentTypeTimeline,
}

// Label returns the human readable name used in titles.
func (t ContentType) Label() string {
	switch t {
	case ContentTypeStudyGuide:
		return "Study guide"
	case ContentTypeFAQ:
		return "FAQ"
	case ContentTypeBriefingDoc:
		return "Briefing doc"
	case ContentTypeTimeline:
		return "Timeline"
	}
	return string(t)
}

// GeneratedContent is an immutable artifact synthesized from a set of documents.
type GeneratedContent struct {
	Id              ID
	Owner           OwnerID
	NotebookID      ID
	Type            ContentType
	Title           string
	Body            string
	SourceDocuments []ID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (g *GeneratedContent) OwnedBy() OwnerID { return g.Owner }

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one append-only entry in a notebook conversation.
// Messages are ordered by Id.
type ChatMessage struct {
	Id         ID
	NotebookID ID
	Owner      OwnerID
	Role       Role
	Content    string
	CreatedAt  time.Time
}

func (m *ChatMessage) OwnedBy() OwnerID { return m.Owner }

// Checkpoint records the progress of a resumable batch processor.
type Checkpoint struct {
	ProcessorType string
	LastID        ID
	// Processed counts the items handled up to and including LastID.
	Processed int
	UpdatedAt time.Time
}

// SearchResult is a chunk match with its cosine similarity to the query.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

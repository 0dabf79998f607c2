package core

import (
	"errors"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     *Document
		wantErr error
	}{
		{
			name:    "valid text document",
			doc:     &Document{Owner: "u1", Name: "notes.txt", Type: DocumentTypeText},
			wantErr: nil,
		},
		{
			name:    "valid pdf without text",
			doc:     &Document{Owner: "u1", Name: "paper.pdf", Type: DocumentTypePDF, SourceURL: "https://example.com/p.pdf"},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name:    "missing owner",
			doc:     &Document{Name: "a", Type: DocumentTypeText},
			wantErr: ErrEmptyOwner,
		},
		{
			name:    "blank name",
			doc:     &Document{Owner: "u1", Name: "  ", Type: DocumentTypeText},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "unknown type",
			doc:     &Document{Owner: "u1", Name: "a", Type: "xls"},
			wantErr: ErrInvalidDocumentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateDocument() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *Chunk
		wantErr error
	}{
		{"valid", &Chunk{Owner: "u1", Text: "some text", Vector: []float32{1}}, nil},
		{"nil", nil, ErrInvalidChunk},
		{"no owner", &Chunk{Text: "x", Vector: []float32{1}}, ErrEmptyOwner},
		{"no text", &Chunk{Owner: "u1", Vector: []float32{1}}, ErrEmptyContent},
		{"no vector", &Chunk{Owner: "u1", Text: "x"}, ErrEmptyVector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChunk(tt.chunk)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChatMessage(t *testing.T) {
	if err := ValidateChatMessage(&ChatMessage{Owner: "u1", Role: RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateChatMessage(&ChatMessage{Owner: "u1", Role: "system", Content: "hi"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if err := ValidateChatMessage(&ChatMessage{Owner: "u1", Role: RoleAssistant}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestValidateNotebook(t *testing.T) {
	if err := ValidateNotebook(&Notebook{Owner: "u1", Title: "Biology"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateNotebook(&Notebook{Owner: "u1"}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestValidateContentType(t *testing.T) {
	for _, ct := range ContentTypes {
		if err := ValidateContentType(ct); err != nil {
			t.Errorf("ValidateContentType(%q) = %v", ct, err)
		}
	}
	if err := ValidateContentType("essay"); !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
}

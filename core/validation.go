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


package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Owner must not be empty
//   - Name must not be blank
//   - Type must be one of pdf, text, word, url
//
// NOT validated:
//   - Text (nil until extraction)
//   - SourceURL (a missing URL is reported by the ingestion run)
//   - ID (0 is valid from database sequences)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.Owner == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyOwner)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return fmt.Errorf("%w: name: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	if err := ValidateDocumentType(doc.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// ValidateChunk validates a Chunk before it is persisted.
// A chunk without an embedding is never stored.
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if chunk.Owner == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyOwner)
	}
	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	if len(chunk.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyVector)
	}
	return nil
}

// ValidateNotebook validates a Notebook according to domain rules.
func ValidateNotebook(nb *Notebook) error {
	if nb == nil {
		return fmt.Errorf("%w: notebook is nil", ErrInvalidNotebook)
	}
	if nb.Owner == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNotebook, ErrEmptyOwner)
	}
	if strings.TrimSpace(nb.Title) == "" {
		return fmt.Errorf("%w: title: %w", ErrInvalidNotebook, ErrEmptyContent)
	}
	return nil
}

// ValidateChatMessage validates a ChatMessage according to domain rules.
func ValidateChatMessage(msg *ChatMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidChatMessage)
	}
	if msg.Owner == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrEmptyOwner)
	}
	if msg.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChatMessage, ErrEmptyContent)
	}
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return fmt.Errorf("%w: %w: %q", ErrInvalidChatMessage, ErrInvalidRole, msg.Role)
	}
	return nil
}

// ValidateGeneratedContent validates a GeneratedContent according to domain rules.
func ValidateGeneratedContent(gc *GeneratedContent) error {
	if gc == nil {
		return fmt.Errorf("%w: content is nil", ErrInvalidGeneratedContent)
	}
	if gc.Owner == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGeneratedContent, ErrEmptyOwner)
	}
	if err := ValidateContentType(gc.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGeneratedContent, err)
	}
	return nil
}

// ValidateDocumentType validates that a DocumentType has a known value.
func ValidateDocumentType(t DocumentType) error {
	switch t {
	case DocumentTypePDF, DocumentTypeText, DocumentTypeWord, DocumentTypeURL:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidDocumentType, t)
}

// ValidateContentType validates that a ContentType has a known value.
func ValidateContentType(t ContentType) error {
	if slices.Contains(ContentTypes, t) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidContentType, t)
}

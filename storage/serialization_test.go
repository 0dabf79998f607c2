package storage

import (
	"testing"
	"time"

	"github.com/poiesic/scholia/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.Len(t, data, 8)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestMarshalDocument_PreservesStatusVariant(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	text := "extracted"
	doc := &core.Document{
		Id:        7,
		Owner:     "u1",
		Name:      "paper.pdf",
		Type:      core.DocumentTypePDF,
		SourceURL: "https://example.com/paper.pdf",
		Text:      &text,
		Status:    core.Failed("Failed to fetch document content: Not Found"),
		CreatedAt: now,
		UpdatedAt: now,
	}

	data, err := MarshalDocument(doc)
	require.NoError(t, err)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
	assert.True(t, decoded.Status.IsFailed())
	assert.Equal(t, "Failed to fetch document content: Not Found", decoded.Status.FailureMessage())
}

func TestMarshalDocument_NilText(t *testing.T) {
	doc := &core.Document{Id: 1, Owner: "u1", Name: "x", Type: core.DocumentTypeURL, Status: core.Processing()}
	data, err := MarshalDocument(doc)
	require.NoError(t, err)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.False(t, decoded.HasText())
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalChunk(nil)
	assert.ErrorIs(t, err, ErrTruncatedData)

	_, err = UnmarshalChunk([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

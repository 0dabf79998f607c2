package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, IDFromContent(tt.content), IDFromContent(tt.content))
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	assert.NotEqual(t, IDFromContent("content1"), IDFromContent("content2"))
}

func TestDocument_Text(t *testing.T) {
	doc := &Document{}
	assert.False(t, doc.HasText())
	assert.Equal(t, "", doc.TextOrEmpty())

	text := "hello"
	doc.Text = &text
	assert.True(t, doc.HasText())
	assert.Equal(t, "hello", doc.TextOrEmpty())
}

func TestContentType_Label(t *testing.T) {
	tests := []struct {
		ct   ContentType
		want string
	}{
		{ContentTypeStudyGuide, "Study guide"},
		{ContentTypeFAQ, "FAQ"},
		{ContentTypeBriefingDoc, "Briefing doc"},
		{ContentTypeTimeline, "Timeline"},
		{ContentType("other"), "other"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ct.Label())
		})
	}
}

func TestStatus_Variants(t *testing.T) {
	p := Processing()
	assert.True(t, p.IsProcessing())
	assert.Equal(t, "", p.FailureMessage())

	r := Ready("No processable content found in document.")
	assert.True(t, r.IsReady())
	assert.Equal(t, "No processable content found in document.", r.Message())
	assert.Equal(t, "", r.FailureMessage())

	f := Failed("boom")
	assert.True(t, f.IsFailed())
	assert.Equal(t, "boom", f.FailureMessage())

	// A failed status never has an empty message.
	assert.NotEmpty(t, Failed("").Message())
}

func TestStatus_IsNotAnError(t *testing.T) {
	for _, s := range []any{Processing(), Ready(""), Failed("boom")} {
		_, isErr := s.(error)
		assert.False(t, isErr, "%v", s)
	}
}

func TestStatus_JSON(t *testing.T) {
	for _, s := range []Status{Processing(), Ready("note"), Failed("fetch failed")} {
		data, err := json.Marshal(s)
		require.NoError(t, err)

		var decoded Status
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, s, decoded)
	}

	var bad Status
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"state":"pending"}`), &bad), ErrInvalidState)
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{StateProcessing, StateReady, true},
		{StateProcessing, StateFailed, true},
		{StateFailed, StateProcessing, true},
		{StateReady, StateProcessing, false},
		{StateReady, StateFailed, false},
		{StateFailed, StateReady, false},
		{StateProcessing, StateProcessing, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

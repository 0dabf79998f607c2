package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/scholia/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T, opts ...Option) *Extractor {
	t.Helper()
	e, err := NewExtractor(append([]Option{WithTempDir(t.TempDir())}, opts...)...)
	require.NoError(t, err)
	return e
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:rPr><w:b/></w:rPr><w:t>Photosynthesis</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Plants convert </w:t></w:r><w:r><w:t>light into energy.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtract_Text(t *testing.T) {
	e := newTestExtractor(t)

	text := e.Extract(context.Background(), []byte("hello world"), core.DocumentTypeText)
	assert.Equal(t, "hello world", text)

	text = e.Extract(context.Background(), []byte("bad \xff byte"), core.DocumentTypeText)
	assert.Equal(t, "bad � byte", text)
}

func TestExtract_Word(t *testing.T) {
	e := newTestExtractor(t)

	text := e.Extract(context.Background(), buildDocx(t, sampleDocumentXML), core.DocumentTypeWord)
	assert.Equal(t, "Photosynthesis\nPlants convert light into energy.", text)
}

func TestExtract_WordNestedContent(t *testing.T) {
	const wrap = `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>%s</w:body></w:document>`

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			"hyperlink",
			`<w:p><w:r><w:t xml:space="preserve">See </w:t></w:r><w:hyperlink r:id="rId5"><w:r><w:t>the linked report</w:t></w:r></w:hyperlink><w:r><w:t>.</w:t></w:r></w:p>`,
			"See the linked report.",
		},
		{
			"table cells",
			`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Quarter</w:t></w:r></w:p></w:tc>` +
				`<w:tc><w:p><w:r><w:t>Revenue grew 40 percent.</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
			"Quarter\nRevenue grew 40 percent.",
		},
		{
			"content control",
			`<w:sdt><w:sdtPr><w:alias w:val="Author"/></w:sdtPr><w:sdtContent><w:p><w:r><w:t>Prepared by Finance</w:t></w:r></w:p></w:sdtContent></w:sdt>`,
			"Prepared by Finance",
		},
		{
			"tabs and breaks",
			`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
				`<w:r><w:t>Total</w:t><w:tab/><w:t>12</w:t><w:br/><w:t>Audited</w:t></w:r></w:p>`,
			"Total\t12\nAudited",
		},
		{
			"revisions",
			`<w:p><w:ins><w:r><w:t>new figure</w:t></w:r></w:ins><w:del><w:r><w:delText>old figure</w:delText></w:r></w:del></w:p>`,
			"new figure",
		},
	}

	e := newTestExtractor(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := e.ExtractText(context.Background(), buildDocx(t, fmt.Sprintf(wrap, tt.body)), core.DocumentTypeWord)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, text)
		})
	}

	t.Run("mixed document", func(t *testing.T) {
		body := tests[0].body + tests[1].body + tests[2].body
		text, err := e.ExtractText(context.Background(), buildDocx(t, fmt.Sprintf(wrap, body)), core.DocumentTypeWord)
		require.NoError(t, err)
		assert.Equal(t, "See the linked report.\nQuarter\nRevenue grew 40 percent.\nPrepared by Finance", text)
	})
}

func TestExtract_WordErrors(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("not a zip", func(t *testing.T) {
		assert.Equal(t, ErrorPlaceholder, e.Extract(context.Background(), []byte("plain"), core.DocumentTypeWord))
	})

	t.Run("missing document part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		_, err := zw.Create("word/styles.xml")
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = e.ExtractText(context.Background(), buf.Bytes(), core.DocumentTypeWord)
		assert.ErrorIs(t, err, errNoDocumentPart)
	})

	t.Run("malformed xml", func(t *testing.T) {
		data := buildDocx(t, "<w:document><w:body>")
		assert.Equal(t, ErrorPlaceholder, e.Extract(context.Background(), data, core.DocumentTypeWord))
	})
}

func TestExtract_URL(t *testing.T) {
	e := newTestExtractor(t)

	t.Run("plain body", func(t *testing.T) {
		text := e.Extract(context.Background(), []byte("just some text"), core.DocumentTypeURL)
		assert.Equal(t, "just some text", text)
	})

	t.Run("html body", func(t *testing.T) {
		html := `<!DOCTYPE html><html><head><title>Cells</title></head><body>
<nav>Home | About</nav>
<article><h1>Cells</h1>
<p>The cell is the basic structural and functional unit of all known organisms.
Cells consist of cytoplasm enclosed within a membrane, which contains many biomolecules
such as proteins, DNA and RNA, as well as many small molecules of nutrients and metabolites.</p>
<p>Most cells are only visible under a microscope. Cells emerged on Earth about four billion years ago.</p>
</article></body></html>`
		text := e.Extract(context.Background(), []byte(html), core.DocumentTypeURL)
		assert.Contains(t, text, "basic structural and functional unit")
		assert.NotContains(t, text, "<p>")
	})
}

func TestExtract_PDFInvalid(t *testing.T) {
	e := newTestExtractor(t)
	assert.Equal(t, ErrorPlaceholder, e.Extract(context.Background(), []byte("%PDF-1.4 garbage"), core.DocumentTypePDF))
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := newTestExtractor(t)

	assert.Equal(t, UnsupportedPlaceholder, e.Extract(context.Background(), []byte("x"), core.DocumentType("xlsx")))

	_, err := e.ExtractText(context.Background(), []byte("x"), core.DocumentType("xlsx"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtract_Timeout(t *testing.T) {
	e := newTestExtractor(t, WithTimeout(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, ErrorPlaceholder, e.Extract(ctx, []byte("text"), core.DocumentTypeText))
}

func TestNewExtractor_InvalidTimeout(t *testing.T) {
	_, err := NewExtractor(WithTimeout(0))
	assert.Error(t, err)
}

func TestDecodeContentStream(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		expected string
	}{
		{
			name:     "show and move",
			stream:   "BT /F1 12 Tf 72 712 Td (Hello) Tj 0 -14 Td [(Wor) -50 (ld) -300 (again)] TJ ET",
			expected: "Hello\nWorld again",
		},
		{
			name:     "hex string",
			stream:   "BT <48656C6C6F> Tj ET",
			expected: "Hello",
		},
		{
			name:     "escapes and nesting",
			stream:   `BT (a\(b\) \(c\)) Tj T* (tab\there) Tj ET`,
			expected: "a(b) (c)\ntab\there",
		},
		{
			name:     "octal escape",
			stream:   `BT (caf\351) Tj ET`,
			expected: "café",
		},
		{
			name:     "quote operators start new lines",
			stream:   "BT (one) Tj (two) ' 1 2 (three) \" ET",
			expected: "one\ntwo\nthree",
		},
		{
			name:     "utf16 string",
			stream:   "BT <FEFF00480069> Tj ET",
			expected: "Hi",
		},
		{
			name:     "graphics only",
			stream:   "q 1 0 0 1 0 0 cm 0 0 100 100 re f Q",
			expected: "",
		},
		{
			name:     "comments and dictionaries",
			stream:   "% comment (ignored) Tj\n/Span <</MCID 0>> BDC BT (kept) Tj ET EMC",
			expected: "kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeContentStream([]byte(tt.stream)))
		})
	}
}

func TestPageNumber(t *testing.T) {
	n, ok := pageNumber("document_Content_page_3.txt")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = pageNumber("page_12")
	require.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = pageNumber("metadata.xml")
	assert.False(t, ok)
}

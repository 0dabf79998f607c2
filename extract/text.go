package extract

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// plainText decodes data as UTF-8, replacing invalid sequences.
func plainText(data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), "�"), nil
}

// webText handles fetched URL bodies. HTML pages are reduced to their
// readable article text; anything else is treated as plain text.
func webText(data []byte) (string, error) {
	if !looksLikeHTML(data) {
		return plainText(data)
	}
	html, _ := plainText(data)
	article, err := readability.FromReader(strings.NewReader(html), &url.URL{})
	if err != nil || strings.TrimSpace(article.TextContent) == "" {
		return html, nil
	}
	return strings.TrimSpace(article.TextContent), nil
}

func looksLikeHTML(data []byte) bool {
	if strings.HasPrefix(http.DetectContentType(data), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfText writes data to a scratch file, lets pdfcpu dump every page's
// content stream and decodes the text-showing operators of each page.
func (e *Extractor) pdfText(data []byte) (string, error) {
	workDir, err := os.MkdirTemp(e.tempDir, "scholia-pdf-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inFile := filepath.Join(workDir, "document.pdf")
	if err := os.WriteFile(inFile, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write temp PDF file: %w", err)
	}

	pdfCtx, err := api.ReadContextFile(inFile)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF context: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(outDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create page dir: %w", err)
	}
	if err := api.ExtractContentFile(inFile, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("failed to extract PDF content: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return "", err
	}
	pageTexts := make(map[int]string, len(files))
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		pageNum, ok := pageNumber(file.Name())
		if !ok {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, file.Name()))
		if err != nil {
			return "", err
		}
		pageTexts[pageNum] += decodeContentStream(content)
	}

	pages := make([]string, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		pages = append(pages, strings.TrimSpace(pageTexts[pageNum]))
	}
	return strings.Join(pages, "\n"), nil
}

// pageNumber recovers the page from pdfcpu's dump file names, which end in
// "page_<n>" or "page_<n>.txt".
func pageNumber(name string) (int, bool) {
	idx := strings.LastIndex(strings.ToLower(name), "page_")
	if idx < 0 {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(name[idx+len("page_"):], "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

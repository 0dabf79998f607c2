package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var errNoDocumentPart = errors.New("word/document.xml not found")

// docxText returns the paragraphs of a DOCX package, one per line,
// with all formatting dropped.
func docxText(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a docx package: %w", err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return parseDocumentXML(content)
	}
	return "", errNoDocumentPart
}

// parseDocumentXML walks word/document.xml token by token. Text runs are
// collected wherever they appear, so hyperlinks, tables, content controls
// and inserted revisions are kept. Every closed paragraph ends a line.
// Deleted revisions and field codes live in other elements and are skipped.
func parseDocumentXML(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var result strings.Builder
	inText := false
	runDepth := 0 // tab stops in paragraph properties are also named tab
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document.xml: %w", err)
		}

		switch el := token.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = true
			case "tab":
				if runDepth > 0 {
					result.WriteString("\t")
				}
			case "br", "cr":
				if runDepth > 0 {
					result.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "r":
				runDepth--
			case "t":
				inText = false
			case "p":
				result.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				result.Write(el)
			}
		}
	}
	return strings.TrimSpace(result.String()), nil
}

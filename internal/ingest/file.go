// Package ingest turns uploaded files and web pages into plain study text.
package ingest

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/abhisek/smartquiz/internal/logging"
)

// UnsupportedTypeError is returned for files that are neither text nor PDF.
type UnsupportedTypeError struct {
	Name        string
	ContentType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s (%s)", e.Name, e.ContentType)
}

// ExtractFile returns the text of an uploaded file. The type is decided by
// extension first and then by sniffing the content.
func ExtractFile(name string, data []byte) (string, error) {
	logger := logging.For("ingest")
	ext := strings.ToLower(filepath.Ext(name))
	ctype := http.DetectContentType(data)
	logger.Info("extracting text from file", "name", name, "type", ctype, "bytes", len(data))

	switch {
	case ext == ".txt" || (ext == "" && strings.HasPrefix(ctype, "text/plain")):
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: file is not valid UTF-8", name)
		}
		return string(data), nil
	case ext == ".pdf" || ctype == "application/pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		logger.Info("extracted text from pdf", "name", name, "chars", len(text))
		return text, nil
	default:
		return "", &UnsupportedTypeError{Name: name, ContentType: ctype}
	}
}

// extractPDF joins the plain text of every page with blank lines. Pages
// without text are skipped.
func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading pdf page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

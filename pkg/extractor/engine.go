package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// ProcessingError marks a document that cannot be extracted. It is
// permanent: retrying the same bytes will fail the same way, so callers
// should skip the page rather than retry.
type ProcessingError struct {
	Message string
}

func (e *ProcessingError) Error() string {
	return e.Message
}

// Extractor turns raw document bytes into plain text plus metadata.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (string, map[string]string, error)
}

// Engine dispatches to a concrete extractor based on the response
// Content-Type. Unknown types fall back to plain text.
type Engine struct {
	html  Extractor
	pdf   Extractor
	docx  Extractor
	image Extractor
	text  Extractor
}

func NewEngine() *Engine {
	return &Engine{
		html:  &HTMLExtractor{},
		pdf:   &PDFExtractor{MaxPages: 200},
		docx:  &DOCXExtractor{},
		image: NewOCRExtractor(),
		text:  &TextExtractor{},
	}
}

// Extract picks an extractor by MIME type. contentType may carry
// parameters ("text/html; charset=utf-8").
func (e *Engine) Extract(ctx context.Context, content []byte, contentType string) (string, map[string]string, error) {
	mime := contentType
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))

	switch {
	case mime == "text/html" || mime == "application/xhtml+xml":
		return e.html.Extract(ctx, content)
	case mime == "application/pdf":
		return e.pdf.Extract(ctx, content)
	case mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" || mime == "application/msword":
		return e.docx.Extract(ctx, content)
	case strings.HasPrefix(mime, "image/"):
		return e.image.Extract(ctx, content)
	default:
		return e.text.Extract(ctx, content)
	}
}

// TextExtractor passes plain text through unchanged.
type TextExtractor struct{}

func (t *TextExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	text := string(content)
	metadata := map[string]string{
		"type":       "text",
		"characters": fmt.Sprintf("%d", len(text)),
		"lines":      fmt.Sprintf("%d", bytes.Count(content, []byte("\n"))+1),
	}
	return text, metadata, nil
}

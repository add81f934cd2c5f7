package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCXExtractor reads Word documents linked from admission pages.
type DOCXExtractor struct{}

func (d *DOCXExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	metadata := map[string]string{
		"type": "docx",
		"size": fmt.Sprintf("%d", len(content)),
	}

	// DOCX is a ZIP container; the PK signature is the cheapest validity check.
	if len(content) < 4 || content[0] != 0x50 || content[1] != 0x4B {
		return "", metadata, &ProcessingError{Message: "not a DOCX document, missing ZIP signature"}
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", metadata, &ProcessingError{Message: fmt.Sprintf("failed to parse DOCX: %v", err)}
	}

	text := doc.Editable().GetContent()
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)

	metadata["text_length"] = fmt.Sprintf("%d", len(text))
	metadata["word_count"] = fmt.Sprintf("%d", len(strings.Fields(text)))

	if text == "" {
		return "", metadata, &ProcessingError{Message: "DOCX document contains no extractable text"}
	}
	return text, metadata, nil
}

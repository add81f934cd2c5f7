package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls plain text out of admission-plan PDFs. Pages that
// fail to decode are skipped so one broken page does not lose the rest of
// the document.
type PDFExtractor struct {
	MaxPages int
}

func (p *PDFExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	metadata := map[string]string{
		"type": "pdf",
		"size": fmt.Sprintf("%d", len(content)),
	}

	if len(content) < 4 || string(content[:4]) != "%PDF" {
		return "", metadata, &ProcessingError{
			Message: fmt.Sprintf("not a PDF document, starts with %q", string(content[:min(16, len(content))])),
		}
	}

	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", metadata, &ProcessingError{Message: fmt.Sprintf("failed to parse PDF: %v", err)}
	}

	var builder strings.Builder
	extracted := 0
	for i := 1; i <= doc.NumPage(); i++ {
		if p.MaxPages > 0 && extracted >= p.MaxPages {
			break
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(pageText)
		builder.WriteString("\n\n")
		extracted++
	}

	text := strings.TrimSpace(builder.String())
	metadata["pages"] = fmt.Sprintf("%d", doc.NumPage())
	metadata["extracted_pages"] = fmt.Sprintf("%d", extracted)
	metadata["text_length"] = fmt.Sprintf("%d", len(text))

	if text == "" {
		return "", metadata, &ProcessingError{Message: "PDF contains no extractable text"}
	}
	return text, metadata, nil
}

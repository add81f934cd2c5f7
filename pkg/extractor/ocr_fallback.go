//go:build !ocr
// +build !ocr

package extractor

import (
	"context"
	"fmt"
)

// OCRExtractor without the ocr build tag reports images as unprocessable
// instead of pulling in the Tesseract cgo dependency.
type OCRExtractor struct {
	Language string
}

func NewOCRExtractor() *OCRExtractor {
	return &OCRExtractor{Language: "vie+eng"}
}

func (o *OCRExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	metadata := map[string]string{
		"type":     "ocr",
		"size":     fmt.Sprintf("%d", len(content)),
		"language": o.Language,
		"engine":   "unavailable",
	}
	return "", metadata, &ProcessingError{
		Message: "OCR support requires building with the ocr tag and a local Tesseract install",
	}
}

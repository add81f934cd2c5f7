//go:build ocr
// +build ocr

package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCRExtractor recognizes text in scanned admission notices. Requires a
// local Tesseract install with the Vietnamese language pack.
type OCRExtractor struct {
	Language             string
	PageSegmentationMode gosseract.PageSegMode
}

func NewOCRExtractor() *OCRExtractor {
	return &OCRExtractor{
		Language:             "vie+eng",
		PageSegmentationMode: gosseract.PSM_AUTO,
	}
}

func (o *OCRExtractor) Extract(ctx context.Context, content []byte) (string, map[string]string, error) {
	metadata := map[string]string{
		"type":     "ocr",
		"size":     fmt.Sprintf("%d", len(content)),
		"language": o.Language,
		"engine":   "tesseract",
	}

	if len(content) == 0 {
		return "", metadata, &ProcessingError{Message: "no image content provided for OCR"}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(o.Language); err != nil {
		return "", metadata, &ProcessingError{
			Message: fmt.Sprintf("failed to set OCR language %q: %v", o.Language, err),
		}
	}
	if err := client.SetPageSegMode(o.PageSegmentationMode); err != nil {
		return "", metadata, &ProcessingError{
			Message: fmt.Sprintf("failed to set page segmentation mode: %v", err),
		}
	}
	if err := client.SetImageFromBytes(content); err != nil {
		return "", metadata, &ProcessingError{
			Message: fmt.Sprintf("failed to load OCR image: %v", err),
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", metadata, &ProcessingError{Message: fmt.Sprintf("OCR failed: %v", err)}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)

	if confidence, err := client.GetMeanConfidence(); err == nil {
		metadata["confidence"] = fmt.Sprintf("%.2f", confidence)
	}
	metadata["text_length"] = fmt.Sprintf("%d", len(text))

	if text == "" {
		return "", metadata, &ProcessingError{Message: "OCR found no text in the image"}
	}
	return text, metadata, nil
}

package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineDispatchByContentType(t *testing.T) {
	engine := NewEngine()
	ctx := context.Background()

	text, metadata, err := engine.Extract(ctx, []byte("plain content"), "text/plain; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "plain content", text)
	assert.Equal(t, "text", metadata["type"])

	// Unknown types degrade to plain text instead of failing.
	text, metadata, err = engine.Extract(ctx, []byte("raw"), "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "raw", text)
	assert.Equal(t, "text", metadata["type"])

	_, metadata, err = engine.Extract(ctx, []byte("not a pdf"), "application/pdf")
	require.Error(t, err)
	assert.Equal(t, "pdf", metadata["type"])
}

func TestHTMLExtractor(t *testing.T) {
	page := []byte(`<html><head><title>Tuyển sinh CTU</title>
<script>var x = 1;</script></head>
<body>
<nav>Trang chủ | Giới thiệu</nav>
<h1>Thông tin tuyển sinh 2025</h1>
<p>Trường Đại học Cần Thơ tuyển sinh theo 6 phương thức.</p>
<p>Xem <a href="https://tuyensinh.ctu.edu.vn/hoc-phi">học phí</a> tại đây.</p>
<footer>Bản quyền CTU</footer>
</body></html>`)

	extractor := &HTMLExtractor{}
	text, metadata, err := extractor.Extract(context.Background(), page)
	require.NoError(t, err)

	assert.Equal(t, "Tuyển sinh CTU", metadata["title"])
	assert.Contains(t, text, "Thông tin tuyển sinh 2025")
	assert.Contains(t, text, "6 phương thức")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "Trang chủ")
	assert.NotContains(t, text, "Bản quyền")

	// Anchors are rewritten to markdown so link discovery still works on
	// the extracted text.
	assert.Contains(t, text, "[học phí](https://tuyensinh.ctu.edu.vn/hoc-phi)")
}

func TestPDFExtractorRejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{name: "empty", content: []byte{}},
		{name: "nil", content: nil},
		{name: "not a pdf", content: []byte("This is not a PDF file")},
	}

	extractor := &PDFExtractor{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, metadata, err := extractor.Extract(context.Background(), tt.content)
			require.Error(t, err)
			assert.Empty(t, text)
			assert.Equal(t, "pdf", metadata["type"])

			var procErr *ProcessingError
			assert.ErrorAs(t, err, &procErr)
		})
	}
}

func TestDOCXExtractorRejectsNonZipContent(t *testing.T) {
	extractor := &DOCXExtractor{}
	_, metadata, err := extractor.Extract(context.Background(), []byte("plain text, no zip"))
	require.Error(t, err)
	assert.Equal(t, "docx", metadata["type"])

	var procErr *ProcessingError
	assert.ErrorAs(t, err, &procErr)
}

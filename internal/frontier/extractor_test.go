package frontier

import (
	"testing"

	"github.com/ctu-chatbot/harvester/pkg/qa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinksMarkdownAndBare(t *testing.T) {
	text := `# Tuyển sinh 2025

Xem [danh mục ngành](https://tuyensinh.ctu.edu.vn/nganh) để biết thêm.
Trang chính: https://tuyensinh.ctu.edu.vn/, và trang học phí
https://tuyensinh.ctu.edu.vn/hoc-phi.`

	candidates := ExtractLinks(text)
	require.Len(t, candidates, 3)

	assert.Equal(t, "https://tuyensinh.ctu.edu.vn/nganh", candidates[0].URL)
	assert.Equal(t, "danh mục ngành", candidates[0].AnchorText)
	assert.Equal(t, qa.DiscoveryMarkdownLink, candidates[0].Discovery)

	// Bare URLs keep first-occurrence order and use the URL as anchor text.
	assert.Equal(t, "https://tuyensinh.ctu.edu.vn/", candidates[1].URL)
	assert.Equal(t, qa.DiscoveryBareURL, candidates[1].Discovery)

	// Trailing sentence punctuation must not leak into the target.
	assert.Equal(t, "https://tuyensinh.ctu.edu.vn/hoc-phi", candidates[2].URL)
}

func TestExtractLinksDedupAgainstMarkdown(t *testing.T) {
	// The same URL as a markdown link and as bare text yields one candidate.
	text := `[Xem thêm](https://tuyensinh.ctu.edu.vn/hoc-phi) hoặc truy cập
https://tuyensinh.ctu.edu.vn/hoc-phi để biết chi tiết.`

	candidates := ExtractLinks(text)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://tuyensinh.ctu.edu.vn/hoc-phi", candidates[0].URL)
	assert.Equal(t, qa.DiscoveryMarkdownLink, candidates[0].Discovery)
	assert.Equal(t, "Xem thêm", candidates[0].AnchorText)
}

func TestExtractLinksNoDuplicateURLs(t *testing.T) {
	text := `https://ctu.edu.vn/a https://ctu.edu.vn/b https://ctu.edu.vn/a
[x](https://ctu.edu.vn/b) https://ctu.edu.vn/a,`

	candidates := ExtractLinks(text)
	seen := make(map[string]bool)
	for _, c := range candidates {
		assert.False(t, seen[c.URL], "duplicate candidate for %s", c.URL)
		seen[c.URL] = true
	}
	assert.Len(t, candidates, 2)
}

func TestExtractLinksTrailingPunctuation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"comma", "xem https://ctu.edu.vn/nganh, nhé", "https://ctu.edu.vn/nganh"},
		{"period", "trang https://ctu.edu.vn/nganh.", "https://ctu.edu.vn/nganh"},
		{"question mark", "đã xem https://ctu.edu.vn/nganh?", "https://ctu.edu.vn/nganh"},
		{"stacked", "cuối câu https://ctu.edu.vn/nganh);!", "https://ctu.edu.vn/nganh"},
		{"query string intact", "https://ctu.edu.vn/tim?nganh=cntt&nam=2025 đây", "https://ctu.edu.vn/tim?nganh=cntt&nam=2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates := ExtractLinks(tt.text)
			require.Len(t, candidates, 1)
			assert.Equal(t, tt.want, candidates[0].URL)
		})
	}
}

func TestExtractLinksSkipsRelativeMarkdownTargets(t *testing.T) {
	candidates := ExtractLinks(`[nội bộ](/gioi-thieu) và [ngoài](https://ctu.edu.vn/x)`)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://ctu.edu.vn/x", candidates[0].URL)
}

func TestExtractLinksEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractLinks(""))
	assert.Empty(t, ExtractLinks("không có liên kết nào ở đây"))
}

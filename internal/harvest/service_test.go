package harvest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ctu-chatbot/harvester/internal/dataset"
	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages map[string]string
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetch.Result, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("unexpected status 404 for %s", url)
	}
	return &fetch.Result{
		URL:         url,
		StatusCode:  200,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(body),
		FetchedAt:   time.Now(),
	}, nil
}

type passthroughExtractor struct{}

func (passthroughExtractor) Extract(ctx context.Context, content []byte, contentType string) (string, map[string]string, error) {
	return string(content), nil, nil
}

// fakeCompleter answers with a canned QA payload per page, matched on the
// prompt's source field so link URLs inside the page body never match.
type fakeCompleter struct {
	answers map[string]string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	for sourceURL, answer := range f.answers {
		if strings.Contains(prompt, fmt.Sprintf("%q: %q", "source", sourceURL)) {
			return answer, nil
		}
	}
	return `{"qa_pairs": []}`, nil
}

func qaJSON(question, answer string) string {
	return fmt.Sprintf(`{"qa_pairs":[{"question":%q,"answer":%q}]}`, question, answer)
}

func testHarvestConfig(seed string) *config.HarvestConfig {
	return &config.HarvestConfig{
		SeedURL:         seed,
		MaxDepth:        3,
		MaxURLsPerLevel: 10,
		MinContentSize:  10,
		MaxPromptChars:  4000,
		SkipExtensions:  []string{".docx", ".pdf"},
	}
}

func newTestService(cfg *config.HarvestConfig, fetcher Fetcher, completer *fakeCompleter) (*Service, *dataset.MemoryRepository) {
	repo := dataset.NewMemoryRepository()
	merger := dataset.NewMerger(repo, normalize.NewIntentClassifier(nil), config.DatasetConfig{})
	return NewService(cfg, fetcher, passthroughExtractor{}, completer, merger, ""), repo
}

func TestRunFollowsLinksAndMergesAcrossPages(t *testing.T) {
	seed := "https://tuyensinh.ctu.edu.vn/"
	fetcher := &fakeFetcher{pages: map[string]string{
		seed: `Trang tuyển sinh chính thức của Trường Đại học Cần Thơ.
Xem [Học phí](https://tuyensinh.ctu.edu.vn/hoc-phi) và
[Chỉ tiêu tuyển sinh](https://tuyensinh.ctu.edu.vn/chi-tieu).
Tài liệu: [Đề án](https://tuyensinh.ctu.edu.vn/de-an.docx)
Liên kết ngoài: [Bộ GD](https://moet.gov.vn/tin-tuc)`,
		"https://tuyensinh.ctu.edu.vn/hoc-phi":  "Nội dung trang học phí của Trường Đại học Cần Thơ năm 2025.",
		"https://tuyensinh.ctu.edu.vn/chi-tieu": "Nội dung trang chỉ tiêu tuyển sinh của Trường Đại học Cần Thơ.",
	}}
	// chi-tieu ranks priority 1 and is harvested first; its record wins
	// the dedup against the hoc-phi variant.
	completer := &fakeCompleter{answers: map[string]string{
		"https://tuyensinh.ctu.edu.vn/chi-tieu": qaJSON("Học phí ngành X là bao nhiêu?", "15 triệu đồng."),
		"https://tuyensinh.ctu.edu.vn/hoc-phi":  qaJSON("học phí   ngành x là bao nhiêu?", "Khoảng 15 triệu đồng."),
	}}

	service, repo := newTestService(testHarvestConfig(seed), fetcher, completer)
	summary, err := service.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.PagesVisited)
	assert.Equal(t, 3, summary.Successful)
	assert.Equal(t, 0, summary.Failed)

	// The .docx link and the external domain never get fetched.
	for _, url := range fetcher.calls {
		assert.NotContains(t, url, ".docx")
		assert.NotContains(t, url, "moet.gov.vn")
	}

	// Both child pages produced the same question; the dataset keeps one.
	assert.Equal(t, 1, summary.RecordsAdded)
	assert.Equal(t, 1, summary.DuplicatesSkipped)

	bucket, err := repo.Load(context.Background(), "hoi_hoc_phi")
	require.NoError(t, err)
	require.Len(t, bucket.Records, 1)
	assert.Equal(t, "Học phí ngành X là bao nhiêu?", bucket.Records[0].Question)
}

func TestRunRanksChildPages(t *testing.T) {
	seed := "https://tuyensinh.ctu.edu.vn/"
	fetcher := &fakeFetcher{pages: map[string]string{
		seed: `Cổng thông tin tuyển sinh Trường Đại học Cần Thơ.
[Thông tin liên hệ](https://tuyensinh.ctu.edu.vn/lien-he)
[Chỉ tiêu 2025](https://tuyensinh.ctu.edu.vn/chi-tieu)`,
		"https://tuyensinh.ctu.edu.vn/lien-he":  "Trang liên hệ tư vấn tuyển sinh Trường Đại học Cần Thơ.",
		"https://tuyensinh.ctu.edu.vn/chi-tieu": "Trang chỉ tiêu tuyển sinh Trường Đại học Cần Thơ năm 2025.",
	}}

	cfg := testHarvestConfig(seed)
	cfg.MaxDepth = 2
	service, _ := newTestService(cfg, fetcher, &fakeCompleter{})

	_, err := service.Run(context.Background())
	require.NoError(t, err)

	// chi-tieu classifies priority 1, lien-he priority 3.
	require.Len(t, fetcher.calls, 3)
	assert.Equal(t, "https://tuyensinh.ctu.edu.vn/chi-tieu", fetcher.calls[1])
	assert.Equal(t, "https://tuyensinh.ctu.edu.vn/lien-he", fetcher.calls[2])
}

func TestRunFailedPageDoesNotAbort(t *testing.T) {
	seed := "https://tuyensinh.ctu.edu.vn/"
	fetcher := &fakeFetcher{pages: map[string]string{
		seed: `Trang chủ tuyển sinh Trường Đại học Cần Thơ.
[Học phí](https://tuyensinh.ctu.edu.vn/hoc-phi)
[Trang hỏng](https://tuyensinh.ctu.edu.vn/khong-ton-tai)`,
		"https://tuyensinh.ctu.edu.vn/hoc-phi": "Nội dung học phí Trường Đại học Cần Thơ năm 2025.",
	}}
	completer := &fakeCompleter{answers: map[string]string{
		"https://tuyensinh.ctu.edu.vn/hoc-phi": qaJSON("Học phí là bao nhiêu?", "15 triệu."),
	}}

	cfg := testHarvestConfig(seed)
	cfg.MaxDepth = 2
	service, _ := newTestService(cfg, fetcher, completer)

	summary, err := service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PagesVisited)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.RecordsAdded)
}

func TestRunRespectsMaxURLsPerLevel(t *testing.T) {
	seed := "https://tuyensinh.ctu.edu.vn/"
	body := "Trang chủ tuyển sinh Trường Đại học Cần Thơ.\n"
	pages := map[string]string{}
	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://tuyensinh.ctu.edu.vn/trang-%d", i)
		body += fmt.Sprintf("[Trang %d](%s)\n", i, url)
		pages[url] = "Nội dung trang con của Trường Đại học Cần Thơ."
	}
	pages[seed] = body

	cfg := testHarvestConfig(seed)
	cfg.MaxDepth = 2
	cfg.MaxURLsPerLevel = 2
	service, _ := newTestService(cfg, &fakeFetcher{pages: pages}, &fakeCompleter{})

	summary, err := service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PagesVisited)
}

func TestRunCancelledMidwayKeepsPartialResults(t *testing.T) {
	seed := "https://tuyensinh.ctu.edu.vn/"
	fetcher := &fakeFetcher{pages: map[string]string{
		seed: `Trang chủ tuyển sinh Trường Đại học Cần Thơ.
[Học phí](https://tuyensinh.ctu.edu.vn/hoc-phi)`,
	}}

	cfg := testHarvestConfig(seed)
	service, _ := newTestService(cfg, fetcher, &fakeCompleter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := service.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, summary)
	assert.Equal(t, 0, summary.PagesVisited)
}

func TestHarvestPageTooSmall(t *testing.T) {
	seed := "https://tuyensinh.ctu.edu.vn/"
	fetcher := &fakeFetcher{pages: map[string]string{seed: "ngắn"}}

	service, _ := newTestService(testHarvestConfig(seed), fetcher, &fakeCompleter{})
	_, err := service.HarvestPage(context.Background(), seed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}

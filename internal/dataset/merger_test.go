package dataset

import (
	"context"
	"testing"

	"github.com/ctu-chatbot/harvester/internal/normalize"
	"github.com/ctu-chatbot/harvester/pkg/config"
	"github.com/ctu-chatbot/harvester/pkg/qa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMerger(cfg config.DatasetConfig) (*Merger, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewMerger(repo, normalize.NewIntentClassifier(nil), cfg), repo
}

func record(question, answer string) qa.Record {
	return qa.Record{
		Question: question,
		Answer:   answer,
		Category: "general",
		Priority: 2,
		Source:   "https://tuyensinh.ctu.edu.vn/",
	}
}

func TestMergeBatchRoutesByIntent(t *testing.T) {
	merger, repo := newTestMerger(config.DatasetConfig{})

	result, err := merger.MergeBatch(context.Background(), []qa.Record{
		record("Học phí ngành CNTT là bao nhiêu?", "Khoảng 15 triệu đồng mỗi năm học."),
		record("Địa chỉ liên hệ tư vấn tuyển sinh?", "Hotline 0292 3872 728, email tuyensinh@ctu.edu.vn."),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Duplicates)

	tuition, err := repo.Load(context.Background(), "hoi_hoc_phi")
	require.NoError(t, err)
	require.Len(t, tuition.Records, 1)
	assert.Equal(t, 1, tuition.Count)

	contact, err := repo.Load(context.Background(), "hoi_lien_he")
	require.NoError(t, err)
	assert.Len(t, contact.Records, 1)
}

func TestMergeBatchIdempotent(t *testing.T) {
	merger, repo := newTestMerger(config.DatasetConfig{})
	batch := []qa.Record{
		record("Học phí ngành X là bao nhiêu?", "15 triệu đồng."),
		record("Trường có những ngành đào tạo nào?", "CTU đào tạo hơn 100 ngành bậc đại học."),
	}

	first, err := merger.MergeBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Added)

	second, err := merger.MergeBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 2, second.Duplicates)

	ids, err := repo.List(context.Background())
	require.NoError(t, err)
	total := 0
	for _, id := range ids {
		bucket, err := repo.Load(context.Background(), id)
		require.NoError(t, err)
		total += len(bucket.Records)
	}
	assert.Equal(t, 2, total)
}

func TestMergeBatchDedupsAcrossCaseAndWhitespace(t *testing.T) {
	merger, _ := newTestMerger(config.DatasetConfig{})

	// Two pages produce the same question with different capitalization and
	// spacing; the combined dataset keeps exactly one record.
	_, err := merger.MergeBatch(context.Background(), []qa.Record{
		record("Học phí ngành X là bao nhiêu?", "15 triệu."),
	})
	require.NoError(t, err)
	result, err := merger.MergeBatch(context.Background(), []qa.Record{
		record("học phí   ngành x LÀ bao nhiêu?", "Khoảng 15 triệu."),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 1, result.Duplicates)

	combined, err := merger.BuildCombined(context.Background())
	require.NoError(t, err)
	require.Len(t, combined.Records, 1)
	assert.Equal(t, "Học phí ngành X là bao nhiêu?", combined.Records[0].Question)
}

func TestMergeBatchSkipsInvalidRecords(t *testing.T) {
	merger, _ := newTestMerger(config.DatasetConfig{})

	result, err := merger.MergeBatch(context.Background(), []qa.Record{
		{Question: "   ", Answer: "trimmed away", Priority: 2},
		record("Học phí là bao nhiêu?", "15 triệu."),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
}

func TestBuildCombinedAggregates(t *testing.T) {
	merger, _ := newTestMerger(config.DatasetConfig{})

	tuition := record("Học phí ngành CNTT?", "15 triệu.")
	tuition.Category = "hoc_phi"
	tuition.Priority = 1
	contact := record("Số điện thoại tư vấn liên hệ?", "0292 3872 728.")
	contact.Category = "lien_he"
	contact.Priority = 3

	_, err := merger.MergeBatch(context.Background(), []qa.Record{tuition, contact})
	require.NoError(t, err)

	combined, err := merger.BuildCombined(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, combined.Metadata.TotalRecords)
	assert.Equal(t, 1, combined.Categories["hoc_phi"])
	assert.Equal(t, 1, combined.Categories["lien_he"])
	assert.Equal(t, 1, combined.Priorities[1])
	assert.Equal(t, 1, combined.Priorities[3])
	assert.Equal(t, 1, combined.Metadata.Intents["hoi_hoc_phi"])

	examples := combined.TrainingExamples()
	require.Len(t, examples, 2)
	assert.Equal(t, combined.Records[0].Question, examples[0].Question)
	assert.Equal(t, combined.Records[0].Priority, examples[0].Priority)
}

func TestFuzzyDedupOptional(t *testing.T) {
	near := []qa.Record{
		record("Học phí ngành Công nghệ thông tin là bao nhiêu?", "15 triệu."),
		record("Học phí ngành Công nghệ thông tin là bao nhiêu vậy?", "Khoảng 15 triệu."),
	}

	exact, _ := newTestMerger(config.DatasetConfig{})
	result, err := exact.MergeBatch(context.Background(), near)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added, "exact-match dedup keeps near-duplicates")

	fuzzy, _ := newTestMerger(config.DatasetConfig{EnableFuzzyDedup: true, FuzzyThreshold: 0.85})
	result, err = fuzzy.MergeBatch(context.Background(), near)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Duplicates)
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("học phí", "học phí"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))

	ratio := Similarity("học phí ngành x là bao nhiêu?", "học phí ngành x là bao nhiêu vậy?")
	assert.Greater(t, ratio, 0.85)

	low := Similarity("học phí ngành x?", "lịch thi đánh giá năng lực 2025")
	assert.Less(t, low, 0.5)
}

func TestMemoryRepositoryIsolation(t *testing.T) {
	repo := NewMemoryRepository()
	bucket := &Bucket{Intent: "hoi_hoc_phi", Count: 1, Records: []qa.Record{record("Q?", "A.")}}
	require.NoError(t, repo.Save(context.Background(), bucket))

	loaded, err := repo.Load(context.Background(), "hoi_hoc_phi")
	require.NoError(t, err)
	loaded.Records[0].Question = "mutated"

	again, err := repo.Load(context.Background(), "hoi_hoc_phi")
	require.NoError(t, err)
	assert.Equal(t, "Q?", again.Records[0].Question)

	missing, err := repo.Load(context.Background(), "hoi_nganh_hoc")
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing.Records)
}

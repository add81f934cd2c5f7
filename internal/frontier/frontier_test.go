package frontier

import (
	"testing"

	"github.com/ctu-chatbot/harvester/pkg/qa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontierDedupFirstSeenWins(t *testing.T) {
	f := NewFrontier()

	added := f.Add(
		qa.LinkCandidate{URL: "https://ctu.edu.vn/a", Category: "nganh_hoc", Priority: 1},
		qa.LinkCandidate{URL: "https://ctu.edu.vn/b", Category: "hoc_phi", Priority: 2},
	)
	assert.Equal(t, 2, added)

	// Re-discovery with a different classification does not overwrite.
	added = f.Add(qa.LinkCandidate{URL: "https://ctu.edu.vn/a", Category: "lien_he", Priority: 3})
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, f.DuplicatesRemoved())

	ranked := f.Ranked()
	require.Len(t, ranked, 2)
	assert.Equal(t, "nganh_hoc", ranked[0].Category)
	assert.Equal(t, 1, ranked[0].Priority)
}

func TestFrontierURLDedupIsExact(t *testing.T) {
	f := NewFrontier()

	// Case and query strings are significant; only surrounding whitespace
	// is normalized.
	f.Add(
		qa.LinkCandidate{URL: "https://ctu.edu.vn/a", Priority: 1},
		qa.LinkCandidate{URL: "https://ctu.edu.vn/A", Priority: 1},
		qa.LinkCandidate{URL: "https://ctu.edu.vn/a?p=1", Priority: 1},
		qa.LinkCandidate{URL: "  https://ctu.edu.vn/a  ", Priority: 1},
	)

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 1, f.DuplicatesRemoved())
}

func TestFrontierRankedOrder(t *testing.T) {
	f := NewFrontier()
	f.Add(
		qa.LinkCandidate{URL: "u1", Category: "thong_tin_chung", Priority: 3},
		qa.LinkCandidate{URL: "u2", Category: "hoc_phi", Priority: 2},
		qa.LinkCandidate{URL: "u3", Category: "nganh_hoc", Priority: 1},
		qa.LinkCandidate{URL: "u4", Category: "chi_tieu", Priority: 1},
	)

	ranked := f.Ranked()
	require.Len(t, ranked, 4)
	assert.Equal(t, "u4", ranked[0].URL) // priority 1, chi_tieu < nganh_hoc
	assert.Equal(t, "u3", ranked[1].URL)
	assert.Equal(t, "u2", ranked[2].URL)
	assert.Equal(t, "u1", ranked[3].URL)
}

func TestFrontierSortStability(t *testing.T) {
	f := NewFrontier()

	// Same priority and category: insertion order must be preserved.
	f.Add(
		qa.LinkCandidate{URL: "first", Category: "nganh_hoc", Priority: 1},
		qa.LinkCandidate{URL: "second", Category: "nganh_hoc", Priority: 1},
		qa.LinkCandidate{URL: "third", Category: "nganh_hoc", Priority: 1},
	)

	ranked := f.Ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, "first", ranked[0].URL)
	assert.Equal(t, "second", ranked[1].URL)
	assert.Equal(t, "third", ranked[2].URL)
}

func TestFrontierMergesMultipleSources(t *testing.T) {
	f := NewFrontier()

	pageOne := []qa.LinkCandidate{
		{URL: "https://ctu.edu.vn/a", Category: "nganh_hoc", Priority: 1},
		{URL: "https://ctu.edu.vn/shared", Category: "hoc_phi", Priority: 2},
	}
	pageTwo := []qa.LinkCandidate{
		{URL: "https://ctu.edu.vn/shared", Category: "lien_he", Priority: 3},
		{URL: "https://ctu.edu.vn/b", Category: "chi_tieu", Priority: 1},
	}

	f.Add(pageOne...)
	f.Add(pageTwo...)

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 1, f.DuplicatesRemoved())
	assert.True(t, f.Contains("https://ctu.edu.vn/shared"))
	assert.False(t, f.Contains("https://ctu.edu.vn/missing"))
}

func TestFrontierSkipsEmptyURLs(t *testing.T) {
	f := NewFrontier()
	added := f.Add(qa.LinkCandidate{URL: "   "}, qa.LinkCandidate{URL: ""})
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, f.Len())
}

package frontier

import (
	"sort"
	"strings"

	"github.com/ctu-chatbot/harvester/pkg/qa"
)

// Frontier accumulates link candidates from many pages into a single
// deduplicated crawl queue. Dedup key is the trimmed URL string, nothing
// more: case and query strings are significant. First occurrence wins,
// even when a later discovery would classify differently.
type Frontier struct {
	entries    []qa.LinkCandidate
	seen       map[string]struct{}
	duplicates int
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		seen: make(map[string]struct{}),
	}
}

// Add merges candidates into the frontier and returns how many were new.
func (f *Frontier) Add(candidates ...qa.LinkCandidate) int {
	added := 0
	for _, c := range candidates {
		key := strings.TrimSpace(c.URL)
		if key == "" {
			continue
		}
		if _, ok := f.seen[key]; ok {
			f.duplicates++
			continue
		}
		f.seen[key] = struct{}{}
		c.URL = key
		f.entries = append(f.entries, c)
		added++
	}
	return added
}

// Ranked returns the frontier ordered by (priority ascending, category
// ascending). The sort is stable: candidates tied on both keys keep
// their insertion order.
func (f *Frontier) Ranked() []qa.LinkCandidate {
	ranked := make([]qa.LinkCandidate, len(f.entries))
	copy(ranked, f.entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority < ranked[j].Priority
		}
		return ranked[i].Category < ranked[j].Category
	})
	return ranked
}

// DuplicatesRemoved reports how many candidates were discarded as
// duplicates. Informational only.
func (f *Frontier) DuplicatesRemoved() int {
	return f.duplicates
}

// Len returns the number of unique candidates held.
func (f *Frontier) Len() int {
	return len(f.entries)
}

// Contains reports whether a URL is already in the frontier.
func (f *Frontier) Contains(url string) bool {
	_, ok := f.seen[strings.TrimSpace(url)]
	return ok
}

package dataset

// Similarity returns a sequence-similarity ratio in [0,1] between two
// strings, computed as 2*M/T where M is the number of matched runes across
// the longest matching blocks and T the combined length. This is the
// classic sequence-matcher ratio without junk heuristics.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchedRunes(ra, rb, 0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(total)
}

// matchedRunes sums the lengths of the matching blocks found by recursively
// locating the longest common substring and matching the regions on either
// side of it.
func matchedRunes(a, b []rune, alo, ahi, blo, bhi int) int {
	bestA, bestB, bestSize := longestMatch(a, b, alo, ahi, blo, bhi)
	if bestSize == 0 {
		return 0
	}
	matched := bestSize
	matched += matchedRunes(a, b, alo, bestA, blo, bestB)
	matched += matchedRunes(a, b, bestA+bestSize, ahi, bestB+bestSize, bhi)
	return matched
}

func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (int, int, int) {
	// Positions of each rune in b[blo:bhi].
	b2j := make(map[rune][]int)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	bestA, bestB, bestSize := alo, blo, 0
	// lengths[j] = length of the match ending at a[i-1], b[j-1].
	lengths := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}
	return bestA, bestB, bestSize
}

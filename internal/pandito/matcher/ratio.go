package matcher

// ratio.go implements the Ratcliff/Obershelp sequence-similarity measure used
// by the fuzzy lookup pass: twice the total length of all matching blocks,
// divided by the combined length of both strings. The result is in [0, 1].

// Ratio returns the similarity between a and b.
//
// Matching blocks are found recursively around the longest common block, so
// transposed fragments still contribute. Both strings empty is defined as a
// perfect match.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingRunes(ra, rb)) / float64(total)
}

// matchingRunes returns the total number of runes covered by matching blocks.
func matchingRunes(a, b []rune) int {
	i, j, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:i], b[:j]) +
		matchingRunes(a[i+size:], b[j+size:])
}

// longestMatch finds the longest block a[i:i+size] == b[j:j+size].
// Earlier positions win on equal length, which keeps tie-breaking stable.
func longestMatch(a, b []rune) (besti, bestj, bestsize int) {
	// Positions of each rune in b, so candidate block extensions can be
	// found without rescanning b for every rune of a.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// lengths[j] is the length of the longest block ending at a[i-1], b[j].
	lengths := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int)
		for _, j := range b2j[r] {
			size := lengths[j-1] + 1
			next[j] = size
			if size > bestsize {
				besti, bestj, bestsize = i-size+1, j-size+1, size
			}
		}
		lengths = next
	}
	return
}

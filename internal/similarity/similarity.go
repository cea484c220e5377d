// Package similarity scores how alike two canonical names are.
//
// The score is the ratio of matched character run lengths to the total
// length of both strings (2M / T), found by recursively locating the
// longest common block and matching the pieces on either side. Identical
// strings score 1.0; disjoint strings score 0.0. The measure is symmetric
// and deterministic.
package similarity

// Ratio returns the similarity of two canonical names in [0, 1].
// Both inputs are expected to be normalized already; comparison is exact
// on runes.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	matched := matchingRunes(ar, br)
	return float64(2*matched) / float64(total)
}

// matchingRunes counts runes covered by matching blocks: the longest common
// block plus, recursively, the matches in the unmatched pieces to its left
// and right.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

// longestCommonBlock finds the longest run of runes common to a and b.
// Ties are resolved toward the earliest position in a, then b, so results
// are stable for a fixed input order.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	prev := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		row := make([]int, len(b)+1)
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				continue
			}
			run := prev[j-1] + 1
			row[j] = run
			if run > size {
				size = run
				ai = i - run
				bi = j - run
			}
		}
		prev = row
	}
	return ai, bi, size
}

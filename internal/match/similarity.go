package match

// Similarity returns a character-sequence similarity ratio in [0,1] using
// the Ratcliff/Obershelp longest-matching-blocks measure: twice the number
// of matched characters over the combined length. Returns 0 when either
// string is empty.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	matched := matchingChars([]rune(a), []rune(b))
	return 2 * float64(matched) / float64(len([]rune(a))+len([]rune(b)))
}

// matchingChars counts characters covered by the longest matching block
// and, recursively, the blocks to its left and right.
func matchingChars(a, b []rune) int {
	ai, bi, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+size:], b[bi+size:])
	return total
}

// longestBlock finds the longest common contiguous run between a and b,
// returning its start in each and its length.
func longestBlock(a, b []rune) (bestA, bestB, bestSize int) {
	// lengths[j] is the length of the common run ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}
			prev = cur
		}
	}
	return bestA, bestB, bestSize
}

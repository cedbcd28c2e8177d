// Package repetition expands logical bits into repeated copies and folds them
// back by majority vote.
package repetition

// Expand writes each bit of src into dst factor times consecutively. dst must
// hold at least len(src)*factor bits; positions beyond that are untouched.
func Expand(src []bool, factor int, dst []bool) {
	for i, bit := range src {
		base := i * factor
		for k := 0; k < factor; k++ {
			dst[base+k] = bit
		}
	}
}

// Fold reduces src in groups of factor, emitting 1 only when the ones in a
// group strictly exceed factor/2. At factor 2 that means both copies must
// agree; a split pair folds to 0.
func Fold(src []bool, factor int) []bool {
	groups := len(src) / factor
	out := make([]bool, groups)
	for i := 0; i < groups; i++ {
		ones := 0
		for k := 0; k < factor; k++ {
			if src[i*factor+k] {
				ones++
			}
		}
		out[i] = ones > factor/2
	}
	return out
}

// Package bitstream converts between byte slices and MSB-first bit vectors.
package bitstream

// Unpack expands data into dst, MSB first within each byte, stopping when dst
// is full. Positions past the end of data are set false, so a short chunk
// unpacks as if zero-padded regardless of what dst held before.
func Unpack(data []byte, dst []bool) {
	for i := range dst {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			dst[i] = false
			continue
		}
		dst[i] = (data[byteIdx]>>(7-uint(i%8)))&1 == 1
	}
}

// Pack folds bits into dst, MSB first within each byte, stopping when dst is
// full. Trailing bit positions of the last byte are zero.
func Pack(bits []bool, dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
	for i, bit := range bits {
		byteIdx := i / 8
		if byteIdx >= len(dst) {
			return
		}
		if bit {
			dst[byteIdx] |= 1 << (7 - uint(i%8))
		}
	}
}

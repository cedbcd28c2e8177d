// Package qim implements quantization index modulation over pixel blocks.
//
// A bit is carried by the average luma of one square block: bit 0 snaps the
// average to the nearest multiple of the quantization step, bit 1 to the
// lattice offset by half a step. Extraction classifies an average by whichever
// lattice is nearer, so the encoding survives luma drift smaller than a
// quarter step per block.
package qim

import (
	"image"
	"math"
)

// Embed returns the target average luma that encodes bit into a block whose
// current average is avg, for the given even quantization step. The result is
// always a representable luma in [0, 255].
func Embed(avg float64, bit int, step int) float64 {
	q := float64(step)
	var target float64
	if bit == 0 {
		target = math.Round(avg/q) * q
	} else {
		half := q / 2
		target = math.Round((avg-half)/q)*q + half
	}

	// Snapping near the ends of the range can land outside [0,255]; fold back
	// by a whole step so the value stays in the same lattice class.
	if target < 0 {
		target += q
	} else if target > 255 {
		target -= q
	}
	return clamp(target)
}

// Extract classifies an average luma as the bit whose lattice is nearer.
// Ties resolve to 0.
func Extract(avg float64, step int) int {
	q := float64(step)
	half := q / 2

	d0 := math.Abs(avg - math.Round(avg/q)*q)
	d1 := math.Abs(avg - (math.Round((avg-half)/q)*q + half))
	if d0 <= d1 {
		return 0
	}
	return 1
}

// BlockLuma returns the average luma (0.299R + 0.587G + 0.114B) of the
// size x size block whose top-left pixel is (x0, y0). It never mutates img.
func BlockLuma(img *image.NRGBA, x0, y0, size int) float64 {
	var sum float64
	for y := y0; y < y0+size; y++ {
		off := img.PixOffset(x0, y)
		for x := 0; x < size; x++ {
			r := float64(img.Pix[off])
			g := float64(img.Pix[off+1])
			b := float64(img.Pix[off+2])
			sum += 0.299*r + 0.587*g + 0.114*b
			off += 4
		}
	}
	return sum / float64(size*size)
}

// ShiftBlock adds delta to the R, G and B channels of every pixel in the
// block, each rounded and clamped to [0, 255]. Alpha is untouched. The
// additive adjustment preserves local texture while moving the block mean.
func ShiftBlock(img *image.NRGBA, x0, y0, size int, delta float64) {
	for y := y0; y < y0+size; y++ {
		off := img.PixOffset(x0, y)
		for x := 0; x < size; x++ {
			for c := 0; c < 3; c++ {
				img.Pix[off+c] = uint8(clamp(math.Round(float64(img.Pix[off+c]) + delta)))
			}
			off += 4
		}
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

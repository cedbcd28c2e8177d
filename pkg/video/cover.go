package video

import (
	"context"
	"image"
	"math"
	"time"
)

// Plasma is a deterministic synthetic cover source: a slowly drifting
// interference pattern. Values stay inside [40, 216] so block-mean shifts
// applied by the embedder never saturate a whole block.
type Plasma struct {
	width  int
	height int
}

func NewPlasma(width, height int) *Plasma {
	return &Plasma{width: width, height: height}
}

func (p *Plasma) FrameAt(_ context.Context, t time.Duration) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, p.width, p.height))
	phase := t.Seconds() * 0.7

	for y := 0; y < p.height; y++ {
		fy := float64(y)
		off := img.PixOffset(0, y)
		for x := 0; x < p.width; x++ {
			fx := float64(x)
			v := math.Sin(fx/37.0+phase) +
				math.Sin(fy/29.0-phase*0.8) +
				math.Sin((fx+fy)/53.0+phase*1.3)
			// v in [-3,3] -> [40,216]
			level := uint8(128 + v*29.3)
			img.Pix[off] = level
			img.Pix[off+1] = level
			img.Pix[off+2] = level
			img.Pix[off+3] = 255
			off += 4
		}
	}
	return img, nil
}

// Resilient wraps a cover source with a bounded wait. When the inner source
// times out or fails, it reuses the last good frame instead of failing the
// pipeline; before any frame has arrived it falls back to flat mid-gray.
type Resilient struct {
	Inner   CoverSource
	Timeout time.Duration

	width  int
	height int
	last   *image.NRGBA
}

func NewResilient(inner CoverSource, width, height int, timeout time.Duration) *Resilient {
	return &Resilient{Inner: inner, Timeout: timeout, width: width, height: height}
}

func (r *Resilient) FrameAt(ctx context.Context, t time.Duration) (*image.NRGBA, error) {
	waitCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	frame, err := r.Inner.FrameAt(waitCtx, t)
	if err != nil {
		// A cancelled parent is a real abort, not a flaky source.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return r.fallback(), nil
	}

	r.last = cloneFrame(frame)
	return frame, nil
}

func (r *Resilient) fallback() *image.NRGBA {
	if r.last != nil {
		return cloneFrame(r.last)
	}
	img := image.NewNRGBA(image.Rect(0, 0, r.width, r.height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 128
		img.Pix[i+1] = 128
		img.Pix[i+2] = 128
		img.Pix[i+3] = 255
	}
	return img
}

func cloneFrame(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

package video

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

func TestPlasmaDeterministic(t *testing.T) {
	ctx := context.Background()
	p := NewPlasma(64, 32)

	a, _ := p.FrameAt(ctx, 3*time.Second)
	b, _ := p.FrameAt(ctx, 3*time.Second)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs between identical timestamps", i)
		}
	}

	c, _ := p.FrameAt(ctx, 4*time.Second)
	same := true
	for i := range a.Pix {
		if a.Pix[i] != c.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("frames at different timestamps are identical")
	}
}

func TestPlasmaStaysOffTheRails(t *testing.T) {
	p := NewPlasma(64, 64)
	img, _ := p.FrameAt(context.Background(), 0)
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := img.Pix[i+c]
			if v < 16 || v > 240 {
				t.Fatalf("pixel channel value %d leaves no headroom for embedding", v)
			}
		}
		if img.Pix[i+3] != 255 {
			t.Fatalf("alpha %d, want opaque", img.Pix[i+3])
		}
	}
}

type stuckSource struct{ calls int }

func (s *stuckSource) FrameAt(ctx context.Context, _ time.Duration) (*image.NRGBA, error) {
	s.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResilientFallsBackToGray(t *testing.T) {
	r := NewResilient(&stuckSource{}, 8, 8, 10*time.Millisecond)
	frame, err := r.FrameAt(context.Background(), 0)
	if err != nil {
		t.Fatalf("fallback should not error, got %v", err)
	}
	if frame.Pix[0] != 128 {
		t.Fatalf("fallback pixel %d, want mid-gray", frame.Pix[0])
	}
}

func TestResilientReusesLastGoodFrame(t *testing.T) {
	ctx := context.Background()
	flaky := &flakySource{good: NewPlasma(8, 8)}
	r := NewResilient(flaky, 8, 8, 10*time.Millisecond)

	first, err := r.FrameAt(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	flaky.fail = true
	second, err := r.FrameAt(ctx, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatal("fallback frame is not the last good frame")
		}
	}
}

func TestResilientPropagatesCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewResilient(&stuckSource{}, 8, 8, time.Minute)
	if _, err := r.FrameAt(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

type flakySource struct {
	good CoverSource
	fail bool
}

func (f *flakySource) FrameAt(ctx context.Context, t time.Duration) (*image.NRGBA, error) {
	if f.fail {
		return nil, ErrFrameTimeout
	}
	return f.good.FrameAt(ctx, t)
}

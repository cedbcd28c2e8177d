package video

import (
	"context"
	"image"
	"io"
	"testing"
)

func testFrame(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)*7 + seed
	}
	return img
}

func TestMemEncoderRoundTrip(t *testing.T) {
	ctx := context.Background()
	enc := NewMemEncoder(4)
	cfg := EncoderConfig{Width: 16, Height: 8, FPS: 10}
	if err := enc.Probe(cfg); err != nil {
		t.Fatalf("Probe: %v", err)
	}

	frames := []*image.NRGBA{
		testFrame(16, 8, 1),
		testFrame(16, 8, 2),
		testFrame(16, 8, 3),
	}
	for _, f := range frames {
		if err := enc.Submit(f); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := enc.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	src, err := OpenMem(enc.Bytes())
	if err != nil {
		t.Fatalf("OpenMem: %v", err)
	}
	w, h := src.Bounds()
	if w != 16 || h != 8 {
		t.Fatalf("bounds %dx%d, want 16x8", w, h)
	}

	for i, want := range frames {
		got, err := src.NextFrame(ctx)
		if err != nil {
			t.Fatalf("NextFrame %d: %v", i, err)
		}
		for j := range want.Pix {
			if got.Pix[j] != want.Pix[j] {
				t.Fatalf("frame %d byte %d: got %d, want %d", i, j, got.Pix[j], want.Pix[j])
			}
		}
	}
	if _, err := src.NextFrame(ctx); err != io.EOF {
		t.Fatalf("after last frame: got %v, want io.EOF", err)
	}
}

func TestMemEncoderSubmitAfterFlush(t *testing.T) {
	enc := NewMemEncoder(1)
	enc.Probe(EncoderConfig{Width: 4, Height: 4, FPS: 10})
	enc.Flush(context.Background())
	if err := enc.Submit(testFrame(4, 4, 0)); err != ErrEncoderClosed {
		t.Fatalf("got %v, want ErrEncoderClosed", err)
	}
}

func TestMemEncoderAbort(t *testing.T) {
	enc := NewMemEncoder(4)
	enc.Probe(EncoderConfig{Width: 4, Height: 4, FPS: 10})
	enc.Submit(testFrame(4, 4, 0))

	enc.Abort()
	enc.Abort() // idempotent
	if err := enc.Submit(testFrame(4, 4, 1)); err != ErrEncoderClosed {
		t.Fatalf("got %v, want ErrEncoderClosed", err)
	}
	if out := enc.Bytes(); out != nil {
		t.Fatalf("aborted encoder produced %d bytes", len(out))
	}
}

func TestMemEncoderProbeRejectsBadConfig(t *testing.T) {
	enc := NewMemEncoder(1)
	if err := enc.Probe(EncoderConfig{Width: 0, Height: 4, FPS: 10}); err == nil {
		t.Fatal("zero width accepted")
	}
	if err := enc.Probe(EncoderConfig{Width: 4, Height: 4, FPS: 0}); err == nil {
		t.Fatal("zero fps accepted")
	}
}

func TestOpenMemRejectsGarbage(t *testing.T) {
	if _, err := OpenMem([]byte("definitely not a raw stream")); err != ErrNotRawStream {
		t.Fatalf("got %v, want ErrNotRawStream", err)
	}
	if _, err := OpenMem(nil); err != ErrNotRawStream {
		t.Fatalf("got %v, want ErrNotRawStream", err)
	}
}

func TestMemSourceDuration(t *testing.T) {
	ctx := context.Background()
	enc := NewMemEncoder(2)
	enc.Probe(EncoderConfig{Width: 4, Height: 4, FPS: 10})
	for i := 0; i < 20; i++ {
		enc.Submit(testFrame(4, 4, uint8(i)))
	}
	enc.Flush(ctx)

	src, err := OpenMem(enc.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got := src.Duration().Seconds(); got != 2 {
		t.Fatalf("duration %v s, want 2", got)
	}
}

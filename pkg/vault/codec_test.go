package vault

import (
	"bytes"
	"context"
	"image"
	"testing"
	"time"

	"github.com/framevault/framevault/pkg/video"
)

func testConfig() Config {
	return Config{
		Width: 64, Height: 64, BlockSize: 4,
		Quant: 16, Redundancy: 1, FPS: 10,
	}
}

func coverFrame(t *testing.T, cfg Config) *image.NRGBA {
	t.Helper()
	frame, err := video.NewPlasma(cfg.Width, cfg.Height).FrameAt(context.Background(), 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

func TestCapacityDerivation(t *testing.T) {
	cfg := Config{Width: 640, Height: 480, BlockSize: 8, Quant: 48, Redundancy: 3, FPS: 10}
	cap := cfg.Capacity()
	if cap.Cols != 80 || cap.Rows != 60 {
		t.Fatalf("grid %dx%d, want 80x60", cap.Cols, cap.Rows)
	}
	if cap.BitsPerFrame != 4800 {
		t.Fatalf("bitsPerFrame %d, want 4800", cap.BitsPerFrame)
	}
	if cap.EffectiveBits != 1600 {
		t.Fatalf("effectiveBits %d, want 1600", cap.EffectiveBits)
	}
	if cap.EffectiveBytes != 200 {
		t.Fatalf("effectiveBytes %d, want 200", cap.EffectiveBytes)
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{Width: 100, Height: 64, BlockSize: 8, Quant: 16, Redundancy: 1, FPS: 10}, // width not divisible
		{Width: 64, Height: 64, BlockSize: 8, Quant: 15, Redundancy: 1, FPS: 10},  // odd quant
		{Width: 64, Height: 64, BlockSize: 8, Quant: 16, Redundancy: 0, FPS: 10},  // zero redundancy
		{Width: 64, Height: 64, BlockSize: 8, Quant: 16, Redundancy: 1, FPS: 0},   // zero fps
		{Width: 16, Height: 16, BlockSize: 8, Quant: 16, Redundancy: 1, FPS: 10},  // under a byte per frame
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: invalid config accepted", i)
		}
	}
	for name, cfg := range Profiles {
		if err := cfg.Validate(); err != nil {
			t.Errorf("profile %q: %v", name, err)
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	for _, cfg := range []Config{
		testConfig(),
		{Width: 64, Height: 64, BlockSize: 4, Quant: 48, Redundancy: 3, FPS: 10},
		{Width: 96, Height: 48, BlockSize: 8, Quant: 8, Redundancy: 2, FPS: 10},
	} {
		codec, err := NewCodec(cfg)
		if err != nil {
			t.Fatal(err)
		}
		n := codec.Capacity().EffectiveBytes
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i*13 + 7)
		}

		frame := coverFrame(t, cfg)
		if err := codec.EmbedFrame(frame, payload); err != nil {
			t.Fatal(err)
		}
		got, err := codec.ExtractFrame(frame)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("cfg %+v: round trip mismatch", cfg)
		}
	}
}

func TestShortSliceEmbedsAsZeroPadded(t *testing.T) {
	codec, _ := NewCodec(testConfig())
	frame := coverFrame(t, codec.Config())

	short := []byte{0xAA, 0xBB}
	if err := codec.EmbedFrame(frame, short); err != nil {
		t.Fatal(err)
	}
	got, _ := codec.ExtractFrame(frame)

	want := make([]byte, codec.Capacity().EffectiveBytes)
	copy(want, short)
	if !bytes.Equal(got, want) {
		t.Fatal("short slice did not extract as zero-padded")
	}
}

func TestNilSliceEmbedsAllZero(t *testing.T) {
	codec, _ := NewCodec(testConfig())
	frame := coverFrame(t, codec.Config())
	if err := codec.EmbedFrame(frame, nil); err != nil {
		t.Fatal(err)
	}
	got, _ := codec.ExtractFrame(frame)
	for i, b := range got {
		if b != 0 {
			t.Fatalf("byte %d is %#x, want 0", i, b)
		}
	}
}

func TestExtractSurvivesSmallLumaDrift(t *testing.T) {
	// Simulated recompression: shift every channel by less than Quant/4.
	cfg := Config{Width: 64, Height: 64, BlockSize: 8, Quant: 48, Redundancy: 1, FPS: 10}
	codec, err := NewCodec(cfg)
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte{0x5C, 0xF0, 0x0D, 0x11, 0xFE, 0x80, 0x01, 0x7F}

	frame := coverFrame(t, cfg)
	if err := codec.EmbedFrame(frame, payload); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(frame.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := int(frame.Pix[i+c]) + 9 // < Quant/4 - rounding margin
			if v > 255 {
				v = 255
			}
			frame.Pix[i+c] = uint8(v)
		}
	}

	got, err := codec.ExtractFrame(frame)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload did not survive sub-threshold luma drift")
	}
}

func TestExtractDoesNotMutateFrame(t *testing.T) {
	codec, _ := NewCodec(testConfig())
	frame := coverFrame(t, codec.Config())
	before := append([]byte(nil), frame.Pix...)
	if _, err := codec.ExtractFrame(frame); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, frame.Pix) {
		t.Fatal("ExtractFrame mutated the pixel buffer")
	}
}

func TestEmbedRejectsWrongGeometry(t *testing.T) {
	codec, _ := NewCodec(testConfig())
	frame := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	if err := codec.EmbedFrame(frame, nil); err == nil {
		t.Fatal("mismatched frame geometry accepted")
	}
	if _, err := codec.ExtractFrame(frame); err == nil {
		t.Fatal("mismatched frame geometry accepted on extract")
	}
}

// Package vault embeds arbitrary files into video frames and recovers them.
//
// One logical bit is carried by the average luma of one pixel block
// (quantization index modulation), repeated for redundancy and spread across
// the frame by a deterministic permutation. The hidden byte stream is a
// self-describing container: magic, version, obfuscated metadata header with
// its checksum, then the raw file bytes.
package vault

import (
	"fmt"
	"time"
)

// Config is the single parameterization of the engine. The observed profiles
// are presets of this one structure, not separate codepaths.
type Config struct {
	Width      int
	Height     int
	BlockSize  int
	Quant      int // QIM step, must be even
	Redundancy int // raw bits per logical bit, >= 1
	FPS        int

	// Encoder tuning, passed through to the video service.
	CRF    int
	Preset string
}

// Capacity holds the four derived per-frame values. They round into each
// other, so they are always computed together from a Config and never
// one-off elsewhere.
type Capacity struct {
	Cols           int
	Rows           int
	BitsPerFrame   int // one raw bit per block
	EffectiveBits  int // logical bits after redundancy
	EffectiveBytes int // usable payload bytes per frame
}

// Capacity derives the per-frame capacity of this configuration.
func (c Config) Capacity() Capacity {
	cols := c.Width / c.BlockSize
	rows := c.Height / c.BlockSize
	bits := cols * rows
	eff := bits / c.Redundancy
	return Capacity{
		Cols:           cols,
		Rows:           rows,
		BitsPerFrame:   bits,
		EffectiveBits:  eff,
		EffectiveBytes: eff / 8,
	}
}

// Validate checks the hard geometry preconditions.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.BlockSize <= 0 {
		return fmt.Errorf("%w: geometry %dx%d block %d", ErrConfig, c.Width, c.Height, c.BlockSize)
	}
	if c.Width%c.BlockSize != 0 || c.Height%c.BlockSize != 0 {
		return fmt.Errorf("%w: %dx%d not divisible by block size %d", ErrConfig, c.Width, c.Height, c.BlockSize)
	}
	if c.Quant <= 0 || c.Quant%2 != 0 {
		return fmt.Errorf("%w: quantization step %d must be positive and even", ErrConfig, c.Quant)
	}
	if c.Redundancy < 1 {
		return fmt.Errorf("%w: redundancy %d", ErrConfig, c.Redundancy)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrConfig, c.FPS)
	}
	if c.Capacity().EffectiveBytes < 1 {
		return fmt.Errorf("%w: configuration carries less than one byte per frame", ErrConfig)
	}
	return nil
}

// FramePeriod is the presentation-time distance between consecutive frames.
func (c Config) FramePeriod() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// MinFrames pads every stream to at least this many frames so even tiny
// payloads produce a video players accept.
const MinFrames = 30

// Profiles are the named presets. "youtube" trades capacity for surviving a
// lossy re-encode; "local" assumes a lossless or near-lossless carrier.
var Profiles = map[string]Config{
	"youtube": {
		Width: 640, Height: 480, BlockSize: 8,
		Quant: 48, Redundancy: 3, FPS: 10,
		CRF: 18, Preset: "medium",
	},
	"local": {
		Width: 640, Height: 480, BlockSize: 4,
		Quant: 8, Redundancy: 1, FPS: 10,
		CRF: 0, Preset: "ultrafast",
	},
}

// DefaultProfile is the preset used when none is named.
const DefaultProfile = "youtube"

package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/framevault/framevault/pkg/video"
)

// maxPendingFrames bounds the outstanding encode queue. The streaming loop
// suspends on the service's dequeue signal once the queue reaches this depth.
const maxPendingFrames = 8

// EncodeOptions wires an encode run to its collaborators. A zero Logger
// discards; a nil Progress is silent.
type EncodeOptions struct {
	Cover    video.CoverSource
	Service  video.EncodeService
	Progress ProgressFunc
	Logger   zerolog.Logger
}

// EncodeResult is the outcome of a finished encode.
type EncodeResult struct {
	Video       []byte
	TotalFrames int
	DataFrames  int
	FileSize    int64
	OutputSize  int64
	Checksum    uint32
	Duration    time.Duration
}

// Encode hides the named file bytes in a synthetic video and returns the
// finished stream. Frames are processed strictly in order: the container is
// sliced by byte offset and the encoder's packet order both depend on it.
// Cancellation is polled between frames and surfaces as ErrCancelled.
func (c *Codec) Encode(ctx context.Context, name string, data []byte, opts EncodeOptions) (*EncodeResult, error) {
	meter := newProgressMeter(opts.Progress)
	log := opts.Logger

	meter.report(0, "building payload")
	sum := Checksum(data)
	hdr := Header{
		Name:       name,
		Size:       int64(len(data)),
		Version:    Version,
		Quant:      c.cfg.Quant,
		Redundancy: c.cfg.Redundancy,
		Checksum:   sum,
		Width:      c.cfg.Width,
		Height:     c.cfg.Height,
		BlockSize:  c.cfg.BlockSize,
	}
	container, err := NewContainer(hdr, data, c.cap.EffectiveBytes)
	if err != nil {
		return nil, err
	}
	totalFrames := container.DataFrames()
	if totalFrames < MinFrames {
		totalFrames = MinFrames
	}
	log.Debug().
		Int("containerBytes", container.Len()).
		Int("dataFrames", container.DataFrames()).
		Int("totalFrames", totalFrames).
		Int("bytesPerFrame", c.cap.EffectiveBytes).
		Msg("payload built")

	meter.report(2, "selecting encoder")
	if err := opts.Service.Probe(video.EncoderConfig{
		Width:  c.cfg.Width,
		Height: c.cfg.Height,
		FPS:    c.cfg.FPS,
		CRF:    c.cfg.CRF,
		Preset: c.cfg.Preset,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodecUnsupported, err)
	}
	// Every return path below must release the encoder's subprocess, queue
	// and scratch state. Abort is a no-op once Flush has succeeded.
	defer opts.Service.Abort()

	period := c.cfg.FramePeriod()
	for i := 0; i < totalFrames; i++ {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: at frame %d of %d", ErrCancelled, i, totalFrames)
		}
		if err := opts.Service.Err(); err != nil {
			return nil, fmt.Errorf("encoder failed at frame %d: %w", i, err)
		}

		frame, err := opts.Cover.FrameAt(ctx, time.Duration(i)*period)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: at frame %d of %d", ErrCancelled, i, totalFrames)
			}
			return nil, fmt.Errorf("cover source failed at frame %d: %w", i, err)
		}

		if err := c.EmbedFrame(frame, container.FrameSlice(i)); err != nil {
			return nil, err
		}

		for opts.Service.QueueDepth() >= maxPendingFrames {
			select {
			case <-opts.Service.Ready():
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: at frame %d of %d", ErrCancelled, i, totalFrames)
			}
		}
		if err := opts.Service.Submit(frame); err != nil {
			return nil, fmt.Errorf("submitting frame %d: %w", i, err)
		}

		meter.report(2+93*float64(i+1)/float64(totalFrames), "embedding frames")
	}

	meter.report(95, "finalizing video")
	if err := opts.Service.Flush(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: while finalizing", ErrCancelled)
		}
		return nil, fmt.Errorf("finalizing video: %w", err)
	}
	out := opts.Service.Bytes()
	meter.report(100, "done")

	log.Info().
		Int("frames", totalFrames).
		Int("outputBytes", len(out)).
		Msg("encode complete")

	return &EncodeResult{
		Video:       out,
		TotalFrames: totalFrames,
		DataFrames:  container.DataFrames(),
		FileSize:    int64(len(data)),
		OutputSize:  int64(len(out)),
		Checksum:    sum,
		Duration:    time.Duration(totalFrames) * period,
	}, nil
}

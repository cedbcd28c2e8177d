// Package video is the boundary between the payload codec and the actual
// video machinery: sources of cover pixels, an encode service that turns
// pixel buffers into a video stream, and a decode source that hands the
// frames back. The vault pipelines drive these interfaces one frame at a
// time; implementations decide whether the frames come from ffmpeg, memory,
// or a synthetic generator.
package video

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrUnsupportedConfig indicates the encoder cannot produce the requested
	// geometry, frame rate or codec settings.
	ErrUnsupportedConfig = errors.New("unsupported encoder configuration")
	// ErrEncoderClosed indicates a submit after Flush.
	ErrEncoderClosed = errors.New("encoder already flushed")
	// ErrFrameTimeout indicates a cover frame did not arrive within the
	// bounded wait. Callers are expected to fall back, not abort.
	ErrFrameTimeout = errors.New("timed out waiting for cover frame")
)

// EncoderConfig describes one encode profile to probe and run.
type EncoderConfig struct {
	Width  int
	Height int
	FPS    int
	CRF    int    // constant rate factor; 0 = lossless
	Preset string // encoder speed preset, e.g. "medium", "ultrafast"
}

// CoverSource hands out cover pixel buffers for logical presentation times.
// The returned frame is owned by the caller until submitted downstream.
type CoverSource interface {
	FrameAt(ctx context.Context, t time.Duration) (*image.NRGBA, error)
}

// EncodeService accepts pixel buffers one at a time and produces the final
// video bytes. Submissions are queued; callers must watch QueueDepth against
// their bound and wait on Ready before submitting more when the queue is
// full, so a slow encoder backpressures the producer instead of buffering
// unbounded frames.
type EncodeService interface {
	// Probe reports whether cfg is encodable, before any frame is submitted.
	Probe(cfg EncoderConfig) error
	// Submit queues one frame for encoding. The service takes ownership of
	// the buffer.
	Submit(frame *image.NRGBA) error
	// QueueDepth is the number of submitted frames not yet consumed.
	QueueDepth() int
	// Ready receives a signal each time the encoder drains a frame.
	Ready() <-chan struct{}
	// Err reports an asynchronous encoder failure, nil while healthy.
	Err() error
	// Flush signals end of stream and waits for the container to finalize.
	Flush(ctx context.Context) error
	// Abort discards the stream and releases everything the encoder holds:
	// queued frames, worker goroutines, subprocesses, scratch files. Idempotent,
	// and a no-op after a successful Flush.
	Abort()
	// Bytes returns the finished video after a successful Flush.
	Bytes() []byte
}

// DecodeSource walks the frames of an existing video in presentation order.
type DecodeSource interface {
	// Bounds returns the pixel geometry of the stream.
	Bounds() (width, height int)
	// Duration is the declared length of the stream, zero when unknown.
	Duration() time.Duration
	// NextFrame returns the next decoded pixel buffer, or io.EOF when the
	// stream is exhausted.
	NextFrame(ctx context.Context) (*image.NRGBA, error)
	Close() error
}

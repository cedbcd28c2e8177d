package vault

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/framevault/framevault/pkg/video"
)

// DecodeOptions wires a decode run to its frame source.
type DecodeOptions struct {
	Source   video.DecodeSource
	Progress ProgressFunc
	Logger   zerolog.Logger
}

// DecodeResult is the outcome of a finished decode. IntegrityOK reflects the
// file checksum only; the header already verified or the decode would have
// failed. A false verdict still carries the best-effort recovered bytes.
type DecodeResult struct {
	Name          string
	Data          []byte
	DeclaredSize  int64
	Header        Header
	FramesScanned int
	IntegrityOK   bool
	Integrity     string
}

// Decode scans the source's frames in order, reassembles the hidden
// container, and returns the recovered file. Scanning stops as soon as the
// declared payload length is reached, even if more frames remain.
func (c *Codec) Decode(ctx context.Context, opts DecodeOptions) (*DecodeResult, error) {
	meter := newProgressMeter(opts.Progress)
	log := opts.Logger

	meter.report(0, "opening video")
	w, h := opts.Source.Bounds()
	if w != c.cfg.Width || h != c.cfg.Height {
		return nil, fmt.Errorf("%w: video is %dx%d, configuration is %dx%d",
			ErrConfig, w, h, c.cfg.Width, c.cfg.Height)
	}
	estFrames := 0
	if d := opts.Source.Duration(); d > 0 {
		estFrames = int(d / c.cfg.FramePeriod())
	}
	log.Debug().Int("estimatedFrames", estFrames).Msg("scanning")

	parser := NewParser()
	frames := 0
	for !parser.Complete() {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: after %d frames", ErrCancelled, frames)
		}

		frame, err := opts.Source.NextFrame(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: after %d frames", ErrCancelled, frames)
			}
			return nil, fmt.Errorf("reading frame %d: %w", frames, err)
		}

		chunk, err := c.ExtractFrame(frame)
		if err != nil {
			return nil, err
		}
		if err := parser.Feed(chunk); err != nil {
			return nil, err
		}
		frames++

		if parser.HeaderParsed() {
			meter.report(95*float64(parser.Received())/float64(parser.TotalNeeded()), "extracting payload")
		} else if estFrames > 0 {
			meter.report(95*float64(frames)/float64(estFrames), "scanning frames")
		}
	}

	if !parser.Complete() {
		if !parser.HeaderParsed() {
			return nil, fmt.Errorf("%w: stream ended after %d bytes, before the header completed",
				ErrTruncated, parser.Received())
		}
		return nil, fmt.Errorf("%w: expected %d bytes, got %d after %d frames",
			ErrTruncated, parser.TotalNeeded(), parser.Received(), frames)
	}

	meter.report(97, "verifying checksum")
	hdr := parser.Header()
	data := make([]byte, len(parser.File()))
	copy(data, parser.File())

	actual := Checksum(data)
	ok := actual == hdr.Checksum
	verdict := "checksum ok"
	if !ok {
		verdict = fmt.Sprintf("checksum mismatch: stored %08x, computed %08x (the carrier may have been re-encoded too aggressively)",
			hdr.Checksum, actual)
		log.Warn().Str("file", hdr.Name).Msg(verdict)
	}
	meter.report(100, "done")

	return &DecodeResult{
		Name:          hdr.Name,
		Data:          data,
		DeclaredSize:  hdr.Size,
		Header:        hdr,
		FramesScanned: frames,
		IntegrityOK:   ok,
		Integrity:     verdict,
	}, nil
}

// Inspect scans only as many frames as the metadata header needs and returns
// it without touching the file payload.
func (c *Codec) Inspect(ctx context.Context, source video.DecodeSource) (*Header, error) {
	w, h := source.Bounds()
	if w != c.cfg.Width || h != c.cfg.Height {
		return nil, fmt.Errorf("%w: video is %dx%d, configuration is %dx%d",
			ErrConfig, w, h, c.cfg.Width, c.cfg.Height)
	}

	parser := NewParser()
	for !parser.HeaderParsed() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: while reading header", ErrCancelled)
		}
		frame, err := source.NextFrame(ctx)
		if err == io.EOF {
			return nil, fmt.Errorf("%w: stream ended before the header completed", ErrTruncated)
		}
		if err != nil {
			return nil, err
		}
		chunk, err := c.ExtractFrame(frame)
		if err != nil {
			return nil, err
		}
		if err := parser.Feed(chunk); err != nil {
			return nil, err
		}
	}
	hdr := parser.Header()
	return &hdr, nil
}

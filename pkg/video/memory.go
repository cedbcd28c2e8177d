package video

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
	"time"
)

// Raw stream layout: magic, geometry, frame rate, frame count, then packed
// RGBA frames. Lossless, so whatever the embedder wrote comes back bit-exact.
const (
	rawMagic      = "RAWV"
	rawHeaderSize = 4 + 2 + 2 + 1 + 4
)

var ErrNotRawStream = errors.New("not a raw frame stream")

// MemEncoder is an in-process EncodeService producing a lossless raw frame
// stream. It drains its queue on a background goroutine so queue depth and
// dequeue notifications behave like a real encoder's.
type MemEncoder struct {
	cfg     EncoderConfig
	pending chan *image.NRGBA
	ready   chan struct{}
	drained chan struct{}

	mu      sync.Mutex
	frames  []*image.NRGBA
	flushed bool
	out     []byte
}

// NewMemEncoder creates an encoder whose submit queue holds up to queueCap
// frames before Submit blocks.
func NewMemEncoder(queueCap int) *MemEncoder {
	e := &MemEncoder{
		pending: make(chan *image.NRGBA, queueCap),
		ready:   make(chan struct{}, 1),
		drained: make(chan struct{}),
	}
	go e.drain()
	return e
}

func (e *MemEncoder) drain() {
	defer close(e.drained)
	for frame := range e.pending {
		e.mu.Lock()
		e.frames = append(e.frames, frame)
		e.mu.Unlock()
		select {
		case e.ready <- struct{}{}:
		default:
		}
	}
}

func (e *MemEncoder) Probe(cfg EncoderConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return fmt.Errorf("%w: %dx%d @ %d fps", ErrUnsupportedConfig, cfg.Width, cfg.Height, cfg.FPS)
	}
	if cfg.Width > 0xFFFF || cfg.Height > 0xFFFF || cfg.FPS > 0xFF {
		return fmt.Errorf("%w: geometry exceeds raw stream limits", ErrUnsupportedConfig)
	}
	e.cfg = cfg
	return nil
}

func (e *MemEncoder) Submit(frame *image.NRGBA) error {
	e.mu.Lock()
	flushed := e.flushed
	e.mu.Unlock()
	if flushed {
		return ErrEncoderClosed
	}
	e.pending <- frame
	return nil
}

func (e *MemEncoder) QueueDepth() int        { return len(e.pending) }
func (e *MemEncoder) Ready() <-chan struct{} { return e.ready }
func (e *MemEncoder) Err() error             { return nil }

func (e *MemEncoder) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.flushed {
		e.mu.Unlock()
		return nil
	}
	e.flushed = true
	e.mu.Unlock()

	close(e.pending)
	select {
	case <-e.drained:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	frameBytes := e.cfg.Width * e.cfg.Height * 4
	out := make([]byte, rawHeaderSize, rawHeaderSize+len(e.frames)*frameBytes)
	copy(out[0:4], rawMagic)
	binary.BigEndian.PutUint16(out[4:6], uint16(e.cfg.Width))
	binary.BigEndian.PutUint16(out[6:8], uint16(e.cfg.Height))
	out[8] = uint8(e.cfg.FPS)
	binary.BigEndian.PutUint32(out[9:13], uint32(len(e.frames)))
	for _, f := range e.frames {
		out = append(out, f.Pix...)
	}
	e.out = out
	return nil
}

// Abort drops any queued frames and stops the drain goroutine. After a
// successful Flush it leaves the finished stream alone.
func (e *MemEncoder) Abort() {
	e.mu.Lock()
	if e.flushed {
		e.mu.Unlock()
		return
	}
	e.flushed = true
	e.frames = nil
	e.mu.Unlock()

	close(e.pending)
	<-e.drained
}

func (e *MemEncoder) Bytes() []byte { return e.out }

// MemSource replays a raw frame stream produced by MemEncoder.
type MemSource struct {
	width  int
	height int
	fps    int
	count  int
	data   []byte
	next   int
}

// OpenMem parses a raw frame stream.
func OpenMem(data []byte) (*MemSource, error) {
	if len(data) < rawHeaderSize || string(data[0:4]) != rawMagic {
		return nil, ErrNotRawStream
	}
	s := &MemSource{
		width:  int(binary.BigEndian.Uint16(data[4:6])),
		height: int(binary.BigEndian.Uint16(data[6:8])),
		fps:    int(data[8]),
		count:  int(binary.BigEndian.Uint32(data[9:13])),
		data:   data[rawHeaderSize:],
	}
	if s.width <= 0 || s.height <= 0 || s.fps <= 0 {
		return nil, ErrNotRawStream
	}
	return s, nil
}

func (s *MemSource) Bounds() (int, int) { return s.width, s.height }

func (s *MemSource) Duration() time.Duration {
	return time.Duration(s.count) * time.Second / time.Duration(s.fps)
}

func (s *MemSource) NextFrame(ctx context.Context) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frameBytes := s.width * s.height * 4
	off := s.next * frameBytes
	if s.next >= s.count || off+frameBytes > len(s.data) {
		return nil, io.EOF
	}
	s.next++

	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.data[off:off+frameBytes])
	return img, nil
}

func (s *MemSource) Close() error { return nil }

package video

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// PipeEncoder drives an ffmpeg subprocess over a raw-video pipe: RGBA frames
// in on stdin, an H.264 MP4 out. MP4 finalization needs a seekable output, so
// ffmpeg writes to a scratch file that Flush reads back.
type PipeEncoder struct {
	cfg     EncoderConfig
	outPath string

	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	pending    chan *image.NRGBA
	ready      chan struct{}
	writerDone chan struct{}

	mu      sync.Mutex
	started bool
	err     error
	flushed bool
	out     []byte
}

// NewPipeEncoder creates an encoder whose submit queue holds up to queueCap
// frames before Submit blocks.
func NewPipeEncoder(queueCap int) *PipeEncoder {
	return &PipeEncoder{
		pending:    make(chan *image.NRGBA, queueCap),
		ready:      make(chan struct{}, 1),
		writerDone: make(chan struct{}),
	}
}

func encodeArgs(cfg EncoderConfig, outPath string) []string {
	return []string{
		"-y", "-v", "warning",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", strconv.Itoa(cfg.FPS),
		"-i", "-",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(cfg.CRF),
		"-preset", cfg.Preset,
		"-tune", "stillimage",
		"-movflags", "+faststart",
		outPath,
	}
}

// Probe verifies ffmpeg is available and cfg is encodable, then starts the
// subprocess and the pipe writer.
func (e *PipeEncoder) Probe(cfg EncoderConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return fmt.Errorf("%w: %dx%d @ %d fps", ErrUnsupportedConfig, cfg.Width, cfg.Height, cfg.FPS)
	}
	// yuv420p subsamples chroma 2x2.
	if cfg.Width%2 != 0 || cfg.Height%2 != 0 {
		return fmt.Errorf("%w: yuv420p needs even dimensions, got %dx%d", ErrUnsupportedConfig, cfg.Width, cfg.Height)
	}
	if cfg.Preset == "" {
		cfg.Preset = "medium"
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("%w: ffmpeg not found in PATH", ErrUnsupportedConfig)
	}

	scratch, err := os.CreateTemp("", "framevault-*.mp4")
	if err != nil {
		return err
	}
	scratch.Close()

	e.cfg = cfg
	e.outPath = scratch.Name()
	e.cmd = exec.Command("ffmpeg", encodeArgs(cfg, e.outPath)...)
	e.cmd.Stderr = &e.stderr

	e.stdin, err = e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.outPath)
		return err
	}
	if err := e.cmd.Start(); err != nil {
		os.Remove(e.outPath)
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	e.mu.Lock()
	e.started = true
	e.mu.Unlock()
	go e.writeLoop()
	return nil
}

func (e *PipeEncoder) writeLoop() {
	defer close(e.writerDone)
	for frame := range e.pending {
		if _, err := e.stdin.Write(frame.Pix); err != nil {
			e.setErr(fmt.Errorf("writing frame to ffmpeg: %w", err))
		}
		select {
		case e.ready <- struct{}{}:
		default:
		}
	}
}

func (e *PipeEncoder) setErr(err error) {
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
}

func (e *PipeEncoder) Submit(frame *image.NRGBA) error {
	e.mu.Lock()
	flushed, err := e.flushed, e.err
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if flushed {
		return ErrEncoderClosed
	}
	e.pending <- frame
	return nil
}

func (e *PipeEncoder) QueueDepth() int        { return len(e.pending) }
func (e *PipeEncoder) Ready() <-chan struct{} { return e.ready }

func (e *PipeEncoder) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *PipeEncoder) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.flushed {
		e.mu.Unlock()
		return e.err
	}
	e.flushed = true
	e.mu.Unlock()

	close(e.pending)
	select {
	case <-e.writerDone:
	case <-ctx.Done():
		e.cmd.Process.Kill()
		e.cmd.Wait()
		e.stdin.Close()
		os.Remove(e.outPath)
		return ctx.Err()
	}
	e.stdin.Close()

	if err := e.cmd.Wait(); err != nil {
		os.Remove(e.outPath)
		return fmt.Errorf("ffmpeg failed: %w: %s", err, truncate(e.stderr.String(), 500))
	}
	if err := e.Err(); err != nil {
		return err
	}

	out, err := os.ReadFile(e.outPath)
	if err != nil {
		return err
	}
	os.Remove(e.outPath)

	e.mu.Lock()
	e.out = out
	e.mu.Unlock()
	return nil
}

// Abort kills the ffmpeg subprocess, stops the writer goroutine and removes
// the scratch file. After a successful Flush it leaves the finished stream
// alone; before Probe it has nothing to release.
func (e *PipeEncoder) Abort() {
	e.mu.Lock()
	if e.flushed || !e.started {
		e.mu.Unlock()
		return
	}
	e.flushed = true
	e.mu.Unlock()

	close(e.pending)
	e.cmd.Process.Kill()
	<-e.writerDone
	e.stdin.Close()
	e.cmd.Wait()
	os.Remove(e.outPath)
}

func (e *PipeEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// PipeSource reads decoded frames back from an ffmpeg subprocess emitting
// raw RGBA on stdout.
type PipeSource struct {
	width    int
	height   int
	duration time.Duration

	cmd    *exec.Cmd
	stdout *bufio.Reader
}

type probeInfo struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func decodeArgs(path string) []string {
	return []string{
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-v", "quiet",
		"-",
	}
}

// OpenPipe probes the video with ffprobe and starts streaming its frames.
func OpenPipe(path string) (*PipeSource, error) {
	probe := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams", "-show_format",
		path,
	)
	raw, err := probe.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed on %s: %w", path, err)
	}

	var info probeInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	s := &PipeSource{}
	for _, stream := range info.Streams {
		if stream.CodecType == "video" {
			s.width, s.height = stream.Width, stream.Height
			break
		}
	}
	if s.width == 0 || s.height == 0 {
		return nil, fmt.Errorf("no video stream in %s", path)
	}
	if secs, err := strconv.ParseFloat(info.Format.Duration, 64); err == nil {
		s.duration = time.Duration(secs * float64(time.Second))
	}

	s.cmd = exec.Command("ffmpeg", decodeArgs(path)...)
	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	s.stdout = bufio.NewReaderSize(stdout, s.width*4*16)
	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting ffmpeg: %w", err)
	}
	return s, nil
}

func (s *PipeSource) Bounds() (int, int)      { return s.width, s.height }
func (s *PipeSource) Duration() time.Duration { return s.duration }

func (s *PipeSource) NextFrame(ctx context.Context) (*image.NRGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	if _, err := io.ReadFull(s.stdout, img.Pix); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return img, nil
}

func (s *PipeSource) Close() error {
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	// The usual exit here is "signal: killed"; not a caller problem.
	s.cmd.Wait()
	return nil
}

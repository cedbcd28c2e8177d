package vault

import (
	"encoding/binary"
	"fmt"
)

// Container wire layout:
//
//	0-3:          magic "FVLT"
//	4:            container version
//	5-8:          header length hl (big-endian uint32)
//	9..9+hl:      obfuscated header bytes
//	9+hl..+4:     CRC-32 of the obfuscated header bytes (big-endian)
//	then:         raw file bytes
//
// The container has no relation to frame boundaries except sequential byte
// offset: it is sliced into effectiveBytesPerFrame chunks in order.
const (
	Magic   = "FVLT"
	Version = 1

	preludeLen  = 9 // magic + version + header length
	checksumLen = 4

	// Sanity bounds on the header length field; anything outside is treated
	// as corruption, not as a header to allocate.
	headerLenMin = 10
	headerLenMax = 10000
)

// Container is the immutable hidden byte stream, built once per encode and
// sliced per frame index.
type Container struct {
	buf        []byte
	frameBytes int
}

// NewContainer frames hdr and file into the wire layout, slicing into
// frameBytes-sized chunks.
func NewContainer(hdr Header, file []byte, frameBytes int) (*Container, error) {
	if frameBytes < 1 {
		return nil, fmt.Errorf("%w: frame payload of %d bytes", ErrConfig, frameBytes)
	}

	plain, err := hdr.encode()
	if err != nil {
		return nil, err
	}
	obf := Scramble(plain)
	if len(obf) < headerLenMin || len(obf) > headerLenMax {
		return nil, fmt.Errorf("%w: encoded header is %d bytes", ErrHeaderLength, len(obf))
	}

	buf := make([]byte, 0, preludeLen+len(obf)+checksumLen+len(file))
	buf = append(buf, Magic...)
	buf = append(buf, Version)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(obf)))
	buf = append(buf, obf...)
	buf = binary.BigEndian.AppendUint32(buf, Checksum(obf))
	buf = append(buf, file...)

	return &Container{buf: buf, frameBytes: frameBytes}, nil
}

func (c *Container) Len() int { return len(c.buf) }

// DataFrames is the number of frames needed to carry the whole container.
func (c *Container) DataFrames() int {
	return (len(c.buf) + c.frameBytes - 1) / c.frameBytes
}

// FrameSlice returns the container bytes for frame i, shorter for the last
// data frame and nil beyond it. Frames past the container still get embedded,
// carrying all-zero payload, to pad out the minimum frame count.
func (c *Container) FrameSlice(i int) []byte {
	start := i * c.frameBytes
	if start >= len(c.buf) || i < 0 {
		return nil
	}
	end := start + c.frameBytes
	if end > len(c.buf) {
		end = len(c.buf)
	}
	return c.buf[start:end]
}

// Parser reassembles a container from extracted frame payloads. The header
// may be split arbitrarily across frames, so it accumulates bytes and
// validates incrementally: magic and version as soon as the prelude is
// complete, header checksum once header and checksum have arrived, then the
// declared file length bounds the rest.
type Parser struct {
	buf         []byte
	hdr         *Header
	headerEnd   int // prelude + hl + checksum, once known
	totalNeeded int // headerEnd + declared file size, once known
}

func NewParser() *Parser { return &Parser{} }

// Feed appends one frame's extracted bytes. Format violations are returned
// as fatal, kind-tagged errors the moment enough bytes exist to detect them.
func (p *Parser) Feed(chunk []byte) error {
	if p.hdr != nil {
		room := p.totalNeeded - len(p.buf)
		if room > 0 {
			if room > len(chunk) {
				room = len(chunk)
			}
			p.buf = append(p.buf, chunk[:room]...)
		}
		return nil
	}

	p.buf = append(p.buf, chunk...)
	if len(p.buf) < preludeLen {
		return nil
	}

	if string(p.buf[0:4]) != Magic {
		return fmt.Errorf("%w: magic %q", ErrNotVault, p.buf[0:4])
	}
	if p.buf[4] != Version {
		return fmt.Errorf("%w: stream version %d, supported %d", ErrVersion, p.buf[4], Version)
	}
	hl := int(binary.BigEndian.Uint32(p.buf[5:9]))
	if hl < headerLenMin || hl > headerLenMax {
		return fmt.Errorf("%w: %d bytes", ErrHeaderLength, hl)
	}

	p.headerEnd = preludeLen + hl + checksumLen
	if len(p.buf) < p.headerEnd {
		return nil
	}

	obf := p.buf[preludeLen : preludeLen+hl]
	stored := binary.BigEndian.Uint32(p.buf[preludeLen+hl : p.headerEnd])
	if got := Checksum(obf); got != stored {
		return fmt.Errorf("%w: stored %08x, computed %08x", ErrHeaderChecksum, stored, got)
	}

	hdr, err := parseHeader(Scramble(obf))
	if err != nil {
		return err
	}
	p.hdr = hdr
	p.totalNeeded = p.headerEnd + int(hdr.Size)
	if len(p.buf) > p.totalNeeded {
		p.buf = p.buf[:p.totalNeeded]
	}
	return nil
}

// HeaderParsed reports whether the metadata header has been fully validated.
func (p *Parser) HeaderParsed() bool { return p.hdr != nil }

// Header returns the parsed header; only valid after HeaderParsed.
func (p *Parser) Header() Header { return *p.hdr }

// TotalNeeded is the full container length declared by the header, zero
// until the header is parsed.
func (p *Parser) TotalNeeded() int { return p.totalNeeded }

// Received is the number of container bytes accumulated so far.
func (p *Parser) Received() int { return len(p.buf) }

// Complete reports whether every declared byte has arrived.
func (p *Parser) Complete() bool {
	return p.hdr != nil && len(p.buf) >= p.totalNeeded
}

// File returns the recovered file bytes; only valid once Complete.
func (p *Parser) File() []byte {
	return p.buf[p.headerEnd:p.totalNeeded]
}

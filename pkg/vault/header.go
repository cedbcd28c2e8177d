package vault

import (
	"encoding/json"
	"fmt"
)

// Header is the metadata hidden alongside the file. It repeats the embed-time
// engine parameters so a decoder can confirm what it is looking at, and
// carries the file checksum for the post-extraction integrity verdict.
type Header struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Version    int    `json:"version"`
	Quant      int    `json:"quant"`
	Redundancy int    `json:"redundancy"`
	Checksum   uint32 `json:"checksum"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	BlockSize  int    `json:"block"`
}

func (h Header) encode() ([]byte, error) {
	return json.Marshal(h)
}

// parseHeader decodes an unscrambled header, requiring name and size to be
// present. Everything else defaults to zero and is advisory.
func parseHeader(plain []byte) (*Header, error) {
	var wire struct {
		Name       *string `json:"name"`
		Size       *int64  `json:"size"`
		Version    int     `json:"version"`
		Quant      int     `json:"quant"`
		Redundancy int     `json:"redundancy"`
		Checksum   uint32  `json:"checksum"`
		Width      int     `json:"width"`
		Height     int     `json:"height"`
		BlockSize  int     `json:"block"`
	}
	if err := json.Unmarshal(plain, &wire); err != nil {
		return nil, fmt.Errorf("%w: undecodable header body: %v", ErrHeaderFields, err)
	}
	if wire.Name == nil || wire.Size == nil {
		return nil, fmt.Errorf("%w: name and size are required", ErrHeaderFields)
	}
	if *wire.Size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrHeaderFields, *wire.Size)
	}
	return &Header{
		Name:       *wire.Name,
		Size:       *wire.Size,
		Version:    wire.Version,
		Quant:      wire.Quant,
		Redundancy: wire.Redundancy,
		Checksum:   wire.Checksum,
		Width:      wire.Width,
		Height:     wire.Height,
		BlockSize:  wire.BlockSize,
	}, nil
}

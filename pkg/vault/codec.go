package vault

import (
	"fmt"
	"image"

	"github.com/framevault/framevault/internal/bitperm"
	"github.com/framevault/framevault/internal/bitstream"
	"github.com/framevault/framevault/internal/qim"
	"github.com/framevault/framevault/internal/repetition"
)

// Codec performs the per-frame embed and extract steps for one configuration.
// It owns the permutation cache, so encode and decode sessions built on the
// same Codec share permutations without any package-global state.
type Codec struct {
	cfg   Config
	cap   Capacity
	perms *bitperm.Cache
}

func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg, cap: cfg.Capacity(), perms: bitperm.NewCache()}, nil
}

func (c *Codec) Config() Config     { return c.cfg }
func (c *Codec) Capacity() Capacity { return c.cap }

// EmbedFrame writes one frame's share of the container into img in place.
// A nil or short slice embeds as zero bits, so padding frames past the end
// of the container go through the same path. img must have the configured
// geometry.
func (c *Codec) EmbedFrame(img *image.NRGBA, slice []byte) error {
	if err := c.checkBounds(img); err != nil {
		return err
	}

	logical := make([]bool, c.cap.EffectiveBits)
	bitstream.Unpack(slice, logical)

	raw := make([]bool, c.cap.BitsPerFrame)
	repetition.Expand(logical, c.cfg.Redundancy, raw)

	perm := c.perms.Get(c.cap.BitsPerFrame)
	shuffled := make([]bool, c.cap.BitsPerFrame)
	for i, bit := range raw {
		shuffled[perm[i]] = bit
	}

	bs := c.cfg.BlockSize
	for b, bit := range shuffled {
		x0 := (b % c.cap.Cols) * bs
		y0 := (b / c.cap.Cols) * bs

		bitVal := 0
		if bit {
			bitVal = 1
		}
		avg := qim.BlockLuma(img, x0, y0, bs)
		target := qim.Embed(avg, bitVal, c.cfg.Quant)
		qim.ShiftBlock(img, x0, y0, bs, target-avg)
	}
	return nil
}

// ExtractFrame classifies every block of img and returns the frame's
// effectiveBytesPerFrame payload bytes. It never mutates img.
func (c *Codec) ExtractFrame(img *image.NRGBA) ([]byte, error) {
	if err := c.checkBounds(img); err != nil {
		return nil, err
	}

	bs := c.cfg.BlockSize
	shuffled := make([]bool, c.cap.BitsPerFrame)
	for b := range shuffled {
		x0 := (b % c.cap.Cols) * bs
		y0 := (b / c.cap.Cols) * bs
		shuffled[b] = qim.Extract(qim.BlockLuma(img, x0, y0, bs), c.cfg.Quant) == 1
	}

	perm := c.perms.Get(c.cap.BitsPerFrame)
	raw := make([]bool, c.cap.BitsPerFrame)
	for i := range raw {
		raw[i] = shuffled[perm[i]]
	}

	logical := repetition.Fold(raw[:c.cap.EffectiveBits*c.cfg.Redundancy], c.cfg.Redundancy)

	out := make([]byte, c.cap.EffectiveBytes)
	bitstream.Pack(logical, out)
	return out, nil
}

func (c *Codec) checkBounds(img *image.NRGBA) error {
	b := img.Bounds()
	if b.Dx() != c.cfg.Width || b.Dy() != c.cfg.Height {
		return fmt.Errorf("%w: frame is %dx%d, configuration is %dx%d",
			ErrConfig, b.Dx(), b.Dy(), c.cfg.Width, c.cfg.Height)
	}
	return nil
}

// Package bitperm builds deterministic pseudo-random bit-position permutations.
//
// Encode and decode must derive the exact same permutation from the same bit
// count, with no external randomness, or every decode of the stream corrupts.
// The generator is therefore a fixed-seed linear-congruential sequence spelled
// out here rather than math/rand, whose shuffle algorithm is not guaranteed
// stable across Go releases.
package bitperm

import "sync"

// LCG constants (Numerical Recipes) and the fixed shuffle seed.
const (
	lcgMul = 1664525
	lcgInc = 1013904223

	shuffleSeed = 0x6A09E667
)

// New returns a bijection of [0, n): a slice p of length n containing each
// index exactly once. Forward use scatters position i to p[i]; inverse use
// gathers position i from p[i].
func New(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates driven by the LCG, high index down.
	state := uint32(shuffleSeed)
	for i := n - 1; i >= 1; i-- {
		state = state*lcgMul + lcgInc
		j := int(state % uint32(i+1))
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// Cache memoizes permutations by bit count. It is owned by whoever constructs
// it; sharing one across encode and decode sessions is safe.
type Cache struct {
	mu    sync.Mutex
	perms map[int][]int
}

func NewCache() *Cache {
	return &Cache{perms: make(map[int][]int)}
}

// Get returns the permutation for n bits, building it on first use. Callers
// must not modify the returned slice.
func (c *Cache) Get(n int) []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.perms[n]
	if !ok {
		p = New(n)
		c.perms[n] = p
	}
	return p
}

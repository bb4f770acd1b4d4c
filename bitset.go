package ecs

import "math/bits"

// idBitSet is a dense bitset indexed directly by absolute id value (not a
// per-archetype local bit index). It backs the component registry's
// per-flag membership sets, which must address the full [1, C_MAX] space
// rather than the handful of bits any one archetype's shape mask needs —
// the reason this isn't built on top of github.com/TheBitDrifter/mask's
// fixed-width Mask/Mask256 (those size to a single shape's bit count, the
// registry needs one flat space across every component ever registered).
type idBitSet struct {
	words []uint64
}

func (b *idBitSet) ensure(bit int) {
	word := bit / 64
	if word >= len(b.words) {
		grown := make([]uint64, word+1)
		copy(grown, b.words)
		b.words = grown
	}
}

func (b *idBitSet) set(bit int) {
	b.ensure(bit)
	b.words[bit/64] |= 1 << uint(bit%64)
}

func (b *idBitSet) clear(bit int) {
	if bit/64 >= len(b.words) {
		return
	}
	b.words[bit/64] &^= 1 << uint(bit%64)
}

func (b *idBitSet) has(bit int) bool {
	if bit < 0 || bit/64 >= len(b.words) {
		return false
	}
	return b.words[bit/64]&(1<<uint(bit%64)) != 0
}

func (b *idBitSet) isEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// count returns the number of set bits.
func (b *idBitSet) count() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

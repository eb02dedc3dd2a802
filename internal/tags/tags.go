// Package tags is a fixed-width bitset over tag indices.
package tags

import (
	"math/bits"
	"strconv"
	"strings"
)

// Max is the largest supported tag count.
const Max = 32

// Set has bit i set when tag i is a member.
type Set uint32

// Of returns the set holding only tag i.
func Of(i int) Set {
	if i < 0 || i >= Max {
		return 0
	}
	return 1 << uint(i)
}

// All returns the set of the first n tags.
func All(n int) Set {
	if n >= Max {
		return ^Set(0)
	}
	if n <= 0 {
		return 0
	}
	return Set(1)<<uint(n) - 1
}

func (s Set) Has(i int) bool {
	return s&Of(i) != 0
}

func (s Set) Empty() bool {
	return s == 0
}

func (s Set) Union(o Set) Set {
	return s | o
}

func (s Set) Intersects(o Set) bool {
	return s&o != 0
}

func (s Set) Toggle(i int) Set {
	return s ^ Of(i)
}

func (s Set) Len() int {
	return bits.OnesCount32(uint32(s))
}

// First returns the lowest member, or -1.
func (s Set) First() int {
	if s == 0 {
		return -1
	}
	return bits.TrailingZeros32(uint32(s))
}

// Indices lists members in ascending order.
func (s Set) Indices() []int {
	out := make([]int, 0, s.Len())
	for v := uint32(s); v != 0; v &= v - 1 {
		out = append(out, bits.TrailingZeros32(v))
	}
	return out
}

// Mask limits s to the first n tags.
func (s Set) Mask(n int) Set {
	return s & All(n)
}

func (s Set) String() string {
	idx := s.Indices()
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v + 1)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

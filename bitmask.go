package simdjson

import "math/bits"

// firstOffset returns the index of the lowest set bit in m, in
// little-endian bit order, or 64 if m is zero.
func firstOffset(m uint64) int {
	if m == 0 {
		return 64
	}
	return bits.TrailingZeros64(m)
}

// before reports whether m has a set bit strictly before n's first set bit.
// n is itself a single-bit mask (the bit whose position we are testing
// against); per §4.B this is `m & (n - 1) != 0` in little-endian
// orientation.
func before(m, n uint64) bool {
	return m&(n-1) != 0
}

// clearLowestSet clears the lowest set bit of m and returns the result,
// along with the position that was cleared.
func clearLowestSet(m uint64) (cleared uint64, pos int) {
	pos = firstOffset(m)
	return m & (m - 1), pos
}

// prefixXOR computes, for every bit position i, the XOR of all bits of m at
// positions <= i. This is the operation a 64x64 carryless multiply by
// all-ones computes in one instruction on platforms with PCLMUL; here it is
// always computed with the six-round shift-XOR ladder described in §4.B,
// which is semantically identical (§9) regardless of platform, since no
// pure-Go or ecosystem package exposes carryless multiplication without
// assembly we cannot assemble-and-verify in this environment.
func prefixXOR(m uint64) uint64 {
	m ^= m << 1
	m ^= m << 2
	m ^= m << 4
	m ^= m << 8
	m ^= m << 16
	m ^= m << 32
	return m
}

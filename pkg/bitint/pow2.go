// SPDX-License-Identifier: MIT
//
// Package bitint provides power-of-two helpers for FFT window and buffer
// sizing. All operations are constant time and allocation free.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Exact powers of 2 are preserved: NextPowerOfTwo(4096) == 4096.
// Non-positive input yields 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	// The size-1 keeps exact powers of 2 from being doubled:
	// Len64(4095) == 12, 1<<12 == 4096.
	return 1 << bits.Len64(uint64(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// A power of 2 has exactly one bit set, so n&(n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import (
	"github.com/cespare/xxhash"

	"github.com/framecase/framecase/utils/comparison"
)

// ChecksumAlgo computes a checksum over a byte region. Algorithms are
// caller-supplied; the stored value is truncated to the slot's integer
// width.
type ChecksumAlgo func([]byte) uint64

// XXHash64 is a ready-made checksum algorithm.
var XXHash64 ChecksumAlgo = xxhash.Sum64

// ChecksumKind is a fixed-width slot whose value is computed over a region
// of the enclosing structure's emitted bytes. During pack the slot emits
// zeros and is backfilled once the full frame is known; during unpack the
// recorded value is validated against the same computation. The covered
// region is [start:end) with every checksum region zero-filled; start and
// end count from the start of the frame when positive, from its end when
// negative, and an end of 0 means the end of the frame.
type ChecksumKind struct {
	inner *IntKind
	algo  ChecksumAlgo
	start int
	end   int
}

// Checksum declares a checksum slot stored as the given integer kind.
func Checksum(inner *IntKind, algo ChecksumAlgo, start, end int) *ChecksumKind {
	return &ChecksumKind{inner: inner, algo: algo, start: start, end: end}
}

// Extent returns the width of the underlying integer.
func (k *ChecksumKind) Extent() Extent {
	return k.inner.Extent()
}

// region resolves the covered [start, end) byte range for a frame of n
// bytes, clamping to the frame bounds.
func (k *ChecksumKind) region(n int) (int, int) {
	start, end := k.start, k.end
	if start < 0 {
		start += n
	}
	if end <= 0 {
		end += n
	}
	start = comparison.Clamp(start, 0, n)
	end = comparison.Clamp(end, start, n)
	return start, end
}

// compute runs the algorithm over the resolved region of data, truncating
// to the slot width.
func (k *ChecksumKind) compute(data []byte) uint64 {
	start, end := k.region(len(data))
	sum := k.algo(data[start:end])
	if k.inner.width < 8 {
		sum &= uint64(1)<<(uint(k.inner.width)*8) - 1
	}
	return sum
}

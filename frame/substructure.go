/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

// SubstructureKind embeds another structure as a single slot. With a length
// provider the sub-structure is decoded from exactly the provided byte
// count; without one it is self-delimiting and consumes what its own slots
// consume (or, if it contains a greedy slot, the rest of the region).
type SubstructureKind struct {
	sub      *Structure
	provider string
}

// Substruct declares an embedded structure slot.
func Substruct(sub *Structure) *SubstructureKind {
	return &SubstructureKind{sub: sub}
}

// Sized bounds the sub-structure by the named length provider and returns
// the kind for chaining at declaration time.
func (k *SubstructureKind) Sized(provider string) *SubstructureKind {
	k.provider = provider
	return k
}

// Extent classifies the slot from the embedded structure's own shape.
func (k *SubstructureKind) Extent() Extent {
	if k.provider != "" {
		return BoundedExtent
	}
	if n, fixed := k.sub.fixedSize(); fixed {
		return FixedExtent(n)
	}
	if k.sub.greedy >= 0 {
		return GreedyExtent
	}
	return BoundedExtent
}

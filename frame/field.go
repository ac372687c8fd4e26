/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package frame implements declarative binary frame layouts: a Structure
// describes an ordered sequence of named slots, each bound to a field kind,
// and derives a packer and an unpacker honoring the cross-field dependencies
// between slots (length prefixes, dispatch bytes, greedy tails, bit records,
// conditional and computed fields).
package frame

import "strings"

// ExtentClass classifies how a field kind's width is determined.
type ExtentClass int

const (
	// ExtentFixed means the width is known without looking at data.
	ExtentFixed ExtentClass = iota
	// ExtentBounded means the width is determined by a length provider or
	// is self-delimiting.
	ExtentBounded
	// ExtentGreedy means the field consumes all bytes remaining in its
	// enclosing region, minus the fixed suffix after it.
	ExtentGreedy
)

// Extent is a field kind's width classification. Width is meaningful only
// for ExtentFixed.
type Extent struct {
	Class ExtentClass
	Width int
}

// FixedExtent returns a fixed extent of n bytes.
func FixedExtent(n int) Extent {
	return Extent{Class: ExtentFixed, Width: n}
}

// BoundedExtent is the extent of a provider-bounded or self-delimiting field.
var BoundedExtent = Extent{Class: ExtentBounded}

// GreedyExtent is the extent of a field consuming the rest of its region.
var GreedyExtent = Extent{Class: ExtentGreedy}

// Kind is one field variant in a structure declaration. The set of kinds is
// closed: the packer and unpacker switch over the concrete types.
type Kind interface {
	// Extent returns the width classification of this kind.
	Extent() Extent
}

// SlotDecl binds a name to a field kind in a structure declaration.
type SlotDecl struct {
	Name string
	Kind Kind
}

// Slot declares one named slot for New.
func Slot(name string, kind Kind) SlotDecl {
	return SlotDecl{Name: name, Kind: kind}
}

// providerRef points at a resolved provider slot. When the provider is a bit
// record sub-slot, bit names the sub-slot within it.
type providerRef struct {
	slot int
	bit  string
}

// splitProviderRef splits "slot" or "slot.sub" references used by consumers.
func splitProviderRef(ref string) (slot string, bit string) {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// unwrapConditional peels ConditionalKind wrappers off a kind.
func unwrapConditional(k Kind) Kind {
	for {
		ck, ok := k.(*ConditionalKind)
		if !ok {
			return k
		}
		k = ck.inner
	}
}

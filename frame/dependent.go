/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

// DependentKind is a zero-width computed slot mirroring the value of an
// earlier slot through a transform. It is recomputed during both pack and
// unpack, so round-tripped frames compare equal.
type DependentKind struct {
	provider  string
	transform func(interface{}) interface{}
}

// Dependent declares a computed slot mirroring the named earlier slot. A
// nil transform mirrors the value unchanged.
func Dependent(provider string, transform func(interface{}) interface{}) *DependentKind {
	return &DependentKind{provider: provider, transform: transform}
}

// Extent is zero bytes: the provider slot owns the wire representation.
func (k *DependentKind) Extent() Extent {
	return FixedExtent(0)
}

// derive computes the mirrored value from the provider's value.
func (k *DependentKind) derive(v interface{}) interface{} {
	if k.transform == nil {
		return v
	}
	return k.transform(v)
}

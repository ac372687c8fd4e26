/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import "sort"

// DispatchKind marks an unsigned integer slot as the dispatch key for a
// DispatchTargetKind later in the same structure. Its value is derived at
// pack time from the structure assigned to the target.
type DispatchKind struct {
	inner *IntKind
}

// Dispatch declares a dispatch key stored as the given integer kind.
func Dispatch(inner *IntKind) *DispatchKind {
	return &DispatchKind{inner: inner}
}

// Extent returns the width of the underlying integer.
func (k *DispatchKind) Extent() Extent {
	return k.inner.Extent()
}

// DispatchTargetKind selects a sub-structure by the value of an associated
// dispatch slot. Without a length provider the target consumes the rest of
// the enclosing region.
type DispatchTargetKind struct {
	dispatch string
	provider string
	mapping  map[uint64]*Structure
	fallback *Structure
	inverse  map[*Structure]uint64
}

// Target declares a dispatch target keyed by the named dispatch slot.
func Target(dispatch string, mapping map[uint64]*Structure) *DispatchTargetKind {
	inverse := make(map[*Structure]uint64, len(mapping))
	keys := make([]uint64, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, key := range keys {
		s := mapping[key]
		if _, ok := inverse[s]; !ok {
			inverse[s] = key
		}
	}
	return &DispatchTargetKind{dispatch: dispatch, mapping: mapping, inverse: inverse}
}

// Sized bounds the target by the named length provider and returns the kind
// for chaining at declaration time.
func (k *DispatchTargetKind) Sized(provider string) *DispatchTargetKind {
	k.provider = provider
	return k
}

// Default sets the structure used when the dispatch key has no mapping
// entry.
func (k *DispatchTargetKind) Default(s *Structure) *DispatchTargetKind {
	k.fallback = s
	return k
}

// Extent returns Bounded when a length provider is declared, Greedy
// otherwise.
func (k *DispatchTargetKind) Extent() Extent {
	if k.provider == "" {
		return GreedyExtent
	}
	return BoundedExtent
}

// target resolves the structure for a dispatch key.
func (k *DispatchTargetKind) target(key uint64) (*Structure, error) {
	if s, ok := k.mapping[key]; ok {
		return s, nil
	}
	if k.fallback != nil {
		return k.fallback, nil
	}
	return nil, &UnknownDispatchError{Key: key}
}

// keyFor derives the dispatch key for an assigned body structure.
func (k *DispatchTargetKind) keyFor(s *Structure) (uint64, bool) {
	key, ok := k.inverse[s]
	return key, ok
}

/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package protocol

import (
	"errors"

	"github.com/cornelk/hashmap"
	"github.com/framecase/framecase/frame"
)

// ErrDuplicateStructure is returned when registering a name twice.
var ErrDuplicateStructure = errors.New("structure name already registered")

// Registry is a concurrent name-to-structure table. Structure descriptors
// are immutable, so a registry can be shared freely between goroutines,
// schema loaders, and framers.
type Registry struct {
	structures *hashmap.HashMap
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{structures: &hashmap.HashMap{}}
}

// Register adds a structure under its declared name.
func (r *Registry) Register(s *frame.Structure) error {
	_, existed := r.structures.GetOrInsert(s.Name(), s)
	if existed {
		return ErrDuplicateStructure
	}
	return nil
}

// Lookup returns the structure registered under name.
func (r *Registry) Lookup(name string) (*frame.Structure, bool) {
	v, ok := r.structures.GetStringKey(name)
	if !ok {
		return nil, false
	}
	return v.(*frame.Structure), true
}

// Len returns the number of registered structures.
func (r *Registry) Len() int {
	return r.structures.Len()
}

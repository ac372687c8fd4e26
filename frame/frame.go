/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
)

// Frame is one mutable instance of a structure: a key-indexed container of
// slot values. Instances start empty, are populated by the caller or by the
// unpacker, and are frozen by Pack, which writes derived fields (lengths,
// dispatch keys, dependents, checksums) back into them.
type Frame struct {
	desc *Structure
	vals []interface{}
}

// NewFrame creates an empty instance of the structure.
func (s *Structure) NewFrame() *Frame {
	return &Frame{desc: s, vals: make([]interface{}, len(s.slots))}
}

// Structure returns the frame's descriptor.
func (f *Frame) Structure() *Structure {
	return f.desc
}

// Set assigns a slot value. Magic, length, dispatch, dependent, and
// checksum slots are derived and cannot be set.
func (f *Frame) Set(name string, v interface{}) error {
	i, ok := f.desc.byName[name]
	if !ok {
		return declErrorf("structure %q has no slot %q", f.desc.name, name)
	}
	kind := unwrapConditional(f.desc.slots[i].kind)
	switch kind.(type) {
	case *MagicKind:
		return declErrorf("slot %q: magic bytes cannot be set", name)
	case *LengthKind:
		return declErrorf("slot %q: length providers are derived at pack time", name)
	case *DispatchKind:
		return declErrorf("slot %q: dispatch keys are derived at pack time", name)
	case *DependentKind:
		return declErrorf("slot %q: dependent fields are derived at pack time", name)
	case *ChecksumKind:
		return declErrorf("slot %q: checksums are derived at pack time", name)
	}
	norm, err := normalizeValue(kind, v)
	if err != nil {
		return &Error{Kind: KindRange, Path: name, Cause: err}
	}
	f.vals[i] = norm
	return nil
}

// normalizeValue coerces caller-supplied values into the canonical
// representations the unpacker produces, so round-tripped frames compare
// equal: uint64/int64 for integers, float64 for floats, []byte for byte
// slots (strings are converted), canonical BitValues for bit records.
func normalizeValue(kind Kind, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch k := kind.(type) {
	case *IntKind:
		if k.signed {
			n, ok := toInt64(v)
			if !ok {
				return nil, &RangeError{Value: v}
			}
			return n, nil
		}
		n, ok := toUint64(v)
		if !ok {
			return nil, &RangeError{Value: v}
		}
		return n, nil
	case *FloatKind:
		n, ok := toFloat64(v)
		if !ok {
			return nil, &RangeError{Value: v}
		}
		return n, nil
	case *FixedBytesKind, *PayloadKind:
		switch b := v.(type) {
		case []byte:
			out := make([]byte, len(b))
			copy(out, b)
			return out, nil
		case string:
			return []byte(b), nil
		}
		return nil, &RangeError{Value: v}
	case *BitRecordKind:
		var in map[string]interface{}
		switch m := v.(type) {
		case BitValues:
			in = m
		case map[string]interface{}:
			in = m
		default:
			return nil, &RangeError{Value: v}
		}
		out := BitValues{}
		for name, sv := range in {
			sub, ok := k.sub(name)
			if !ok {
				return nil, &RangeError{Value: name}
			}
			if sub.Bool {
				flag, ok := sv.(bool)
				if !ok {
					return nil, &RangeError{Value: sv}
				}
				out[name] = flag
				continue
			}
			n, ok := toUint64(sv)
			if !ok {
				return nil, &RangeError{Value: sv}
			}
			out[name] = n
		}
		// Unset sub-slots hold their zero values, matching what the
		// unpacker produces.
		for _, sub := range k.subs {
			if _, ok := out[sub.Name]; ok {
				continue
			}
			if sub.Bool {
				out[sub.Name] = false
			} else {
				out[sub.Name] = uint64(0)
			}
		}
		return out, nil
	}
	return v, nil
}

// Get returns a slot value, or nil when the slot is unset (or an absent
// conditional). Magic slots return their declared sequence.
func (f *Frame) Get(name string) interface{} {
	i, ok := f.desc.byName[name]
	if !ok {
		return nil
	}
	if mk, ok := unwrapConditional(f.desc.slots[i].kind).(*MagicKind); ok {
		return mk.Pack()
	}
	return f.vals[i]
}

// Has reports whether the named slot holds a value.
func (f *Frame) Has(name string) bool {
	i, ok := f.desc.byName[name]
	if !ok {
		return false
	}
	return f.vals[i] != nil
}

// Uint returns an unsigned integer slot value, or 0 when unset.
func (f *Frame) Uint(name string) uint64 {
	v, _ := toUint64(f.Get(name))
	return v
}

// Int returns a signed integer slot value, or 0 when unset.
func (f *Frame) Int(name string) int64 {
	v, _ := toInt64(f.Get(name))
	return v
}

// Float returns a float slot value, or 0 when unset.
func (f *Frame) Float(name string) float64 {
	v, _ := toFloat64(f.Get(name))
	return v
}

// Bytes returns a byte slot value, or nil.
func (f *Frame) Bytes(name string) []byte {
	b, _ := f.Get(name).([]byte)
	return b
}

// Bool returns a boolean slot value, or false.
func (f *Frame) Bool(name string) bool {
	b, _ := f.Get(name).(bool)
	return b
}

// Bits returns a bit record slot value, or nil.
func (f *Frame) Bits(name string) BitValues {
	v, _ := f.Get(name).(BitValues)
	return v
}

// Bit returns one sub-slot of a bit record slot ("record", "sub").
func (f *Frame) Bit(record, sub string) interface{} {
	vals := f.Bits(record)
	if vals == nil {
		return nil
	}
	return vals[sub]
}

// Sub returns a substructure or dispatch target slot value, or nil.
func (f *Frame) Sub(name string) *Frame {
	v, _ := f.Get(name).(*Frame)
	return v
}

// Frames returns a field array slot value, or nil.
func (f *Frame) Frames(name string) []*Frame {
	v, _ := f.Get(name).([]*Frame)
	return v
}

// Pack encodes the frame per its descriptor.
func (f *Frame) Pack() ([]byte, error) {
	return f.desc.Pack(f)
}

// FromBytes unpacks a complete frame from data, consuming every byte.
func FromBytes(s *Structure, data []byte) (*Frame, error) {
	return s.Unpack(data)
}

// Equal reports whether two frames share a descriptor and hold equal
// values slot by slot.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.desc != o.desc {
		return false
	}
	for i := range f.vals {
		if !valueEqual(f.vals[i], o.vals[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case *Frame:
		bv, ok := b.(*Frame)
		return ok && av.Equal(bv)
	case []*Frame:
		bv, ok := b.([]*Frame)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case BitValues:
		bv, ok := b.(BitValues)
		return ok && reflect.DeepEqual(av, bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// String renders the frame for debugging.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.WriteString(f.desc.name)
	sb.WriteString(" (\n")
	for i := range f.desc.slots {
		fmt.Fprintf(&sb, "  %s=%v,\n", f.desc.slots[i].name, f.vals[i])
	}
	sb.WriteString(")")
	return sb.String()
}

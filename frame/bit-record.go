/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import "encoding/binary"

// BitSub declares one sub-slot of a bit record: an unsigned number of Bits
// bits, or a single-bit boolean when Bool is set.
type BitSub struct {
	Name string
	Bits int
	Bool bool
}

// BitNum declares an unsigned sub-slot of the given bit width.
func BitNum(name string, bits int) BitSub {
	return BitSub{Name: name, Bits: bits}
}

// BitFlag declares a single-bit boolean sub-slot.
func BitFlag(name string) BitSub {
	return BitSub{Name: name, Bits: 1, Bool: true}
}

// BitValues holds a bit record's sub-slot values: uint64 for numbers, bool
// for flags. Missing entries pack as zero.
type BitValues map[string]interface{}

// BitRecordKind is a fixed-width bit container. Sub-slots pack MSB-first
// into a big-endian integer of the declared width, serialized as width/8
// bytes. Sub-slots are addressable by name ("record.sub") and numeric
// sub-slots may act as length providers.
type BitRecordKind struct {
	bits int
	subs []BitSub
}

// Bits declares a bit record of the given container width in bits, which
// must be a multiple of 8 between 8 and 64, fully covered by the sub-slots.
func Bits(width int, subs ...BitSub) *BitRecordKind {
	return &BitRecordKind{bits: width, subs: subs}
}

// Extent returns the container width in bytes.
func (k *BitRecordKind) Extent() Extent {
	return FixedExtent(k.bits / 8)
}

// validate checks the container width and sub-slot coverage.
func (k *BitRecordKind) validate() error {
	if k.bits%8 != 0 || k.bits < 8 || k.bits > 64 {
		return declErrorf("bit record width must be a multiple of 8 between 8 and 64, was %d", k.bits)
	}
	sum := 0
	seen := make(map[string]bool, len(k.subs))
	for _, sub := range k.subs {
		if sub.Name == "" {
			return declErrorf("bit record sub-slot with empty name")
		}
		if seen[sub.Name] {
			return declErrorf("duplicate bit record sub-slot %q", sub.Name)
		}
		seen[sub.Name] = true
		if sub.Bits < 1 || sub.Bits > 64 {
			return declErrorf("bit record sub-slot %q has invalid width %d", sub.Name, sub.Bits)
		}
		sum += sub.Bits
	}
	if sum != k.bits {
		return declErrorf("bit record sub-slot widths sum to %d, container is %d bits", sum, k.bits)
	}
	return nil
}

// sub returns the named sub-slot declaration.
func (k *BitRecordKind) sub(name string) (BitSub, bool) {
	for _, s := range k.subs {
		if s.Name == name {
			return s, true
		}
	}
	return BitSub{}, false
}

// Pack composes the sub-slot values MSB-first and serializes the container
// big-endian. Unset sub-slots contribute zero bits.
func (k *BitRecordKind) Pack(v interface{}) ([]byte, error) {
	vals := BitValues{}
	if v != nil {
		var ok bool
		vals, ok = v.(BitValues)
		if !ok {
			return nil, &RangeError{Value: v}
		}
	}

	var composed uint64
	shift := uint(k.bits)
	for _, sub := range k.subs {
		shift -= uint(sub.Bits)
		raw, err := bitSubRaw(sub, vals[sub.Name])
		if err != nil {
			return nil, err
		}
		composed |= raw << shift
	}

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, composed)
	return buf[8-k.bits/8:], nil
}

// Unpack decomposes the container into named sub-slot values.
func (k *BitRecordKind) Unpack(b []byte) (interface{}, int, error) {
	width := k.bits / 8
	if len(b) < width {
		return nil, 0, &ShortBufferError{Needed: width, Available: len(b)}
	}
	buf := make([]byte, 8)
	copy(buf[8-width:], b[:width])
	composed := binary.BigEndian.Uint64(buf)

	vals := BitValues{}
	shift := uint(k.bits)
	for _, sub := range k.subs {
		shift -= uint(sub.Bits)
		mask := uint64(1)<<uint(sub.Bits) - 1
		raw := (composed >> shift) & mask
		if sub.Bool {
			vals[sub.Name] = raw == 1
		} else {
			vals[sub.Name] = raw
		}
	}
	return vals, width, nil
}

// bitSubRaw converts one sub-slot value to its raw bits, range-checking
// against the declared width.
func bitSubRaw(sub BitSub, v interface{}) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	if sub.Bool {
		flag, ok := v.(bool)
		if !ok {
			return 0, &RangeError{Value: v}
		}
		if flag {
			return 1, nil
		}
		return 0, nil
	}
	raw, ok := toUint64(v)
	if !ok {
		return 0, &RangeError{Value: v}
	}
	if sub.Bits < 64 && raw >= uint64(1)<<uint(sub.Bits) {
		return 0, &RangeError{Value: v}
	}
	return raw, nil
}

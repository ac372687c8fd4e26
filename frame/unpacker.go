/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import (
	"fmt"

	"github.com/framecase/framecase/utils/comparison"
)

// Unpack decodes a complete frame from data. Every byte must be consumed;
// trailing bytes are an error at the top level.
func (s *Structure) Unpack(data []byte) (*Frame, error) {
	f := s.NewFrame()
	n, err := s.unpackInto(f, data, 0)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, &Error{
			Kind:    KindLengthInconsistency,
			Path:    s.name,
			Offset:  n,
			Message: fmt.Sprintf("structure fully parsed but %d of %d bytes consumed", n, len(data)),
			Cause:   &LengthInconsistencyError{Declared: uint64(len(data)), Actual: uint64(n)},
		}
	}
	return f, nil
}

// UnpackPartial decodes one frame from the front of data and reports how
// many bytes it consumed, for embedding in an enclosing parse.
func (s *Structure) UnpackPartial(data []byte) (*Frame, int, error) {
	f := s.NewFrame()
	n, err := s.unpackInto(f, data, 0)
	if err != nil {
		return nil, n, err
	}
	return f, n, nil
}

// unpackInto walks the slots in wire order over the enclosing extent data,
// maintaining a cursor. base is the absolute offset of data within the
// top-level frame, carried for diagnostics.
func (s *Structure) unpackInto(f *Frame, data []byte, base int) (int, error) {
	cur := 0
	type sumSlot struct {
		slot   int
		offset int
	}
	var sums []sumSlot

	for i := range s.slots {
		start := cur
		n, err := s.unpackKind(f, i, s.slots[i].kind, data, cur, base)
		if err != nil {
			return cur, err
		}
		cur += n
		if n > 0 {
			if _, ok := unwrapConditional(s.slots[i].kind).(*ChecksumKind); ok {
				sums = append(sums, sumSlot{slot: i, offset: start})
			}
		}
	}

	// Checksums cover this structure's own extent with every checksum
	// region zero-filled, mirroring the packer.
	if len(sums) > 0 {
		region := make([]byte, cur)
		copy(region, data[:cur])
		for _, cs := range sums {
			k := unwrapConditional(s.slots[cs.slot].kind).(*ChecksumKind)
			for n := 0; n < k.inner.width; n++ {
				region[cs.offset+n] = 0
			}
		}
		for _, cs := range sums {
			k := unwrapConditional(s.slots[cs.slot].kind).(*ChecksumKind)
			recorded, _ := toUint64(f.vals[cs.slot])
			computed := k.compute(region)
			if recorded != computed {
				return cur, &Error{
					Kind:   KindChecksumMismatch,
					Path:   s.slots[cs.slot].name,
					Offset: base + cs.offset,
					Cause:  &ChecksumMismatchError{Recorded: recorded, Computed: computed},
				}
			}
		}
	}
	return cur, nil
}

// unpackKind decodes one slot starting at data[cur], returning the bytes it
// consumed.
func (s *Structure) unpackKind(f *Frame, i int, kind Kind, data []byte, cur, base int) (int, error) {
	name := s.slots[i].name
	remaining := len(data) - cur
	abs := base + cur

	switch k := kind.(type) {
	case *ConditionalKind:
		present, err := k.evaluate(f)
		if err != nil {
			err.(*Error).Path = name
			err.(*Error).Offset = abs
			return 0, err
		}
		if !present {
			return 0, nil
		}
		return s.unpackKind(f, i, k.inner, data, cur, base)

	case *IntKind:
		v, n, err := k.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *FloatKind:
		v, n, err := k.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *FixedBytesKind:
		v, n, err := k.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *MagicKind:
		v, n, err := k.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *BitRecordKind:
		v, n, err := k.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *LengthKind:
		v, n, err := k.inner.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *DispatchKind:
		v, n, err := k.inner.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *ChecksumKind:
		v, n, err := k.inner.Unpack(data[cur:])
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		f.vals[i] = v
		return n, nil

	case *DependentKind:
		v, err := s.readProvider(f, s.slots[i].provider)
		if err != nil {
			return 0, err
		}
		f.vals[i] = k.derive(v)
		return 0, nil

	case *PayloadKind:
		var size int
		if s.slots[i].provider.slot >= 0 {
			need, err := s.providerValue(f, s.slots[i].provider)
			if err != nil {
				return 0, err
			}
			if need > uint64(remaining) {
				return 0, wrapDetail(&ShortBufferError{Needed: int(need), Available: remaining}, name, abs)
			}
			size = int(need)
		} else {
			size = remaining - s.slots[i].fixedSuffix
			if size <= 0 {
				return 0, &Error{
					Kind:    KindGreedyUnderflow,
					Path:    name,
					Offset:  abs,
					Message: fmt.Sprintf("%d bytes remain but the fixed suffix needs %d", remaining, s.slots[i].fixedSuffix),
				}
			}
		}
		v := make([]byte, size)
		copy(v, data[cur:cur+size])
		f.vals[i] = v
		return size, nil

	case *SubstructureKind:
		return s.unpackNested(f, i, k.sub, s.slots[i].provider, data, cur, base)

	case *DispatchTargetKind:
		key, ok := toUint64(f.vals[s.slots[i].provider.slot])
		if !ok {
			return 0, &Error{Kind: KindUnsetField, Path: name, Offset: abs, Message: "dispatch key not decoded"}
		}
		target, err := k.target(key)
		if err != nil {
			return 0, wrapDetail(err, name, abs)
		}
		return s.unpackNested(f, i, target, s.slots[i].sizeProvider, data, cur, base)

	case *ArrayKind:
		return s.unpackArray(f, i, k, data, cur, base)
	}

	return 0, declErrorf("slot %q has an unknown field kind", name)
}

// unpackNested decodes a nested structure slot: bounded by a provider,
// greedy over the rest of the region, or self-delimiting.
func (s *Structure) unpackNested(f *Frame, i int, sub *Structure, bound providerRef, data []byte, cur, base int) (int, error) {
	name := s.slots[i].name
	remaining := len(data) - cur
	abs := base + cur

	switch {
	case bound.slot >= 0:
		need, err := s.providerValue(f, bound)
		if err != nil {
			return 0, err
		}
		if need > uint64(remaining) {
			return 0, wrapDetail(&ShortBufferError{Needed: int(need), Available: remaining}, name, abs)
		}
		region := data[cur : cur+int(need)]
		nested := sub.NewFrame()
		m, err := sub.unpackInto(nested, region, abs)
		if err != nil {
			return 0, prefixPath(err, name)
		}
		if m != int(need) {
			return 0, &Error{
				Kind:   KindLengthInconsistency,
				Path:   name,
				Offset: abs + m,
				Cause:  &LengthInconsistencyError{Declared: need, Actual: uint64(m)},
			}
		}
		f.vals[i] = nested
		return m, nil

	case s.slots[i].kind.Extent().Class == ExtentGreedy:
		size := remaining - s.slots[i].fixedSuffix
		if size < 0 {
			return 0, &Error{
				Kind:    KindGreedyUnderflow,
				Path:    name,
				Offset:  abs,
				Message: fmt.Sprintf("%d bytes remain but the fixed suffix needs %d", remaining, s.slots[i].fixedSuffix),
			}
		}
		region := data[cur : cur+size]
		nested := sub.NewFrame()
		m, err := sub.unpackInto(nested, region, abs)
		if err != nil {
			return 0, prefixPath(err, name)
		}
		if m != size {
			return 0, &Error{
				Kind:   KindLengthInconsistency,
				Path:   name,
				Offset: abs + m,
				Cause:  &LengthInconsistencyError{Declared: uint64(size), Actual: uint64(m)},
			}
		}
		f.vals[i] = nested
		return m, nil

	default:
		// Self-delimiting: the sub-structure consumes what its own slots
		// consume.
		nested := sub.NewFrame()
		m, err := sub.unpackInto(nested, data[cur:], abs)
		if err != nil {
			return 0, prefixPath(err, name)
		}
		f.vals[i] = nested
		return m, nil
	}
}

// unpackArray decodes a field array: count-sized, byte-sized, or greedy.
func (s *Structure) unpackArray(f *Frame, i int, k *ArrayKind, data []byte, cur, base int) (int, error) {
	name := s.slots[i].name
	remaining := len(data) - cur
	abs := base + cur
	ref := s.slots[i].provider

	if ref.slot >= 0 && s.providerIsCount(ref) {
		count, err := s.providerValue(f, ref)
		if err != nil {
			return 0, err
		}
		// Cap the preallocation: the count comes off the wire and may be
		// hostile; growth past the cap is left to append.
		elems := make([]*Frame, 0, comparison.Min(count, 64))
		off := 0
		for idx := uint64(0); idx < count; idx++ {
			el := k.elem.NewFrame()
			m, err := k.elem.unpackInto(el, data[cur+off:], abs+off)
			if err != nil {
				return 0, arrayElementError(err, name, int(idx))
			}
			elems = append(elems, el)
			off += m
		}
		f.vals[i] = elems
		return off, nil
	}

	var size int
	if ref.slot >= 0 {
		need, err := s.providerValue(f, ref)
		if err != nil {
			return 0, err
		}
		if need > uint64(remaining) {
			return 0, wrapDetail(&ShortBufferError{Needed: int(need), Available: remaining}, name, abs)
		}
		size = int(need)
	} else {
		size = remaining - s.slots[i].fixedSuffix
		if size < 0 {
			return 0, &Error{
				Kind:    KindGreedyUnderflow,
				Path:    name,
				Offset:  abs,
				Message: fmt.Sprintf("%d bytes remain but the fixed suffix needs %d", remaining, s.slots[i].fixedSuffix),
			}
		}
	}

	region := data[cur : cur+size]
	elems := []*Frame{}
	off := 0
	for off < len(region) {
		el := k.elem.NewFrame()
		m, err := k.elem.unpackInto(el, region[off:], abs+off)
		if err != nil {
			return 0, arrayElementError(err, name, len(elems))
		}
		if m == 0 {
			return 0, declErrorf("structure %q slot %q: zero-width array element", s.name, name)
		}
		elems = append(elems, el)
		off += m
	}
	f.vals[i] = elems
	return off, nil
}

// arrayElementError rewrites a failed element parse: running out of bytes
// mid-element is an ArrayElementUnderflow; anything else keeps its kind
// with the element's indexed path.
func arrayElementError(err error, name string, idx int) error {
	if fe, ok := err.(*Error); ok && fe.Kind == KindShortBuffer {
		fe.Kind = KindArrayElementUnderflow
	}
	return prefixPath(err, indexedPath(name, idx))
}

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
)

// Pack encodes a frame. Pass one walks the slots in wire order resolving
// derived values: dependent fields, dispatch keys, and provider values
// learned by packing each consumer into a scratch buffer (inner providers
// resolve before outer ones through the recursion). Pass two emits every
// slot and backfills checksum regions. Given the same frame state the
// output is byte-for-byte identical.
func (s *Structure) Pack(f *Frame) ([]byte, error) {
	if f == nil || f.desc != s {
		return nil, declErrorf("frame does not belong to structure %q", s.name)
	}
	if err := s.resolveDerived(f); err != nil {
		return nil, err
	}
	return s.emit(f)
}

// resolveDerived is pass one.
func (s *Structure) resolveDerived(f *Frame) error {
	for i := range s.slots {
		kind := s.slots[i].kind
		if ck, ok := kind.(*ConditionalKind); ok {
			present, err := ck.evaluate(f)
			if err != nil {
				return prefixPath(err, s.slots[i].name)
			}
			if !present {
				continue
			}
			kind = unwrapConditional(kind)
		}

		switch k := kind.(type) {
		case *DependentKind:
			v, err := s.readProvider(f, s.slots[i].provider)
			if err != nil {
				return err
			}
			f.vals[i] = k.derive(v)

		case *DispatchKind:
			ti := s.slots[i].consumer
			body, ok := f.vals[ti].(*Frame)
			if !ok {
				// The target's own emit reports the unset slot.
				continue
			}
			tk := unwrapConditional(s.slots[ti].kind).(*DispatchTargetKind)
			key, known := tk.keyFor(body.desc)
			if !known {
				return &Error{
					Kind:    KindUnknownDispatch,
					Path:    s.slots[ti].name,
					Message: "assigned structure " + body.desc.name + " is not in the dispatch mapping",
				}
			}
			f.vals[i] = key

		case *LengthKind:
			actual, err := s.consumerExtent(f, s.slots[i].consumer, k.count)
			if err != nil {
				return err
			}
			raw := k.store(actual)
			if loaded := k.load(raw); loaded != actual {
				return &Error{
					Kind:  KindLengthInconsistency,
					Path:  s.slots[i].name,
					Cause: &LengthInconsistencyError{Declared: loaded, Actual: actual},
				}
			}
			f.vals[i] = raw

		case *BitRecordKind:
			norm, err := normalizeValue(k, orEmptyBits(f.vals[i]))
			if err != nil {
				return &Error{Kind: KindRange, Path: s.slots[i].name, Cause: err}
			}
			vals := norm.(BitValues)
			f.vals[i] = vals
			for bit, ci := range s.slots[i].bitConsumers {
				actual, err := s.consumerExtent(f, ci, false)
				if err != nil {
					return err
				}
				vals[bit] = actual
			}

		case *MagicKind:
			f.vals[i] = k.Pack()
		}
	}
	return nil
}

// orEmptyBits substitutes an empty bit value map for an unset slot.
func orEmptyBits(v interface{}) interface{} {
	if v == nil {
		return BitValues{}
	}
	return v
}

// consumerExtent learns the extent a provider must store: the element count
// of an array in count mode, otherwise the packed byte length of the
// consumer slot.
func (s *Structure) consumerExtent(f *Frame, ci int, count bool) (uint64, error) {
	if count {
		arr, _ := f.vals[ci].([]*Frame)
		return uint64(len(arr)), nil
	}
	scratch, err := s.packSlot(f, ci)
	if err != nil {
		return 0, err
	}
	return uint64(len(scratch)), nil
}

// readProvider fetches a provider slot's (or bit sub-slot's) current value.
func (s *Structure) readProvider(f *Frame, ref providerRef) (interface{}, error) {
	v := f.vals[ref.slot]
	if v == nil {
		return nil, &Error{Kind: KindUnsetField, Path: s.slots[ref.slot].name, Message: "slot is unset"}
	}
	if ref.bit == "" {
		return v, nil
	}
	vals, ok := v.(BitValues)
	if !ok {
		return nil, &Error{Kind: KindUnsetField, Path: s.slots[ref.slot].name, Message: "bit record value missing"}
	}
	bv, ok := vals[ref.bit]
	if !ok {
		return nil, &Error{Kind: KindUnsetField, Path: s.slots[ref.slot].name + "." + ref.bit, Message: "sub-slot is unset"}
	}
	return bv, nil
}

// emit is pass two.
func (s *Structure) emit(f *Frame) ([]byte, error) {
	var out bytes.Buffer
	type sumSlot struct {
		slot   int
		offset int
	}
	var sums []sumSlot

	for i := range s.slots {
		b, err := s.packSlot(f, i)
		if err != nil {
			return nil, err
		}
		if b == nil {
			continue
		}
		if _, ok := unwrapConditional(s.slots[i].kind).(*ChecksumKind); ok {
			sums = append(sums, sumSlot{slot: i, offset: out.Len()})
		}
		out.Write(b)
	}

	buf := out.Bytes()
	if len(sums) > 0 {
		// All checksums are computed over the zero-filled buffer before any
		// of them is written back.
		computed := make([]uint64, len(sums))
		for n, cs := range sums {
			k := unwrapConditional(s.slots[cs.slot].kind).(*ChecksumKind)
			computed[n] = k.compute(buf)
		}
		for n, cs := range sums {
			k := unwrapConditional(s.slots[cs.slot].kind).(*ChecksumKind)
			f.vals[cs.slot] = computed[n]
			enc, err := k.inner.Pack(computed[n])
			if err != nil {
				return nil, &Error{Kind: KindRange, Path: s.slots[cs.slot].name, Cause: err}
			}
			copy(buf[cs.offset:], enc)
		}
	}
	return buf, nil
}

// packSlot encodes one slot, honoring conditional presence. A nil result
// with nil error means the slot contributes no bytes.
func (s *Structure) packSlot(f *Frame, i int) ([]byte, error) {
	return s.packKind(f, i, s.slots[i].kind)
}

func (s *Structure) packKind(f *Frame, i int, kind Kind) ([]byte, error) {
	name := s.slots[i].name

	switch k := kind.(type) {
	case *ConditionalKind:
		present, err := k.evaluate(f)
		if err != nil {
			return nil, prefixPath(err, name)
		}
		if !present {
			return nil, nil
		}
		return s.packKind(f, i, k.inner)

	case *IntKind:
		if f.vals[i] == nil {
			return nil, &Error{Kind: KindUnsetField, Path: name}
		}
		b, err := k.Pack(f.vals[i])
		if err != nil {
			return nil, wrapDetail(err, name, 0)
		}
		return b, nil

	case *FloatKind:
		if f.vals[i] == nil {
			return nil, &Error{Kind: KindUnsetField, Path: name}
		}
		b, err := k.Pack(f.vals[i])
		if err != nil {
			return nil, wrapDetail(err, name, 0)
		}
		return b, nil

	case *FixedBytesKind:
		if f.vals[i] == nil {
			return nil, &Error{Kind: KindUnsetField, Path: name}
		}
		b, err := k.Pack(f.vals[i])
		if err != nil {
			return nil, wrapDetail(err, name, 0)
		}
		return b, nil

	case *MagicKind:
		return k.Pack(), nil

	case *BitRecordKind:
		b, err := k.Pack(f.vals[i])
		if err != nil {
			return nil, wrapDetail(err, name, 0)
		}
		return b, nil

	case *LengthKind:
		if f.vals[i] == nil {
			return nil, &Error{Kind: KindUnsetField, Path: name, Message: "length provider unresolved"}
		}
		b, err := k.inner.Pack(f.vals[i])
		if err != nil {
			return nil, wrapDetail(err, name, 0)
		}
		return b, nil

	case *DispatchKind:
		if f.vals[i] == nil {
			return nil, &Error{Kind: KindUnsetField, Path: name, Message: "dispatch key unresolved"}
		}
		b, err := k.inner.Pack(f.vals[i])
		if err != nil {
			return nil, wrapDetail(err, name, 0)
		}
		return b, nil

	case *DependentKind:
		return nil, nil

	case *ChecksumKind:
		return make([]byte, k.inner.width), nil

	case *PayloadKind:
		v, ok := f.vals[i].([]byte)
		if !ok {
			return nil, &Error{Kind: KindUnsetField, Path: name}
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, nil

	case *SubstructureKind:
		sub, ok := f.vals[i].(*Frame)
		if !ok {
			return nil, &Error{Kind: KindUnsetField, Path: name}
		}
		if sub.desc != k.sub {
			return nil, &Error{Kind: KindRange, Path: name, Message: "frame of structure " + sub.desc.name + " assigned to substructure " + k.sub.name}
		}
		b, err := k.sub.Pack(sub)
		if err != nil {
			return nil, prefixPath(err, name)
		}
		return b, nil

	case *DispatchTargetKind:
		body, ok := f.vals[i].(*Frame)
		if !ok {
			return nil, &Error{Kind: KindUnsetField, Path: name}
		}
		b, err := body.desc.Pack(body)
		if err != nil {
			return nil, prefixPath(err, name)
		}
		return b, nil

	case *ArrayKind:
		elems, _ := f.vals[i].([]*Frame)
		var out bytes.Buffer
		for idx, el := range elems {
			if el == nil || el.desc != k.elem {
				return nil, &Error{Kind: KindRange, Path: indexedPath(name, idx), Message: "array element is not a " + k.elem.name + " frame"}
			}
			b, err := k.elem.Pack(el)
			if err != nil {
				return nil, prefixPath(err, indexedPath(name, idx))
			}
			out.Write(b)
		}
		return out.Bytes(), nil
	}

	return nil, declErrorf("slot %q has an unknown field kind", name)
}

// indexedPath renders an array element path segment.
func indexedPath(name string, idx int) string {
	return fmt.Sprintf("%s[%d]", name, idx)
}

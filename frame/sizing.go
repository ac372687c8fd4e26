/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import "errors"

// ErrIncomplete is returned by FrameSize when more bytes are needed before
// the total frame length can be resolved.
var ErrIncomplete = errors.New("frame incomplete")

// Sizable reports whether the total frame length is always determinable
// from a fixed-size prefix, which the stream framer requires: no slot may
// have a greedy extent anywhere along the sizing path.
func (s *Structure) Sizable() error {
	for i := range s.slots {
		name := s.slots[i].name
		switch k := unwrapConditional(s.slots[i].kind).(type) {
		case *PayloadKind:
			if k.provider == "" {
				return declErrorf("structure %q: greedy payload %q makes the frame length undeterminable", s.name, name)
			}
		case *ArrayKind:
			if k.provider == "" {
				return declErrorf("structure %q: greedy array %q makes the frame length undeterminable", s.name, name)
			}
			if s.providerIsCount(s.slots[i].provider) {
				if err := k.elem.Sizable(); err != nil {
					return err
				}
			}
		case *SubstructureKind:
			if k.provider == "" {
				if err := k.sub.Sizable(); err != nil {
					return err
				}
			}
		case *DispatchTargetKind:
			if k.provider == "" {
				for _, target := range k.mapping {
					if err := target.Sizable(); err != nil {
						return err
					}
				}
				if k.fallback != nil {
					if err := k.fallback.Sizable(); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// FrameSize resolves the total length of the frame starting at data[0] by
// trial-decoding the prefix up to and including every provider needed. It
// returns ErrIncomplete when more bytes are required, or a hard decode
// error (magic mismatch, unknown dispatch) that the framer treats as a
// frame failure.
func (s *Structure) FrameSize(data []byte) (int, error) {
	return s.sizeRegion(data, 0)
}

func (s *Structure) sizeRegion(data []byte, base int) (int, error) {
	f := s.NewFrame()
	cur := 0
	for i := range s.slots {
		n, err := s.sizeKind(f, i, s.slots[i].kind, data, cur, base)
		if err != nil {
			return 0, err
		}
		cur += n
	}
	return cur, nil
}

func (s *Structure) sizeKind(f *Frame, i int, kind Kind, data []byte, cur, base int) (int, error) {
	name := s.slots[i].name

	switch k := kind.(type) {
	case *ConditionalKind:
		present, err := k.evaluate(f)
		if err != nil {
			err.(*Error).Path = name
			err.(*Error).Offset = base + cur
			return 0, err
		}
		if !present {
			return 0, nil
		}
		return s.sizeKind(f, i, k.inner, data, cur, base)

	case *IntKind, *FloatKind, *FixedBytesKind, *MagicKind, *BitRecordKind,
		*LengthKind, *DispatchKind, *ChecksumKind:
		width := kind.Extent().Width
		if cur+width > len(data) {
			return 0, ErrIncomplete
		}
		// Decode the value so later providers, dispatch lookups, and
		// conditions can see it.
		return s.unpackKind(f, i, kind, data, cur, base)

	case *DependentKind:
		if v, err := s.readProvider(f, s.slots[i].provider); err == nil {
			f.vals[i] = k.derive(v)
		}
		return 0, nil

	case *PayloadKind:
		need, err := s.providerValue(f, s.slots[i].provider)
		if err != nil {
			return 0, err
		}
		return int(need), nil

	case *SubstructureKind:
		if s.slots[i].provider.slot >= 0 {
			need, err := s.providerValue(f, s.slots[i].provider)
			if err != nil {
				return 0, err
			}
			return int(need), nil
		}
		if n, fixed := k.sub.fixedSize(); fixed {
			return n, nil
		}
		if cur > len(data) {
			return 0, ErrIncomplete
		}
		return k.sub.sizeRegion(data[cur:], base+cur)

	case *DispatchTargetKind:
		if s.slots[i].sizeProvider.slot >= 0 {
			// The byte bound alone sizes the target; an unknown dispatch
			// key is left for the full unpack to report.
			need, err := s.providerValue(f, s.slots[i].sizeProvider)
			if err != nil {
				return 0, err
			}
			return int(need), nil
		}
		key, ok := toUint64(f.vals[s.slots[i].provider.slot])
		if !ok {
			return 0, ErrIncomplete
		}
		target, err := k.target(key)
		if err != nil {
			return 0, wrapDetail(err, name, base+cur)
		}
		if cur > len(data) {
			return 0, ErrIncomplete
		}
		return target.sizeRegion(data[cur:], base+cur)

	case *ArrayKind:
		ref := s.slots[i].provider
		if ref.slot < 0 {
			return 0, declErrorf("structure %q: greedy array %q cannot be sized", s.name, name)
		}
		need, err := s.providerValue(f, ref)
		if err != nil {
			return 0, err
		}
		if !s.providerIsCount(ref) {
			return int(need), nil
		}
		off := 0
		for idx := uint64(0); idx < need; idx++ {
			if cur+off > len(data) {
				return 0, ErrIncomplete
			}
			m, err := k.elem.sizeRegion(data[cur+off:], base+cur+off)
			if err != nil {
				return 0, err
			}
			off += m
		}
		return off, nil
	}

	return 0, declErrorf("slot %q has an unknown field kind", name)
}

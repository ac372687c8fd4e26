/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import (
	"encoding/binary"
	"math"
)

// IntKind is a fixed-width integer codec of 1 to 8 bytes, signed or
// unsigned, big or little endian. Unsigned values unpack as uint64, signed
// values as int64 with sign extension for sub-64-bit widths.
type IntKind struct {
	width  int
	signed bool
	little bool
}

// NewUint returns an unsigned integer kind of the given bit width (a
// multiple of 8 between 8 and 64).
func NewUint(bits int, little bool) *IntKind {
	return &IntKind{width: bits / 8, little: little}
}

// NewInt returns a signed integer kind of the given bit width.
func NewInt(bits int, little bool) *IntKind {
	return &IntKind{width: bits / 8, signed: true, little: little}
}

// Unsigned big endian integer kinds.
func Uint8() *IntKind    { return &IntKind{width: 1} }
func Uint16BE() *IntKind { return &IntKind{width: 2} }
func Uint24BE() *IntKind { return &IntKind{width: 3} }
func Uint32BE() *IntKind { return &IntKind{width: 4} }
func Uint40BE() *IntKind { return &IntKind{width: 5} }
func Uint48BE() *IntKind { return &IntKind{width: 6} }
func Uint56BE() *IntKind { return &IntKind{width: 7} }
func Uint64BE() *IntKind { return &IntKind{width: 8} }

// Unsigned little endian integer kinds.
func Uint16LE() *IntKind { return &IntKind{width: 2, little: true} }
func Uint24LE() *IntKind { return &IntKind{width: 3, little: true} }
func Uint32LE() *IntKind { return &IntKind{width: 4, little: true} }
func Uint40LE() *IntKind { return &IntKind{width: 5, little: true} }
func Uint48LE() *IntKind { return &IntKind{width: 6, little: true} }
func Uint56LE() *IntKind { return &IntKind{width: 7, little: true} }
func Uint64LE() *IntKind { return &IntKind{width: 8, little: true} }

// Signed big endian integer kinds.
func Int8() *IntKind    { return &IntKind{width: 1, signed: true} }
func Int16BE() *IntKind { return &IntKind{width: 2, signed: true} }
func Int24BE() *IntKind { return &IntKind{width: 3, signed: true} }
func Int32BE() *IntKind { return &IntKind{width: 4, signed: true} }
func Int40BE() *IntKind { return &IntKind{width: 5, signed: true} }
func Int48BE() *IntKind { return &IntKind{width: 6, signed: true} }
func Int56BE() *IntKind { return &IntKind{width: 7, signed: true} }
func Int64BE() *IntKind { return &IntKind{width: 8, signed: true} }

// Signed little endian integer kinds.
func Int16LE() *IntKind { return &IntKind{width: 2, signed: true, little: true} }
func Int24LE() *IntKind { return &IntKind{width: 3, signed: true, little: true} }
func Int32LE() *IntKind { return &IntKind{width: 4, signed: true, little: true} }
func Int48LE() *IntKind { return &IntKind{width: 6, signed: true, little: true} }
func Int64LE() *IntKind { return &IntKind{width: 8, signed: true, little: true} }

// Extent returns the declared byte width.
func (k *IntKind) Extent() Extent {
	return FixedExtent(k.width)
}

// Pack encodes the value into exactly the declared number of bytes.
func (k *IntKind) Pack(v interface{}) ([]byte, error) {
	var raw uint64
	if k.signed {
		sv, ok := toInt64(v)
		if !ok {
			return nil, &RangeError{Value: v}
		}
		if k.width < 8 {
			min := int64(-1) << (uint(k.width)*8 - 1)
			max := int64(1)<<(uint(k.width)*8-1) - 1
			if sv < min || sv > max {
				return nil, &RangeError{Value: v}
			}
		}
		raw = uint64(sv)
	} else {
		uv, ok := toUint64(v)
		if !ok {
			return nil, &RangeError{Value: v}
		}
		if k.width < 8 && uv >= uint64(1)<<(uint(k.width)*8) {
			return nil, &RangeError{Value: v}
		}
		raw = uv
	}

	buf := make([]byte, 8)
	if k.little {
		binary.LittleEndian.PutUint64(buf, raw)
		return buf[:k.width], nil
	}
	binary.BigEndian.PutUint64(buf, raw)
	return buf[8-k.width:], nil
}

// Unpack decodes exactly the declared number of bytes, sign-extending
// signed sub-64-bit values.
func (k *IntKind) Unpack(b []byte) (interface{}, int, error) {
	if len(b) < k.width {
		return nil, 0, &ShortBufferError{Needed: k.width, Available: len(b)}
	}

	buf := make([]byte, 8)
	if k.little {
		copy(buf, b[:k.width])
	} else {
		copy(buf[8-k.width:], b[:k.width])
	}
	var raw uint64
	if k.little {
		raw = binary.LittleEndian.Uint64(buf)
	} else {
		raw = binary.BigEndian.Uint64(buf)
	}

	if !k.signed {
		return raw, k.width, nil
	}
	if k.width < 8 && raw&(uint64(1)<<(uint(k.width)*8-1)) != 0 {
		raw |= ^uint64(0) << (uint(k.width) * 8)
	}
	return int64(raw), k.width, nil
}

// FloatKind is a fixed-width IEEE 754 float codec. Values unpack as float64.
type FloatKind struct {
	width  int
	little bool
}

func Float32BE() *FloatKind { return &FloatKind{width: 4} }
func Float32LE() *FloatKind { return &FloatKind{width: 4, little: true} }
func Float64BE() *FloatKind { return &FloatKind{width: 8} }
func Float64LE() *FloatKind { return &FloatKind{width: 8, little: true} }

// Extent returns the declared byte width.
func (k *FloatKind) Extent() Extent {
	return FixedExtent(k.width)
}

// Pack encodes the value as an IEEE 754 float of the declared width.
func (k *FloatKind) Pack(v interface{}) ([]byte, error) {
	fv, ok := toFloat64(v)
	if !ok {
		return nil, &RangeError{Value: v}
	}
	out := make([]byte, k.width)
	if k.width == 4 {
		bits := math.Float32bits(float32(fv))
		if k.little {
			binary.LittleEndian.PutUint32(out, bits)
		} else {
			binary.BigEndian.PutUint32(out, bits)
		}
	} else {
		bits := math.Float64bits(fv)
		if k.little {
			binary.LittleEndian.PutUint64(out, bits)
		} else {
			binary.BigEndian.PutUint64(out, bits)
		}
	}
	return out, nil
}

// Unpack decodes a float of the declared width.
func (k *FloatKind) Unpack(b []byte) (interface{}, int, error) {
	if len(b) < k.width {
		return nil, 0, &ShortBufferError{Needed: k.width, Available: len(b)}
	}
	if k.width == 4 {
		var bits uint32
		if k.little {
			bits = binary.LittleEndian.Uint32(b)
		} else {
			bits = binary.BigEndian.Uint32(b)
		}
		return float64(math.Float32frombits(bits)), k.width, nil
	}
	var bits uint64
	if k.little {
		bits = binary.LittleEndian.Uint64(b)
	} else {
		bits = binary.BigEndian.Uint64(b)
	}
	return math.Float64frombits(bits), k.width, nil
}

// FixedBytesKind is an opaque byte block of a declared length.
type FixedBytesKind struct {
	width int
}

// FixedBytes returns a kind holding exactly n opaque bytes.
func FixedBytes(n int) *FixedBytesKind {
	return &FixedBytesKind{width: n}
}

// Extent returns the declared byte width.
func (k *FixedBytesKind) Extent() Extent {
	return FixedExtent(k.width)
}

// Pack emits the value, which must be exactly the declared length.
func (k *FixedBytesKind) Pack(v interface{}) ([]byte, error) {
	b, ok := v.([]byte)
	if !ok || len(b) != k.width {
		return nil, &RangeError{Value: v}
	}
	out := make([]byte, k.width)
	copy(out, b)
	return out, nil
}

// Unpack copies out the declared number of bytes.
func (k *FixedBytesKind) Unpack(b []byte) (interface{}, int, error) {
	if len(b) < k.width {
		return nil, 0, &ShortBufferError{Needed: k.width, Available: len(b)}
	}
	out := make([]byte, k.width)
	copy(out, b)
	return out, k.width, nil
}

func toUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint:
		return uint64(n), true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int32:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case int:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame_test

import (
	"testing"

	"github.com/cespare/xxhash"
	"github.com/framecase/framecase/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoStructure(t *testing.T) *frame.Structure {
	s, err := frame.New("Echo",
		frame.Slot("frame_type", frame.Uint8()),
		frame.Slot("len", frame.Length(frame.Uint16BE())),
		frame.Slot("payload", frame.Payload("len")),
	)
	require.NoError(t, err)
	return s
}

func TestPackLengthPrefixed(t *testing.T) {
	s := echoStructure(t)
	f := s.NewFrame()
	require.NoError(t, f.Set("frame_type", 0x10))
	require.NoError(t, f.Set("payload", []byte("hi")))

	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x10, 0x00, 0x02, 0x68, 0x69}, wire)

	// The provider's post-transform value equals the consumer's extent.
	assert.Equal(t, uint64(2), f.Uint("len"))
}

func TestPackDeterministic(t *testing.T) {
	s := echoStructure(t)
	f := s.NewFrame()
	require.NoError(t, f.Set("frame_type", 0x10))
	require.NoError(t, f.Set("payload", []byte("determinism")))

	first, err := f.Pack()
	require.NoError(t, err)
	second, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPackUnsetField(t *testing.T) {
	s := echoStructure(t)
	f := s.NewFrame()
	require.NoError(t, f.Set("payload", []byte("hi")))

	_, err := f.Pack()
	assert.ErrorIs(t, err, frame.ErrUnsetField)
}

func TestPackCountArray(t *testing.T) {
	pair, err := frame.New("Pair",
		frame.Slot("a", frame.Uint8()),
		frame.Slot("b", frame.Uint8()),
	)
	require.NoError(t, err)

	s, err := frame.New("Msg",
		frame.Slot("n", frame.Count(frame.Uint8())),
		frame.Slot("arr", frame.Array(pair).Sized("n")),
	)
	require.NoError(t, err)

	first := pair.NewFrame()
	require.NoError(t, first.Set("a", 1))
	require.NoError(t, first.Set("b", 2))
	second := pair.NewFrame()
	require.NoError(t, second.Set("a", 3))
	require.NoError(t, second.Set("b", 4))

	f := s.NewFrame()
	require.NoError(t, f.Set("arr", []*frame.Frame{first, second}))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x02, 0x03, 0x04}, wire)

	parsed, err := s.Unpack(wire)
	require.NoError(t, err)
	assert.True(t, f.Equal(parsed))
}

func TestPackByteSizedArray(t *testing.T) {
	pair, err := frame.New("Pair",
		frame.Slot("a", frame.Uint8()),
		frame.Slot("b", frame.Uint8()),
	)
	require.NoError(t, err)

	s, err := frame.New("Msg",
		frame.Slot("len", frame.Length(frame.Uint8())),
		frame.Slot("arr", frame.Array(pair).Sized("len")),
	)
	require.NoError(t, err)

	el := pair.NewFrame()
	require.NoError(t, el.Set("a", 0xAA))
	require.NoError(t, el.Set("b", 0xBB))

	f := s.NewFrame()
	require.NoError(t, f.Set("arr", []*frame.Frame{el}))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0xAA, 0xBB}, wire)
}

func TestPackLengthAdjustInconsistency(t *testing.T) {
	s, err := frame.New("Msg",
		frame.Slot("len", frame.Length(frame.Uint8()).Adjusted(frame.Scaled(2))),
		frame.Slot("payload", frame.Payload("len")),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	require.NoError(t, f.Set("payload", []byte("abc")))
	_, err = f.Pack()
	assert.ErrorIs(t, err, frame.ErrLengthInconsistency)

	require.NoError(t, f.Set("payload", []byte("abcd")))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 'a', 'b', 'c', 'd'}, wire)

	parsed, err := s.Unpack(wire)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), parsed.Bytes("payload"))
}

func TestPackDependentField(t *testing.T) {
	s, err := frame.New("Msg",
		frame.Slot("ver", frame.Uint8()),
		frame.Slot("ver_twice", frame.Dependent("ver", func(v interface{}) interface{} {
			return v.(uint64) * 2
		})),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	require.NoError(t, f.Set("ver", 3))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03}, wire)
	assert.Equal(t, uint64(6), f.Uint("ver_twice"))

	parsed, err := s.Unpack(wire)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), parsed.Uint("ver_twice"))
	assert.True(t, f.Equal(parsed))
}

func TestPackDispatchDerivesKey(t *testing.T) {
	a, err := frame.New("A", frame.Slot("x", frame.Uint16BE()))
	require.NoError(t, err)
	b, err := frame.New("B", frame.Slot("y", frame.Uint8()), frame.Slot("z", frame.Uint8()))
	require.NoError(t, err)

	s, err := frame.New("Msg",
		frame.Slot("type", frame.Dispatch(frame.Uint8())),
		frame.Slot("body", frame.Target("type", map[uint64]*frame.Structure{1: a, 2: b})),
	)
	require.NoError(t, err)

	body := b.NewFrame()
	require.NoError(t, body.Set("y", 7))
	require.NoError(t, body.Set("z", 8))

	f := s.NewFrame()
	require.NoError(t, f.Set("body", body))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x07, 0x08}, wire)
	assert.Equal(t, uint64(2), f.Uint("type"))
}

func TestPackDispatchUnknownStructure(t *testing.T) {
	a, err := frame.New("A", frame.Slot("x", frame.Uint8()))
	require.NoError(t, err)
	other, err := frame.New("Other", frame.Slot("x", frame.Uint8()))
	require.NoError(t, err)

	s, err := frame.New("Msg",
		frame.Slot("type", frame.Dispatch(frame.Uint8())),
		frame.Slot("body", frame.Target("type", map[uint64]*frame.Structure{1: a})),
	)
	require.NoError(t, err)

	body := other.NewFrame()
	require.NoError(t, body.Set("x", 1))
	f := s.NewFrame()
	require.NoError(t, f.Set("body", body))
	_, err = f.Pack()
	assert.ErrorIs(t, err, frame.ErrUnknownDispatch)
}

func TestPackChecksumBackfill(t *testing.T) {
	s, err := frame.New("Msg",
		frame.Slot("hdr", frame.Uint8()),
		frame.Slot("len", frame.Length(frame.Uint8())),
		frame.Slot("payload", frame.Payload("len")),
		frame.Slot("crc", frame.Checksum(frame.Uint32BE(), frame.XXHash64, 0, -4)),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	require.NoError(t, f.Set("hdr", 1))
	require.NoError(t, f.Set("payload", []byte("hi")))
	wire, err := f.Pack()
	require.NoError(t, err)
	require.Equal(t, 8, len(wire))

	expected := xxhash.Sum64([]byte{0x01, 0x02, 'h', 'i'}) & 0xFFFFFFFF
	assert.Equal(t, expected, f.Uint("crc"))
	assert.Equal(t, []byte{0x01, 0x02, 'h', 'i'}, wire[:4])

	parsed, err := s.Unpack(wire)
	require.NoError(t, err)
	assert.True(t, f.Equal(parsed))

	// Corruption is caught on unpack.
	wire[3] ^= 0xFF
	_, err = s.Unpack(wire)
	assert.ErrorIs(t, err, frame.ErrChecksumMismatch)
}

func TestPackSubstructure(t *testing.T) {
	pascal, err := frame.New("PascalString",
		frame.Slot("len", frame.Length(frame.Uint16BE())),
		frame.Slot("value", frame.Payload("len")),
	)
	require.NoError(t, err)

	name, err := frame.New("Name",
		frame.Slot("first", frame.Substruct(pascal)),
		frame.Slot("last", frame.Substruct(pascal)),
	)
	require.NoError(t, err)

	first := pascal.NewFrame()
	require.NoError(t, first.Set("value", []byte("ada")))
	last := pascal.NewFrame()
	require.NoError(t, last.Set("value", []byte("l")))

	f := name.NewFrame()
	require.NoError(t, f.Set("first", first))
	require.NoError(t, f.Set("last", last))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x03, 'a', 'd', 'a', 0x00, 0x01, 'l'}, wire)

	parsed, err := name.Unpack(wire)
	require.NoError(t, err)
	assert.Equal(t, []byte("ada"), parsed.Sub("first").Bytes("value"))
	assert.Equal(t, []byte("l"), parsed.Sub("last").Bytes("value"))
	assert.True(t, f.Equal(parsed))
}

/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame_test

import (
	"testing"

	"github.com/framecase/framecase/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitRecordPack(t *testing.T) {
	s, err := frame.New("Flags",
		frame.Slot("flags", frame.Bits(16,
			frame.BitNum("a", 4),
			frame.BitNum("b", 3),
			frame.BitFlag("c_flag"),
			frame.BitNum("d", 8),
		)),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	require.NoError(t, f.Set("flags", frame.BitValues{
		"a": 0xA, "b": 0x5, "c_flag": true, "d": 0x7F,
	}))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0x7F}, wire)

	parsed, err := s.Unpack(wire)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xA), parsed.Bit("flags", "a"))
	assert.Equal(t, uint64(0x5), parsed.Bit("flags", "b"))
	assert.Equal(t, true, parsed.Bit("flags", "c_flag"))
	assert.Equal(t, uint64(0x7F), parsed.Bit("flags", "d"))
	assert.True(t, f.Equal(parsed))
}

func TestBitRecordUnsetSubsPackAsZero(t *testing.T) {
	s, err := frame.New("Flags",
		frame.Slot("flags", frame.Bits(8,
			frame.BitFlag("on"),
			frame.BitNum("rest", 7),
		)),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	require.NoError(t, f.Set("flags", frame.BitValues{"on": true}))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, wire)
}

func TestBitRecordWidthMismatch(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("flags", frame.Bits(16,
			frame.BitNum("a", 4),
			frame.BitNum("b", 4),
		)),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestBitRecordSubRange(t *testing.T) {
	s, err := frame.New("Flags",
		frame.Slot("flags", frame.Bits(8, frame.BitNum("a", 4), frame.BitNum("b", 4))),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	require.NoError(t, f.Set("flags", frame.BitValues{"a": 0x1F}))
	_, err = f.Pack()
	assert.ErrorIs(t, err, frame.ErrRange)
}

func TestBitRecordAsLengthProvider(t *testing.T) {
	s, err := frame.New("Msg",
		frame.Slot("hdr", frame.Bits(8, frame.BitFlag("urgent"), frame.BitNum("len", 7))),
		frame.Slot("payload", frame.Payload("hdr.len")),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	require.NoError(t, f.Set("hdr", frame.BitValues{"urgent": true}))
	require.NoError(t, f.Set("payload", []byte("hi")))
	wire, err := f.Pack()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x82, 'h', 'i'}, wire)
	assert.Equal(t, uint64(2), f.Bit("hdr", "len"))

	parsed, err := s.Unpack(wire)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), parsed.Bytes("payload"))
	assert.True(t, f.Equal(parsed))
}

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
)

func TestIntPack(t *testing.T) {
	b, err := frame.Uint16BE().Pack(0x1234)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x34}, b)

	b, err = frame.Uint16LE().Pack(0x1234)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x34, 0x12}, b)

	b, err = frame.Uint24BE().Pack(0x010203)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, b)

	b, err = frame.Uint48LE().Pack(uint64(0x010203040506))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x06, 0x05, 0x04, 0x03, 0x02, 0x01}, b)

	b, err = frame.Int8().Pack(-1)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xFF}, b)

	b, err = frame.Int24BE().Pack(-2)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFE}, b)
}

func TestIntPackRange(t *testing.T) {
	_, err := frame.Uint8().Pack(256)
	assert.Error(t, err)

	_, err = frame.Uint8().Pack(-1)
	assert.Error(t, err)

	_, err = frame.Int16BE().Pack(0x8000)
	assert.Error(t, err)

	_, err = frame.Int16BE().Pack(-0x8000)
	assert.NoError(t, err)
}

func TestIntUnpack(t *testing.T) {
	v, n, err := frame.Uint16BE().Unpack([]byte{0x12, 0x34})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(0x1234), v)

	v, n, err = frame.Int24BE().Unpack([]byte{0xFF, 0xFF, 0xFE})
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(-2), v)

	v, n, err = frame.Int16LE().Unpack([]byte{0xFE, 0xFF})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(-2), v)

	v, _, err = frame.Uint40BE().Unpack([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	assert.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405), v)
}

func TestIntUnpackShortBuffer(t *testing.T) {
	_, _, err := frame.Uint32BE().Unpack([]byte{0x01, 0x02})
	assert.Error(t, err)
	sbe, ok := err.(*frame.ShortBufferError)
	assert.True(t, ok)
	assert.Equal(t, 4, sbe.Needed)
	assert.Equal(t, 2, sbe.Available)
}

func TestFloatPackUnpack(t *testing.T) {
	b, err := frame.Float32BE().Pack(1.5)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x3F, 0xC0, 0x00, 0x00}, b)

	v, n, err := frame.Float32BE().Unpack(b)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 1.5, v)

	b, err = frame.Float64LE().Pack(-2.25)
	assert.NoError(t, err)
	v, n, err = frame.Float64LE().Unpack(b)
	assert.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, -2.25, v)
}

func TestFixedBytes(t *testing.T) {
	k := frame.FixedBytes(3)
	b, err := k.Pack([]byte{0x0A, 0x0B, 0x0C})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x0B, 0x0C}, b)

	_, err = k.Pack([]byte{0x0A})
	assert.Error(t, err)

	v, n, err := k.Unpack([]byte{0x0A, 0x0B, 0x0C, 0x0D})
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x0A, 0x0B, 0x0C}, v)
}

func TestMagicUnpack(t *testing.T) {
	k := frame.Magic([]byte{0xAA, 0x55})
	assert.Equal(t, []byte{0xAA, 0x55}, k.Pack())

	_, n, err := k.Unpack([]byte{0xAA, 0x55, 0x01})
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	_, _, err = k.Unpack([]byte{0xAA, 0x56})
	assert.Error(t, err)
	mme, ok := err.(*frame.MagicMismatchError)
	assert.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0x55}, mme.Expected)
	assert.Equal(t, []byte{0xAA, 0x56}, mme.Got)
}

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

func TestDeclarationDuplicateGreedy(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("a", frame.GreedyPayload()),
		frame.Slot("b", frame.GreedyPayload()),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationDanglingProvider(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("len", frame.Length(frame.Uint16BE())),
		frame.Slot("tail", frame.Uint8()),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationProviderAfterConsumer(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("payload", frame.Payload("len")),
		frame.Slot("len", frame.Length(frame.Uint16BE())),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationUnknownProvider(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("payload", frame.Payload("nope")),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationDuplicateSlot(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("a", frame.Uint8()),
		frame.Slot("a", frame.Uint8()),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationDependentOnLaterSlot(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("mirror", frame.Dependent("src", nil)),
		frame.Slot("src", frame.Uint8()),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationVariableSlotAfterGreedy(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("len", frame.Length(frame.Uint8())),
		frame.Slot("tail", frame.GreedyPayload()),
		frame.Slot("trailer", frame.Payload("len")),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationDispatchWithoutTarget(t *testing.T) {
	_, err := frame.New("Bad",
		frame.Slot("type", frame.Dispatch(frame.Uint8())),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestDeclarationGreedyArrayElement(t *testing.T) {
	elem, err := frame.New("Elem",
		frame.Slot("tail", frame.GreedyPayload()),
	)
	require.NoError(t, err)

	_, err = frame.New("Bad",
		frame.Slot("arr", frame.Array(elem)),
	)
	assert.ErrorIs(t, err, frame.ErrDeclaration)
}

func TestSetRejectsDerivedSlots(t *testing.T) {
	s, err := frame.New("Msg",
		frame.Slot("magic", frame.Magic([]byte{0x7E})),
		frame.Slot("len", frame.Length(frame.Uint8())),
		frame.Slot("payload", frame.Payload("len")),
	)
	require.NoError(t, err)

	f := s.NewFrame()
	assert.Error(t, f.Set("magic", []byte{0x00}))
	assert.Error(t, f.Set("len", 3))
	assert.Error(t, f.Set("nope", 3))
	assert.NoError(t, f.Set("payload", []byte{0x01}))
}

func TestLeadingMagic(t *testing.T) {
	s, err := frame.New("Msg",
		frame.Slot("magic", frame.Magic([]byte{0xAA, 0x55})),
		frame.Slot("v", frame.Uint8()),
	)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0x55}, s.LeadingMagic())

	s, err = frame.New("Plain", frame.Slot("v", frame.Uint8()))
	require.NoError(t, err)
	assert.Nil(t, s.LeadingMagic())
}

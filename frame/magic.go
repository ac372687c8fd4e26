/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import "bytes"

// MagicKind is a fixed, expected sequence of bytes. Its value cannot be set;
// packing emits the declared sequence and unpacking asserts equality.
type MagicKind struct {
	seq []byte
}

// Magic returns a kind pinned to the given byte sequence.
func Magic(seq []byte) *MagicKind {
	out := make([]byte, len(seq))
	copy(out, seq)
	return &MagicKind{seq: out}
}

// Extent returns the length of the magic sequence.
func (k *MagicKind) Extent() Extent {
	return FixedExtent(len(k.seq))
}

// Sequence returns the declared magic bytes.
func (k *MagicKind) Sequence() []byte {
	return k.seq
}

// Pack emits the declared sequence.
func (k *MagicKind) Pack() []byte {
	out := make([]byte, len(k.seq))
	copy(out, k.seq)
	return out
}

// Unpack asserts that the input starts with the declared sequence.
func (k *MagicKind) Unpack(b []byte) (interface{}, int, error) {
	if len(b) < len(k.seq) {
		return nil, 0, &ShortBufferError{Needed: len(k.seq), Available: len(b)}
	}
	got := b[:len(k.seq)]
	if !bytes.Equal(got, k.seq) {
		cp := make([]byte, len(got))
		copy(cp, got)
		return nil, 0, &MagicMismatchError{Expected: k.seq, Got: cp}
	}
	return k.Pack(), len(k.seq), nil
}

/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the failure class of an Error.
type ErrorKind int

// Error kinds.
const (
	KindShortBuffer ErrorKind = iota
	KindRange
	KindMagicMismatch
	KindLengthInconsistency
	KindUnsetField
	KindUnknownDispatch
	KindGreedyUnderflow
	KindArrayElementUnderflow
	KindConditionNotEvaluable
	KindDeclaration
	KindFramerOverflow
	KindChecksumMismatch
)

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrShortBuffer           = errors.New("field length exceeds buffer size")
	ErrRange                 = errors.New("value out of range for field")
	ErrMagicMismatch         = errors.New("magic bytes do not match")
	ErrLengthInconsistency   = errors.New("declared length does not match actual length")
	ErrUnsetField            = errors.New("required field is unset")
	ErrUnknownDispatch       = errors.New("dispatch key not contained in mapping")
	ErrGreedyUnderflow       = errors.New("not enough bytes remain for greedy field")
	ErrArrayElementUnderflow = errors.New("partial trailing array element")
	ErrConditionNotEvaluable = errors.New("condition could not be evaluated")
	ErrDeclaration           = errors.New("invalid structure declaration")
	ErrFramerOverflow        = errors.New("framer buffer limit exceeded")
	ErrChecksumMismatch      = errors.New("recorded checksum does not match computed checksum")
)

var kindSentinels = map[ErrorKind]error{
	KindShortBuffer:           ErrShortBuffer,
	KindRange:                 ErrRange,
	KindMagicMismatch:         ErrMagicMismatch,
	KindLengthInconsistency:   ErrLengthInconsistency,
	KindUnsetField:            ErrUnsetField,
	KindUnknownDispatch:       ErrUnknownDispatch,
	KindGreedyUnderflow:       ErrGreedyUnderflow,
	KindArrayElementUnderflow: ErrArrayElementUnderflow,
	KindConditionNotEvaluable: ErrConditionNotEvaluable,
	KindDeclaration:           ErrDeclaration,
	KindFramerOverflow:        ErrFramerOverflow,
	KindChecksumMismatch:      ErrChecksumMismatch,
}

func (k ErrorKind) String() string {
	if s, ok := kindSentinels[k]; ok {
		return s.Error()
	}
	return "unknown error kind"
}

// Error is the diagnostic carried by every pack, unpack, and framing failure.
// Path is the dotted field path from the top-level frame (array elements are
// rendered as name[i]); Offset is the byte offset within the top-level frame
// at which the failure was detected.
type Error struct {
	Kind    ErrorKind
	Path    string
	Offset  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	path := e.Path
	if path == "" {
		path = "<frame>"
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	return fmt.Sprintf("%s: %s (offset %d)", path, msg, e.Offset)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for this error's kind, making
// errors.Is(err, frame.ErrShortBuffer) and friends work.
func (e *Error) Is(target error) bool {
	return target == kindSentinels[e.Kind]
}

// ShortBufferError reports how many bytes a field needed versus how many
// were available.
type ShortBufferError struct {
	Needed    int
	Available int
}

func (e *ShortBufferError) Error() string {
	return fmt.Sprintf("needed %d bytes but only %d available", e.Needed, e.Available)
}

// RangeError reports a value that does not fit the declared field width.
type RangeError struct {
	Value interface{}
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %v out of range", e.Value)
}

// MagicMismatchError reports the expected and observed magic bytes.
type MagicMismatchError struct {
	Expected []byte
	Got      []byte
}

func (e *MagicMismatchError) Error() string {
	return fmt.Sprintf("expected magic % X but got % X", e.Expected, e.Got)
}

// LengthInconsistencyError reports a disagreement between a length provider
// and the actual extent of its consumer.
type LengthInconsistencyError struct {
	Declared uint64
	Actual   uint64
}

func (e *LengthInconsistencyError) Error() string {
	return fmt.Sprintf("declared length %d but actual length %d", e.Declared, e.Actual)
}

// UnknownDispatchError reports a dispatch key with no mapping entry.
type UnknownDispatchError struct {
	Key uint64
}

func (e *UnknownDispatchError) Error() string {
	return fmt.Sprintf("no dispatch mapping for key %d", e.Key)
}

// ChecksumMismatchError reports the recorded and computed checksum values.
type ChecksumMismatchError struct {
	Recorded uint64
	Computed uint64
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("recorded checksum %#x but computed %#x", e.Recorded, e.Computed)
}

func declErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDeclaration, Message: fmt.Sprintf(format, args...)}
}

// wrapDetail lifts a codec detail error into a diagnostic carrying the
// slot path and absolute byte offset.
func wrapDetail(err error, path string, offset int) *Error {
	kind := KindDeclaration
	switch err.(type) {
	case *ShortBufferError:
		kind = KindShortBuffer
	case *RangeError:
		kind = KindRange
	case *MagicMismatchError:
		kind = KindMagicMismatch
	case *LengthInconsistencyError:
		kind = KindLengthInconsistency
	case *UnknownDispatchError:
		kind = KindUnknownDispatch
	case *ChecksumMismatchError:
		kind = KindChecksumMismatch
	}
	return &Error{Kind: kind, Path: path, Offset: offset, Cause: err}
}

// prefixPath prepends a path segment onto a propagating Error. Non-Error
// values pass through untouched.
func prefixPath(err error, segment string) error {
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Path == "" {
			fe.Path = segment
		} else {
			fe.Path = segment + "." + fe.Path
		}
		return fe
	}
	return err
}

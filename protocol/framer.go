/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package protocol turns byte streams into sequences of fully parsed
// frames. The Framer is a synchronous state machine fed by the caller; the
// Registry shares structure descriptors by name across declarations.
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/framecase/framecase/core"
	"github.com/framecase/framecase/frame"
	"github.com/framecase/framecase/utils/comparison"
)

// State is the framer's parsing state.
type State int

const (
	// StateHuntMagic scans for the structure's leading magic sequence,
	// discarding bytes before it. Only entered when the structure starts
	// with a magic slot.
	StateHuntMagic State = iota
	// StateSizing trial-decodes the fixed prefix to resolve the total
	// frame length.
	StateSizing
	// StateDrain waits for the full frame and delivers it.
	StateDrain
	// StateFatal is entered when the buffer limit is exceeded; all further
	// input is dropped.
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateHuntMagic:
		return "HuntMagic"
	case StateSizing:
		return "Sizing"
	case StateDrain:
		return "Drain"
	case StateFatal:
		return "Fatal"
	}
	return "Unknown"
}

// FrameHandler receives each fully parsed frame, in stream order.
type FrameHandler func(*frame.Frame)

// ErrorHandler receives per-frame parse errors and resync diagnostics. The
// framer recovers after reporting; no error is silently swallowed.
type ErrorHandler func(error)

// DiscardedBytes is the diagnostic reported when bytes are skipped while
// hunting for the magic sequence.
type DiscardedBytes struct {
	Count int
}

func (d *DiscardedBytes) Error() string {
	return fmt.Sprintf("discarded %d bytes while resynchronizing", d.Count)
}

// Option configures a Framer.
type Option func(*Framer)

// WithErrorHandler installs a callback for per-frame errors and resync
// diagnostics.
func WithErrorHandler(h ErrorHandler) Option {
	return func(f *Framer) { f.onError = h }
}

// WithMaxBuffer bounds the internal buffer. Exceeding it (for instance
// because a producer withholds the sync magic) transitions the framer to
// StateFatal.
func WithMaxBuffer(n int) Option {
	return func(f *Framer) { f.maxBuffer = n }
}

// WithSkipUnknown makes the framer skip a sized frame whose dispatch key
// has no mapping entry instead of resynchronizing byte by byte. The error
// is still reported.
func WithSkipUnknown() Option {
	return func(f *Framer) { f.skipUnknown = true }
}

// Framer incrementally consumes bytes and emits whole frames of one
// structure. Feed is synchronous: it returns only after delivering every
// frame the buffered bytes contain.
type Framer struct {
	structure   *frame.Structure
	onFrame     FrameHandler
	onError     ErrorHandler
	maxBuffer   int
	skipUnknown bool

	magic     []byte
	buf       []byte
	state     State
	total     int
	discarded int
}

// NewFramer builds a framer for the structure. The structure's total frame
// length must be determinable from a fixed-size prefix; a structure with a
// greedy slot anywhere along the sizing path is rejected here.
func NewFramer(s *frame.Structure, onFrame FrameHandler, opts ...Option) (*Framer, error) {
	if s == nil {
		return nil, errors.New("framer requires a structure")
	}
	if onFrame == nil {
		return nil, errors.New("framer requires a frame handler")
	}
	if err := s.Sizable(); err != nil {
		return nil, err
	}

	f := &Framer{
		structure: s,
		onFrame:   onFrame,
		magic:     s.LeadingMagic(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.state = f.initialState()
	return f, nil
}

func (f *Framer) String() string {
	return "Framer, Structure=" + f.structure.Name()
}

// State returns the current parsing state.
func (f *Framer) State() State {
	return f.state
}

// Reset returns the framer to a fresh state, dropping all buffered bytes.
// A fatal framer stays fatal.
func (f *Framer) Reset() {
	if f.state == StateFatal {
		return
	}
	f.buf = nil
	f.total = 0
	f.discarded = 0
	f.state = f.initialState()
}

func (f *Framer) initialState() State {
	if len(f.magic) > 0 {
		return StateHuntMagic
	}
	return StateSizing
}

// Feed appends bytes to the internal buffer and processes every complete
// frame they yield, invoking the frame callback once per frame in stream
// order.
func (f *Framer) Feed(data []byte) {
	if f.state == StateFatal {
		return
	}
	f.buf = append(f.buf, data...)
	if f.maxBuffer > 0 && len(f.buf) > f.maxBuffer {
		f.overflow()
		return
	}
	f.process()
}

func (f *Framer) process() {
	for {
		switch f.state {
		case StateHuntMagic:
			idx := bytes.Index(f.buf, f.magic)
			if idx < 0 {
				// The whole magic is absent; at most its last len-1 bytes
				// could be a prefix of it, so only those are kept.
				keep := comparison.Min(len(f.buf), len(f.magic)-1)
				if drop := len(f.buf) - keep; drop > 0 {
					f.discarded += drop
					f.buf = f.buf[drop:]
				}
				return
			}
			f.discarded += idx
			f.buf = f.buf[idx:]
			if f.discarded > 0 {
				f.report(&DiscardedBytes{Count: f.discarded})
				f.discarded = 0
			}
			f.state = StateSizing

		case StateSizing:
			total, err := f.structure.FrameSize(f.buf)
			if errors.Is(err, frame.ErrIncomplete) {
				return
			}
			if err != nil {
				f.report(err)
				f.resync()
				continue
			}
			if total <= 0 {
				// A hostile length provider can overflow the size
				// arithmetic; treat it like any other bad frame.
				f.report(&frame.Error{
					Kind:    frame.KindLengthInconsistency,
					Path:    f.structure.Name(),
					Message: "resolved frame length " + strconv.Itoa(total) + " is not positive",
				})
				f.resync()
				continue
			}
			if f.maxBuffer > 0 && total > f.maxBuffer {
				f.overflow()
				return
			}
			f.total = total
			f.state = StateDrain
			core.LogTrace(f, "Sized frame, total="+strconv.Itoa(total))

		case StateDrain:
			if len(f.buf) < f.total {
				return
			}
			parsed, err := f.structure.Unpack(f.buf[:f.total])
			if err != nil {
				f.report(err)
				if f.skipUnknown && errors.Is(err, frame.ErrUnknownDispatch) {
					f.buf = f.buf[f.total:]
					f.state = f.initialState()
					continue
				}
				f.resync()
				continue
			}
			f.buf = f.buf[f.total:]
			f.state = f.initialState()
			f.onFrame(parsed)

		case StateFatal:
			return
		}
	}
}

// resync discards one byte and re-enters the initial state, per the
// frame-boundary recovery policy.
func (f *Framer) resync() {
	if len(f.buf) > 0 {
		f.buf = f.buf[1:]
		if len(f.magic) > 0 {
			f.discarded++
		}
	}
	f.total = 0
	f.state = f.initialState()
	core.LogDebug(f, "Resynchronizing after frame error")
}

func (f *Framer) overflow() {
	err := &frame.Error{
		Kind:    frame.KindFramerOverflow,
		Path:    f.structure.Name(),
		Message: "buffered " + strconv.Itoa(len(f.buf)) + " bytes with limit " + strconv.Itoa(f.maxBuffer),
	}
	core.LogError(f, err.Error())
	if f.onError != nil {
		f.onError(err)
	}
	f.buf = nil
	f.total = 0
	f.state = StateFatal
}

func (f *Framer) report(err error) {
	core.LogDiagnostic(f, err)
	if f.onError != nil {
		f.onError(err)
	}
}

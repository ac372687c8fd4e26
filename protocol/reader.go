/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package protocol

import (
	"errors"
	"io"

	"github.com/framecase/framecase/core"
	"github.com/zjkmxy/stealthpool"
)

// Receive buffer pool geometry for Pump.
const (
	poolBlockCount = 32
	poolBlockSize  = 8192
)

// ErrFramerFatal is returned by Pump when the framer enters StateFatal
// while the stream is still open.
var ErrFramerFatal = errors.New("framer entered fatal state")

// Pump reads r until EOF, feeding every chunk into the framer. It is
// synchronous: the caller owns scheduling and may run it in a goroutine of
// its own. Receive buffers come from an off-heap pool and are released
// before Pump returns.
func Pump(r io.Reader, f *Framer) error {
	pool, err := stealthpool.New(poolBlockCount, stealthpool.WithBlockSize(poolBlockSize))
	if err != nil {
		core.LogError(f, "Failed to allocate receive buffer pool")
		return err
	}
	defer pool.Close()

	block, err := pool.Get()
	if err != nil {
		return err
	}
	defer pool.Return(block)

	for {
		n, err := r.Read(block)
		if n > 0 {
			f.Feed(block[:n])
			if f.State() == StateFatal {
				return ErrFramerFatal
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

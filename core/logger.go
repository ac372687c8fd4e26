/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"

	"github.com/framecase/framecase/frame"
)

// traceEnabled turns LogTrace calls into DEBUG entries. Apex has no TRACE
// level of its own.
var traceEnabled = false

// InitializeLogger routes log output to stderr at the given apex/log level,
// or "TRACE" for extra debugging output. Unknown levels fall back to INFO.
func InitializeLogger(level string) {
	log.SetHandler(text.New(os.Stderr))

	if level == "TRACE" {
		log.SetLevel(log.DebugLevel)
		traceEnabled = true
		return
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

// entry tags a log entry with the emitting module. Level filtering is
// apex's job.
func entry(module interface{}) *log.Entry {
	return log.WithField("module", fmt.Sprint(module))
}

// LogError logs a message at the ERROR level.
func LogError(module interface{}, message string) {
	entry(module).Error(message)
}

// LogWarn logs a message at the WARN level.
func LogWarn(module interface{}, message string) {
	entry(module).Warn(message)
}

// LogInfo logs a message at the INFO level.
func LogInfo(module interface{}, message string) {
	entry(module).Info(message)
}

// LogDebug logs a message at the DEBUG level.
func LogDebug(module interface{}, message string) {
	entry(module).Debug(message)
}

// LogTrace logs extra DEBUG output, emitted only when the TRACE level was
// selected.
func LogTrace(module interface{}, message string) {
	if traceEnabled {
		entry(module).Debug(message)
	}
}

// LogDiagnostic logs a parse or framing diagnostic at the WARN level. When
// the error is a frame diagnostic, its field path and byte offset become
// structured fields on the entry.
func LogDiagnostic(module interface{}, err error) {
	e := entry(module)
	var fe *frame.Error
	if errors.As(err, &fe) {
		e = e.WithField("path", fe.Path).WithField("offset", fe.Offset)
	}
	e.Warn(err.Error())
}

// Package sbrlog implements the public logging callback surface
// described by set_log_callback in the rendering contract: a single
// process-wide sink that the host application installs before
// creating any renderer.
//
// This is deliberately independent of the internal tracing used
// throughout the rest of the module (see the top-level doc comment in
// package trace): it exists to satisfy a stable external contract
// rather than to help debug this module's own code, so it carries no
// dependency on the internal tracing library.
package sbrlog

import (
	"fmt"
	"sync"
)

// Level mirrors the five severities the rendering contract names.
// Consumers are expected to treat any value greater than Error as
// Error, for forward compatibility with levels this version of the
// package does not know about.
type Level int

const (
	Trace Level = 0
	Debug Level = 1
	Info  Level = 2
	Warn  Level = 3
	Error Level = 4
)

// Clamp normalizes an arbitrary level value the way a consumer reading
// raw integers off the wire must: unknown values above Error collapse
// to Error, and negative values collapse to Trace.
func (l Level) Clamp() Level {
	switch {
	case l < Trace:
		return Trace
	case l > Error:
		return Error
	default:
		return l
	}
}

func (l Level) String() string {
	switch l.Clamp() {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Callback receives one log line at the given level, plus the opaque
// user pointer supplied to SetCallback.
type Callback func(level Level, message string, user interface{})

var (
	mu       sync.RWMutex
	callback Callback
	userdata interface{}
	minLevel = Info
)

// SetCallback installs cb as the process-wide log sink. Passing nil
// disables logging. Must be called before any Renderer is created, per
// the rendering contract; this package does not enforce that ordering
// itself, since enforcing it would require coupling to the Renderer
// lifecycle this leaf package must not depend on.
func SetCallback(cb Callback, user interface{}) {
	mu.Lock()
	defer mu.Unlock()
	callback = cb
	userdata = user
}

// SetMinLevel filters out messages below level before they reach the
// callback. Defaults to Info.
func SetMinLevel(level Level) {
	mu.Lock()
	minLevel = level.Clamp()
	mu.Unlock()
}

// Emit delivers message at level to the installed callback, if any and
// if level is at or above the configured minimum. Safe to call from
// any goroutine.
func Emit(level Level, format string, args ...interface{}) {
	mu.RLock()
	cb, user, min := callback, userdata, minLevel
	mu.RUnlock()
	if cb == nil || level.Clamp() < min {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	cb(level.Clamp(), msg, user)
}

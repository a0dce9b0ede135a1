// Package errs implements subrandr's error surface: a small closed set
// of error kinds, an AppError interface carrying one of them plus a
// user-facing message, and a caller-owned "last error" Slot (one per
// Library and per Renderer, not per thread) mirroring
// the get_last_error_string/get_last_error_code contract a C ABI
// binding would expose.
//
// Errors carry a code, a user message, and an Unwrap chain, narrowed
// from an open-ended integer code space to the four-value enum the
// rendering contract actually specifies.
package errs

import (
	"errors"
	"fmt"
	"sync"
)

// Kind is one of the four error kinds the rendering contract
// distinguishes.
type Kind int

const (
	// Other covers internal shaper/rasterizer failure, out-of-memory,
	// a pathological blur radius, or cache exhaustion.
	Other Kind = 1
	// IO is only produced at the loading layer (file-based variants).
	IO Kind = 2
	// InvalidArgument covers a nonsensical context: non-finite or
	// overflowing fixed-point dimensions, zero buffer size, or a
	// stride smaller than the width.
	InvalidArgument Kind = 3
	// UnrecognizedFormat means the parser entry point could not
	// detect a subtitle format from the input bytes.
	UnrecognizedFormat Kind = 10
)

func (k Kind) String() string {
	switch k {
	case Other:
		return "other"
	case IO:
		return "io"
	case InvalidArgument:
		return "invalid-argument"
	case UnrecognizedFormat:
		return "unrecognized-format"
	}
	return "unknown"
}

// AppError is an error carrying a Kind and a user-facing message.
type AppError interface {
	error
	Kind() Kind
	UserMessage() string
}

type appError struct {
	error
	kind Kind
	msg  string
}

func (e appError) Unwrap() error     { return e.error }
func (e appError) Error() string     { return fmt.Sprintf("[%s] %v", e.kind, e.error) }
func (e appError) Kind() Kind        { return e.kind }
func (e appError) UserMessage() string { return e.msg }

var _ AppError = appError{}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, v ...interface{}) error {
	msg := fmt.Sprintf(format, v...)
	return &appError{errors.New(msg), kind, msg}
}

// Wrap attaches a Kind and a user message to an existing error. If err
// is nil, Wrap returns nil.
func Wrap(err error, kind Kind, format string, v ...interface{}) error {
	if err == nil {
		return nil
	}
	return &appError{err, kind, fmt.Sprintf(format, v...)}
}

// Code returns the Kind associated with err, or Other if a non-nil err
// does not carry one. For err == nil it returns 0, the same "no error"
// value LastCode reports.
func Code(err error) Kind {
	if err == nil {
		return 0
	}
	var e AppError
	if errors.As(err, &e) {
		return e.Kind()
	}
	return Other
}

// Message returns the user-facing message associated with err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e AppError
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return err.Error()
}

// --- thread-local last-error slot ------------------------------------------
//
// "Thread-local" per §6 is expressed here as caller-owned: there is no
// per-goroutine lookup of any kind. Go has no first-class
// goroutine-local storage, so callers are
// expected to obtain a Slot once (typically one per Renderer, which is
// itself required to be used from a single goroutine at a time per
// §5) and reuse it; this avoids the non-determinism of trying to
// recover a goroutine identity from the runtime.

// Slot is a single last-error cell, safe for concurrent use but
// intended to be owned by one logical caller (goroutine) at a time, in
// keeping with subrandr's single-threaded-per-renderer model (§5).
type Slot struct {
	mu  sync.Mutex
	err error
}

// NewSlot creates an empty last-error slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Set stores err as the most recent error, replacing any previous one.
func (s *Slot) Set(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Clear removes any stored error.
func (s *Slot) Clear() {
	s.Set(nil)
}

// Last returns the most recently stored error, or nil.
func (s *Slot) Last() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LastString mirrors get_last_error_string: the empty string if no
// error is stored.
func (s *Slot) LastString() string {
	if err := s.Last(); err != nil {
		return err.Error()
	}
	return ""
}

// LastCode mirrors get_last_error_code: 0 if no error is stored.
func (s *Slot) LastCode() Kind {
	if err := s.Last(); err != nil {
		return Code(err)
	}
	return 0
}

// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpq

import "fmt"

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindIO          ErrKind = iota // missing or unreadable file, short reads
	ErrKindFormat                     // bad magic, truncated header or tables
	ErrKindCompression                // unsupported codec, size mismatch, encrypted member
	ErrKindNotFound                   // name not present in the hash table
	ErrKindState                      // operation on a closed archive
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindIO:
		return "io"
	case ErrKindFormat:
		return "format"
	case ErrKindCompression:
		return "compression"
	case ErrKindNotFound:
		return "not found"
	case ErrKindState:
		return "state"
	}
	return fmt.Sprintf("ErrKind(%d)", int(k))
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Op   string // archive operation, e.g. "open" or "read"
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Op != "" {
		msg = "mpq: " + e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's kind, so that
// errors.Is(err, ErrFormat) matches every format error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind && t.Msg == sentinelMsg[t.Kind]
}

var sentinelMsg = map[ErrKind]string{
	ErrKindIO:          "mpq: i/o error",
	ErrKindFormat:      "mpq: invalid archive format",
	ErrKindCompression: "mpq: cannot decode file",
	ErrKindNotFound:    "mpq: file not found",
	ErrKindState:       "mpq: archive not open",
}

// Sentinels for errors.Is.
var (
	ErrIO          = &Error{Kind: ErrKindIO, Msg: sentinelMsg[ErrKindIO]}
	ErrFormat      = &Error{Kind: ErrKindFormat, Msg: sentinelMsg[ErrKindFormat]}
	ErrCompression = &Error{Kind: ErrKindCompression, Msg: sentinelMsg[ErrKindCompression]}
	ErrNotFound    = &Error{Kind: ErrKindNotFound, Msg: sentinelMsg[ErrKindNotFound]}
	ErrClosed      = &Error{Kind: ErrKindState, Msg: sentinelMsg[ErrKindState]}
)

func newError(kind ErrKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// withOp stamps op on err. Errors that are not *Error are reported as I/O
// failures.
func withOp(op string, err error) *Error {
	e, ok := err.(*Error)
	if !ok {
		return &Error{Kind: ErrKindIO, Op: op, Msg: "i/o error", Err: err}
	}
	if e.Op == "" {
		c := *e
		c.Op = op
		return &c
	}
	return e
}

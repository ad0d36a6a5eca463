package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for row decoding.
var (
	ErrMissingHeader = errors.New("empty file: missing header row")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidCount  = errors.New("invalid count")
)

// DecodeError is a malformed input row. Decode errors abort the run.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IOError is a failure opening, reading, writing or flushing a file.
type IOError struct {
	Op   string // "open", "create", "read", "write", "flush", "close"
	Path string // Optional
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// LineOf returns the input line of a decode error, or 0.
func LineOf(err error) int {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Line
	}
	return 0
}

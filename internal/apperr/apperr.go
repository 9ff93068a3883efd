// Package apperr is the error taxonomy shared by the lifecycle, search and
// history services. Every failure leaving those services carries a Kind.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	NotFound     Kind = "not_found"
	InvalidState Kind = "invalid_state"
	Validation   Kind = "validation"
	Busy         Kind = "busy"
	Unexpected   Kind = "unexpected"
)

type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "lifecycle.Assign"
	Msg  string
	Err  error

	// Details carries structured context for Validation failures.
	Details any
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to err. An err that already carries a kind keeps it.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of err. Errors outside the taxonomy are Unexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Unexpected
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

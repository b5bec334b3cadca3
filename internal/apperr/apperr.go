// Package apperr defines the error kinds surfaced by the syllabus pipeline.
//
// Every failure that reaches a caller is classified into exactly one Kind so
// the HTTP layer (or any other front end) can pick a user-facing message and
// status without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindUnknown    Kind = ""
	KindInput      Kind = "input"
	KindAuth       Kind = "auth"
	KindService    Kind = "service"
	KindParse      Kind = "parse"
	KindValidation Kind = "validation"
	KindSync       Kind = "sync"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
)

// Error is a classified error with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message == "":
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorKind reports the classification of e.
func (e *Error) ErrorKind() Kind { return e.Kind }

// New returns a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind, prefixing it with msg.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Classify tags err with kind without changing its message.
func Classify(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func Input(format string, args ...any) *Error      { return New(KindInput, format, args...) }
func Auth(format string, args ...any) *Error       { return New(KindAuth, format, args...) }
func Service(format string, args ...any) *Error    { return New(KindService, format, args...) }
func Parse(format string, args ...any) *Error      { return New(KindParse, format, args...) }
func Validation(format string, args ...any) *Error { return New(KindValidation, format, args...) }
func Conflict(format string, args ...any) *Error   { return New(KindConflict, format, args...) }
func NotFound(format string, args ...any) *Error   { return New(KindNotFound, format, args...) }

type kinded interface {
	ErrorKind() Kind
}

// KindOf returns the Kind of the outermost classified error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindUnknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

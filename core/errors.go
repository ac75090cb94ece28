package core

import (
	"errors"
	"fmt"
)

// Failure kinds for the capture pipeline. Callers classify errors with
// errors.Is against these sentinels.
var (
	ErrInvalidURL  = errors.New("invalid url")
	ErrFetch       = errors.New("fetch failed")
	ErrExtract     = errors.New("extraction failed")
	ErrRender      = errors.New("render failed")
	ErrStorage     = errors.New("storage failure")
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate article id")
)

// Error wraps a component failure with its kind and, when available, the
// underlying cause.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind.Error(), e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind.Error(), e.Err)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Errf builds an Error of the given kind with a formatted message.
func Errf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind error, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

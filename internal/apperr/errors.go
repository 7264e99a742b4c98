// Package apperr holds the error kinds shared by the dashboard services.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidTransition  Kind = "invalid_transition"
	KindPreconditionFailed Kind = "precondition_failed"
	KindValidation         Kind = "validation_error"
	KindUnapproved         Kind = "unapproved_content"
	KindInvalidArgument    Kind = "invalid_argument"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal"
)

// Error is a classified failure. Two errors match under errors.Is when their
// kinds are equal, so the package sentinels work as kind checks.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrPreconditionFailed = &Error{Kind: KindPreconditionFailed}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrUnapproved         = &Error{Kind: KindUnapproved}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrConflict           = &Error{Kind: KindConflict}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error { return New(KindNotFound, format, args...) }
func InvalidTransition(format string, args ...any) error {
	return New(KindInvalidTransition, format, args...)
}
func PreconditionFailed(format string, args ...any) error {
	return New(KindPreconditionFailed, format, args...)
}
func Validation(format string, args ...any) error { return New(KindValidation, format, args...) }
func InvalidArgument(format string, args ...any) error {
	return New(KindInvalidArgument, format, args...)
}
func Conflict(format string, args ...any) error { return New(KindConflict, format, args...) }

// UnapprovedWarning is the soft block raised by auto-distribute when the pool
// holds items that are not approved and the caller did not confirm.
type UnapprovedWarning struct {
	Count int
}

func (w *UnapprovedWarning) Error() string {
	return fmt.Sprintf("%d unscheduled item(s) are not approved; confirm to schedule only approved content", w.Count)
}

func (w *UnapprovedWarning) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindUnapproved
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var w *UnapprovedWarning
	if errors.As(err, &w) {
		return KindUnapproved
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnapproved:
		return http.StatusPreconditionRequired
	}
	return http.StatusInternalServerError
}

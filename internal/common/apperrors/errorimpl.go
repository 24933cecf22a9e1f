package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// appError implements the apperrors.Error interface.
// Every method that changes the message or the wrapped errors returns a copy,
// so package level sentinels stay untouched.
type appError struct {
	msg           string
	base          Error
	wrappedErrors []error
	statuscode    int
	kind          Kind
	expandError   bool
	prefix        string
	suffix        string
}

func (e *appError) Error() string {
	msg := e.msg
	if e.prefix != "" {
		msg = e.prefix + ": " + msg
	}
	if e.suffix != "" {
		msg += ": " + e.suffix
	}
	return msg
}

func (e *appError) ErrorAll() string {
	if !e.expandError || len(e.wrappedErrors) == 0 {
		return e.Error()
	}
	parts := make([]string, 0, len(e.wrappedErrors))
	for _, err := range e.wrappedErrors {
		parts = append(parts, err.Error())
	}
	return e.Error() + ": " + strings.Join(parts, ";")
}

func (e *appError) Unwrap() []error {
	return e.wrappedErrors
}

func (e *appError) clone() *appError {
	c := *e
	c.wrappedErrors = append([]error(nil), e.wrappedErrors...)
	return &c
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		statuscode:  e.statuscode,
		kind:        e.kind,
		expandError: e.expandError,
		base:        e,
	}
}

func (e *appError) Msg(msg string) Error {
	c := e.New(msg).(*appError)
	c.wrappedErrors = append([]error(nil), e.wrappedErrors...)
	return c
}

func (e *appError) Msgf(format string, args ...any) Error {
	return e.Msg(fmt.Sprintf(format, args...))
}

func (e *appError) Prefix(prefix string) Error {
	c := e.clone()
	c.prefix = prefix
	return c
}

func (e *appError) Suffix(suffix string) Error {
	c := e.clone()
	c.suffix = suffix
	return c
}

func (e *appError) MsgErr(msg string, err ...error) Error {
	c := e.Msg(msg).(*appError)
	c.wrappedErrors = append(c.wrappedErrors, err...)
	return c
}

func (e *appError) Err(err ...error) Error {
	c := e.New(e.msg).(*appError)
	c.prefix, c.suffix = e.prefix, e.suffix
	c.wrappedErrors = append(append([]error(nil), e.wrappedErrors...), err...)
	return c
}

func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*appError); ok && e == t {
		return true
	}
	if e.base != nil && (e.base == target || e.base.Is(target)) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SetExpandError and SetStatusCode configure the receiver in place; they are
// meant for building sentinels at package initialization.
func (e *appError) SetExpandError(expand bool) Error {
	e.expandError = expand
	return e
}

func (e *appError) SetStatusCode(code int) Error {
	e.statuscode = code
	return e
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

func (e *appError) SetKind(kind Kind) Error {
	e.kind = kind
	return e
}

func (e *appError) Kind() Kind {
	return e.kind
}

func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}

// KindOf reports the Kind of the first apperrors.Error found in err's chain.
func KindOf(err error) Kind {
	var ae Error
	if errors.As(err, &ae) {
		return ae.Kind()
	}
	return KindUnknown
}

// StatusCodeOf reports the status code of the first apperrors.Error in err's
// chain, or fallback when none carries one.
func StatusCodeOf(err error, fallback int) int {
	var ae Error
	if errors.As(err, &ae) && ae.StatusCode() != 0 {
		return ae.StatusCode()
	}
	return fallback
}

package api

import "net/http"

// ErrorKind is the small, closed set of HTTP-facing error categories the
// service returns, mirroring the original service's AppErrorType enum
// (NotFound, BadRequest, NotImplemented, InternalServerError).
type ErrorKind int

const (
	KindBadRequest ErrorKind = iota
	KindNotFound
	KindNotImplemented
	KindInternal
)

// Error is the typed error every handler returns instead of a bare error,
// so the top-level dispatch can map it onto a status code and a JSON body
// without string-sniffing.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status code for e.Kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(msg string) *Error     { return &Error{Kind: KindBadRequest, Message: msg} }
func notFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func notImplemented(msg string) *Error { return &Error{Kind: KindNotImplemented, Message: msg} }
func internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

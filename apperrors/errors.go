// Package apperrors is the error taxonomy shared by the backend client,
// the view-model stores and the HTTP controllers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation           Kind = "validation"
	KindAuth                 Kind = "auth"
	KindNotFoundOrPermission Kind = "not_found_or_permission"
	KindTransient            Kind = "transient"
	KindMalformed            Kind = "malformed_response"
	KindConflict             Kind = "conflict"
	KindServer               Kind = "server"
)

// Sentinels for errors.Is matching on the kind alone.
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrAuth                 = &Error{Kind: KindAuth}
	ErrNotFoundOrPermission = &Error{Kind: KindNotFoundOrPermission}
	ErrTransient            = &Error{Kind: KindTransient}
	ErrMalformed            = &Error{Kind: KindMalformed}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrServer               = &Error{Kind: KindServer}
)

// Error carries the kind, the failing operation and whatever the backend said.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Detail string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Message is the user-facing text for the error.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return e.Fields[keys[0]]
	}
	switch e.Kind {
	case KindValidation:
		return "Validation failed!"
	case KindAuth:
		return "Your session has expired. Please log in again."
	case KindNotFoundOrPermission:
		return "The requested resource was not found or you do not have access to it."
	case KindTransient:
		return "Could not reach the server. Please try again."
	case KindMalformed:
		return "The server sent an unexpected response."
	case KindConflict:
		return "The resource was changed by someone else."
	default:
		return "Something went wrong on the server."
	}
}

// HTTPStatus maps the kind to the status the BFF answers with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFoundOrPermission:
		if e.Status == http.StatusForbidden {
			return http.StatusForbidden
		}
		return http.StatusNotFound
	case KindTransient:
		return http.StatusServiceUnavailable
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func Validation(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Fields: fields}
}

func Auth(op, detail string) *Error {
	return &Error{Kind: KindAuth, Op: op, Status: http.StatusUnauthorized, Detail: detail}
}

func Transient(op string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Err: err}
}

func Malformed(op string, err error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Err: err}
}

func Malformedf(op, format string, args ...interface{}) *Error {
	return Malformed(op, fmt.Errorf(format, args...))
}

// FromStatus classifies a non-2xx backend answer.
func FromStatus(op string, status int, detail string, fields map[string]string) *Error {
	e := &Error{Op: op, Status: status, Detail: detail, Fields: fields}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindAuth
	case status == http.StatusForbidden || status == http.StatusNotFound:
		e.Kind = KindNotFoundOrPermission
	case status == http.StatusConflict:
		e.Kind = KindConflict
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		e.Kind = KindTransient
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		e.Kind = KindTransient
	case status >= 400 && status < 500:
		e.Kind = KindValidation
	default:
		e.Kind = KindServer
	}
	return e
}

// As returns the *Error inside err, wrapping unknown errors as server errors.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindServer, Err: err}
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

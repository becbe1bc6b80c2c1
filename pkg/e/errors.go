package e

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrNotImplemented = errors.New("not implemented")
)

// Kind partitions request failures so the web boundary can map each class
// to a status code without inspecting error strings.
type Kind int

const (
	KindInput Kind = iota
	KindValidation
	KindFetch
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindValidation:
		return "validation"
	case KindFetch:
		return "fetch"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// Error is the single error currency of the request pipeline. Context holds
// extra fields merged into the JSON error payload, e.g. the URL variants
// attempted by a failed fetch.
type Error struct {
	Kind           Kind
	Message        string
	UpstreamStatus int
	Context        map[string]interface{}
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to a response status. Fetch errors
// propagate the upstream status when one was seen.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInput, KindValidation:
		return http.StatusBadRequest
	case KindFetch:
		if e.UpstreamStatus > 0 {
			return e.UpstreamStatus
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func Input(message string) *Error {
	return &Error{Kind: KindInput, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Fetch(message string, upstreamStatus int, err error) *Error {
	return &Error{Kind: KindFetch, Message: message, UpstreamStatus: upstreamStatus, Err: err}
}

func Storage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

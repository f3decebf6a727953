package apperrors

import (
	"errors"
	"net/http"
)

// Kind classifies a domain error so the HTTP boundary can map it to a status
// code without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuth
	KindAuthorization
	KindNotFound
	KindConflict
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Auth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

func Authorization(message string) error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf returns the classification of err, or KindUnknown for errors that did
// not originate in the service layer.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Status maps an error to the HTTP status code used at the boundary.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-checkable error category.
type Kind string

const (
	InvalidInput      Kind = "InvalidInput"
	DuplicateArticle  Kind = "DuplicateArticle"
	NotFound          Kind = "NotFound"
	ExtractionFailed  Kind = "ExtractionFailed"
	Unauthorized      Kind = "Unauthorized"
	RemoteUnavailable Kind = "RemoteUnavailable"
	Internal          Kind = "Internal"
)

// Error is a classified error. Message is safe to show to callers; Err is not.
type Error struct {
	Kind      Kind
	Message   string
	ArticleID string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies err under kind with a caller-facing message.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Duplicate reports that an article with the same source URL already exists.
func Duplicate(articleID string) *Error {
	return &Error{Kind: DuplicateArticle, Message: "article already exists", ArticleID: articleID}
}

// KindOf returns the kind of err, or Internal when it is unclassified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidInput, ExtractionFailed:
		return http.StatusBadRequest
	case DuplicateArticle:
		return http.StatusConflict
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

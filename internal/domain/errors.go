package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrAlbumNotFound = errors.New("album not found")
	ErrMediaNotFound = errors.New("media not found")
)

type ErrorKind string

const (
	KindValidation  ErrorKind = "VALIDATION_ERROR"
	KindNotFound    ErrorKind = "NOT_FOUND"
	KindPersistence ErrorKind = "PERSISTENCE_ERROR"
	KindFilesystem  ErrorKind = "FILESYSTEM_ERROR"
	KindConflict    ErrorKind = "CONFLICT"
)

// Error is the failure reported by the post coordinator. Reverted is only
// set when a failed edit was rolled back, so clients can resynchronize.
type Error struct {
	Kind     ErrorKind
	Message  string
	Err      error
	Reverted *PostView
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func NotFoundError(err error) *Error {
	return &Error{Kind: KindNotFound, Message: err.Error(), Err: err}
}

func PersistenceError(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

func FilesystemError(message string, err error) *Error {
	return &Error{Kind: KindFilesystem, Message: message, Err: err}
}

func ConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// KindOf classifies err. Unclassified errors count as persistence failures.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	if errors.Is(err, ErrPostNotFound) || errors.Is(err, ErrAlbumNotFound) || errors.Is(err, ErrMediaNotFound) {
		return KindNotFound
	}
	return KindPersistence
}

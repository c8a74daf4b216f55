package docstore

import "errors"

var (
	// ErrUnavailable indicates the storage service could not be reached
	// after retry.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrEmptyUserID indicates an empty user identifier was provided.
	ErrEmptyUserID = errors.New("user id must not be empty")
	// ErrInvalidUserID indicates the user identifier contains path segments.
	ErrInvalidUserID = errors.New("user id contains invalid characters")
)

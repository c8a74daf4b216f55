package modelclient

import "errors"

var (
	// ErrTimeout indicates the model call exceeded its configured deadline.
	ErrTimeout = errors.New("model call timed out")
	// ErrGenerateFailed indicates a transport or API failure.
	ErrGenerateFailed = errors.New("model call failed")
)

package classifier

import "errors"

// ErrEmptyQuery indicates the caller passed a blank query. This is the only
// caller-contract violation the classifier reports; model-side failures
// degrade to fallback prescriptions instead.
var ErrEmptyQuery = errors.New("classification requires a non-empty query")

package assessor

import "errors"

// Sentinel kinds for assessor errors.
var (
	// ErrUnavailable indicates the model provider could not be reached
	// within the retry window. Retryable.
	ErrUnavailable = errors.New("assessor unavailable")

	// ErrMalformedVerdict indicates the model answered with something that
	// does not parse as a verdict. Retryable.
	ErrMalformedVerdict = errors.New("malformed assessor verdict")
)

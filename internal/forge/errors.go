package forge

import "errors"

// Sentinel errors classifying every failure mode of a release lookup.
// Concrete errors wrap these, so callers match them with errors.Is.
var (
	// ErrInvalidProjectName indicates a project identifier without the
	// required owner/repo structure.
	ErrInvalidProjectName = errors.New("invalid project name")

	// ErrInvalidToken indicates a token that cannot be encoded as a
	// valid HTTP header value. Not retryable.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRequestFailed indicates a transport-level failure or a
	// non-success HTTP status from the forge API.
	ErrRequestFailed = errors.New("release info request failed")

	// ErrDecodeFailed indicates a response body that is not valid JSON
	// or does not match the platform's release schema.
	ErrDecodeFailed = errors.New("release info decode failed")
)

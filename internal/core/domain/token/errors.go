package token

import "errors"

// Verification outcome errors. Handlers match on these with errors.Is to
// pick the HTTP status / page; anything else is treated as an internal
// store failure.
var (
	// ErrNotFound: key absent from the store, whether never issued,
	// already consumed, or purged.
	ErrNotFound = errors.New("token not found")

	// ErrExpired: record present but past its expiry. The record is
	// opportunistically deleted when this is detected.
	ErrExpired = errors.New("token expired")

	// ErrCodeMismatch: submitted code does not equal the stored code. The
	// record is retained so the user may retry.
	ErrCodeMismatch = errors.New("verification code mismatch")

	// ErrDownstream: the privileged action failed after the token checked
	// out. The record is retained (best effort) so a fresh attempt can
	// succeed without re-issuing.
	ErrDownstream = errors.New("privileged action failed")
)

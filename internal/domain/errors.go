package domain

import "errors"

var (
	// Environment and data integrity failures.
	ErrUnsupportedEnvironment = errors.New("no secure key generation available")
	ErrInvalidKeyMaterial     = errors.New("invalid key material")
	ErrMalformedEncoding      = errors.New("malformed encoding")

	// Storage failures. ErrStorageUnavailable is safe to retry.
	ErrCorruptStore       = errors.New("credential store is corrupt")
	ErrStorageUnavailable = errors.New("credential storage unavailable")

	// Expected domain outcomes, surfaced to users and never logged as faults.
	ErrAlreadyRegistered = errors.New("identity already registered")
	ErrUnknownUser       = errors.New("unknown user")
	ErrNoActiveSession   = errors.New("no active session")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrOperationAbandoned is returned when the caller's context ends before
	// an operation completes.
	ErrOperationAbandoned = errors.New("operation abandoned")
)

// IsExpected reports whether err is a domain-level outcome rather than a
// failure of the system itself.
func IsExpected(err error) bool {
	return errors.Is(err, ErrAlreadyRegistered) ||
		errors.Is(err, ErrUnknownUser) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrInvalidInput)
}

// IsRetryable reports whether err is a transient storage failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

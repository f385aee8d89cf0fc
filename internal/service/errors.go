package service

import "errors"

// Relay server errors.
var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrRegisterOnServer = errors.New("registration on server failed")
	ErrLoginOnServer    = errors.New("login on server failed")
)

// Sync engine errors.
var (
	// ErrEncryption is a per-item crypter failure. The item is skipped and the
	// batch goes on.
	ErrEncryption = errors.New("encryption error")

	// ErrTransport is a retryable send failure. The batch was kept in the
	// offline queue.
	ErrTransport = errors.New("transport error")

	// ErrAccountRemoved is terminal: the server revoked the account and the
	// device dropped its sync state. The user has to sign in again.
	ErrAccountRemoved = errors.New("sync account was removed")

	// ErrIntegrityViolation marks a received delta that references a folder
	// the device cannot resolve. The affected subtree was left untouched.
	ErrIntegrityViolation = errors.New("integrity violation in received delta")

	ErrNotAuthenticated     = errors.New("no sync account on this device")
	ErrAlreadyAuthenticated = errors.New("device already holds a sync account")
)

// IsRetryable reports whether a sync pass that failed with err may succeed on
// a later trigger without user action.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport)
}

package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates an empty or in-memory DSN.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidAppConfigs indicates missing token or hashing keys.
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidServerConfigs indicates a missing listen address or timeout.
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidWorkerConfigs indicates a zero job interval.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrNegativeDuration indicates a negative timeout or interval.
	ErrNegativeDuration = errors.New("durations must not be negative")
	// ErrInvalidNetAddress indicates a malformed host:port flag value.
	ErrInvalidNetAddress = errors.New("need address in a form host:port")
)

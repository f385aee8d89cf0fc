package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrLoginAlreadyExists is returned when an attempt to register a new user
	// fails because a user with the same login already exists in the database.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when a query expected to match a user
	// record produces an empty result set.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrAccountRevoked is returned when a relay operation targets an account
	// that was deleted.
	ErrAccountRevoked = errors.New("account was revoked")

	// ErrInvalidCursor is returned when a client sends a cursor ahead of the
	// account's change sequence.
	ErrInvalidCursor = errors.New("invalid sync cursor")

	// ErrNoAccount is returned by the client account store when the device
	// holds no sync account.
	ErrNoAccount = errors.New("no sync account on this device")

	// ErrNoOfflineBatch is returned when no unsent batch is persisted for the
	// account.
	ErrNoOfflineBatch = errors.New("no offline batch")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning fails during multi-row
	// iteration.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingPayload is returned when a value cannot be serialized for
	// storage or deserialized after loading.
	ErrEncodingPayload = errors.New("failed to encode stored payload")
)

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidLogin      = errors.New("invalid login")
	ErrInvalidPrimaryKey = errors.New("invalid primary key")

	ErrInvalidUUID          = errors.New("invalid record uuid")
	ErrDuplicateUUID        = errors.New("record uuid listed twice in one request")
	ErrInvalidParent        = errors.New("invalid record parent")
	ErrInvalidChildren      = errors.New("invalid record children")
	ErrInvalidModifiedSince = errors.New("invalid modified_since cursor")
	ErrTooManyUpdates       = errors.New("too many updates in one request")
)

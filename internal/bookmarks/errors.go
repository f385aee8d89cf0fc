package bookmarks

import "errors"

var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicateUUID = errors.New("uuid already present in tree")
	ErrNotAFolder    = errors.New("entity is not a folder")
	ErrRootImmutable = errors.New("well-known folder cannot be moved, renamed or deleted")
	ErrCycle         = errors.New("folder cannot be moved into its own subtree")
	ErrInvalidEntity = errors.New("invalid entity")
	ErrBrokenTree    = errors.New("tree invariant violated")
)

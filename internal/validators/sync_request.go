package validators

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/bookmark-sync/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldLogin targets the account login.
	FieldLogin = "login"

	// FieldPrimaryKey targets the hex-encoded authentication key.
	FieldPrimaryKey = "primary_key"

	// FieldUUID targets the record identity.
	FieldUUID = "uuid"

	// FieldParent targets the parent reference: required for every live
	// record except the well-known folders, which must not have one.
	FieldParent = "parent"

	// FieldChildren targets the children list: folders only, no repeats, no
	// self reference.
	FieldChildren = "children"

	// FieldUpdates targets the record list of a sync request.
	FieldUpdates = "updates"

	// FieldModifiedSince targets the cursor of a sync request.
	FieldModifiedSince = "modified_since"
)

// MaxUpdatesPerRequest bounds the size of one sync request.
const MaxUpdatesPerRequest = 10000

// primaryKeyLen is the hex length of a 32-byte key.
const primaryKeyLen = 64

// SyncRequestValidator implements the Validator interface for the relay
// models: User, Syncable and BookmarksRequest. Value and pointer forms are
// accepted.
type SyncRequestValidator struct{}

func NewSyncRequestValidator() Validator {
	return &SyncRequestValidator{}
}

func (v *SyncRequestValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.User:
		return v.validateUser(ctx, value, fields...)
	case *models.User:
		return v.validateUser(ctx, *value, fields...)

	case models.Syncable:
		return v.validateSyncable(ctx, value, fields...)
	case *models.Syncable:
		return v.validateSyncable(ctx, *value, fields...)

	case models.BookmarksRequest:
		return v.validateBookmarksRequest(ctx, value, fields...)
	case *models.BookmarksRequest:
		return v.validateBookmarksRequest(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateUser checks the credentials of signup and login.
//
// Default validated fields: Login, PrimaryKey.
func (v *SyncRequestValidator) validateUser(_ context.Context, user models.User, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldPrimaryKey}
	}

	for _, f := range fields {
		switch f {
		case FieldLogin:
			if strings.TrimSpace(user.Login) == "" {
				return ErrInvalidLogin
			}
		case FieldPrimaryKey:
			if len(user.PrimaryKey) != primaryKeyLen {
				return ErrInvalidPrimaryKey
			}
			if _, err := hex.DecodeString(user.PrimaryKey); err != nil {
				return ErrInvalidPrimaryKey
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateSyncable checks one record. Tombstones only need a uuid.
//
// Default validated fields: UUID, Parent, Children.
func (v *SyncRequestValidator) validateSyncable(_ context.Context, rec models.Syncable, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUUID, FieldParent, FieldChildren}
	}

	isRoot := rec.UUID == models.RootFolderID || rec.UUID == models.FavoritesFolderID
	for _, f := range fields {
		switch f {
		case FieldUUID:
			if strings.TrimSpace(rec.UUID) == "" {
				return ErrInvalidUUID
			}
		case FieldParent:
			if rec.IsDeleted() {
				continue
			}
			if isRoot && rec.ParentUUID != nil {
				return fmt.Errorf("%w: well-known folder %s has a parent", ErrInvalidParent, rec.UUID)
			}
			if !isRoot && rec.Parent() == "" {
				return fmt.Errorf("%w: %s has no parent", ErrInvalidParent, rec.UUID)
			}
			if rec.Parent() == rec.UUID {
				return fmt.Errorf("%w: %s is its own parent", ErrInvalidParent, rec.UUID)
			}
		case FieldChildren:
			if rec.IsDeleted() || len(rec.Children) == 0 {
				continue
			}
			if !rec.IsFolder {
				return fmt.Errorf("%w: bookmark %s has children", ErrInvalidChildren, rec.UUID)
			}
			seen := make(map[string]struct{}, len(rec.Children))
			for _, child := range rec.Children {
				if child == "" || child == rec.UUID {
					return fmt.Errorf("%w: %s lists %q", ErrInvalidChildren, rec.UUID, child)
				}
				if _, dup := seen[child]; dup {
					return fmt.Errorf("%w: %s lists %s twice", ErrInvalidChildren, rec.UUID, child)
				}
				seen[child] = struct{}{}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateBookmarksRequest checks a sync request. An empty updates list is
// valid: the client only asks for the delta.
//
// Default validated fields: ModifiedSince, Updates.
func (v *SyncRequestValidator) validateBookmarksRequest(ctx context.Context, req models.BookmarksRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldModifiedSince, FieldUpdates}
	}

	for _, f := range fields {
		switch f {
		case FieldModifiedSince:
			if req.ModifiedSince == "" {
				continue
			}
			if seq, err := strconv.ParseInt(req.ModifiedSince, 10, 64); err != nil || seq < 0 {
				return ErrInvalidModifiedSince
			}
		case FieldUpdates:
			if len(req.Updates) > MaxUpdatesPerRequest {
				return ErrTooManyUpdates
			}
			seen := make(map[string]struct{}, len(req.Updates))
			for i, rec := range req.Updates {
				if err := v.validateSyncable(ctx, rec); err != nil {
					return fmt.Errorf("validation error at index %d: %w", i, err)
				}
				if _, dup := seen[rec.UUID]; dup {
					return fmt.Errorf("validation error at index %d: %w: %s", i, ErrDuplicateUUID, rec.UUID)
				}
				seen[rec.UUID] = struct{}{}
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

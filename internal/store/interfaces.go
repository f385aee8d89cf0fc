package store

import (
	"context"
	"time"

	"github.com/MKhiriev/bookmark-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository manages relay accounts.
type UserRepository interface {
	// CreateUser inserts user and returns it with the generated UserID and
	// CreatedAt. user.PrimaryKey must already hold the keyed hash.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByLogin returns [ErrNoUserWasFound] for an unknown login.
	FindUserByLogin(ctx context.Context, login string) (models.User, error)

	// FindUserByID returns [ErrNoUserWasFound] for an unknown id.
	FindUserByID(ctx context.Context, userID int64) (models.User, error)

	// RevokeUser marks the account revoked and drops its records. Every
	// later request carrying a token of the account gets 403.
	RevokeUser(ctx context.Context, userID int64) error
}

// RecordRepository stores the encrypted records relayed between devices.
type RecordRepository interface {
	// SyncRecords stores updates under a new change sequence number and
	// returns every record changed after since except the updated ones,
	// together with the cursor the client should send next time. A zero
	// since is a full fetch and leaves tombstones out.
	SyncRecords(ctx context.Context, userID, since int64, updates []models.StoredRecord) ([]models.StoredRecord, int64, error)

	// PurgeTombstones deletes tombstones last written before olderThan and
	// returns how many were removed.
	PurgeTombstones(ctx context.Context, olderThan time.Time) (int64, error)
}

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/bookmark-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SyncService is the relay side of the sync protocol. It stores encrypted
// records without reading them.
type SyncService interface {
	// SyncBookmarks stores req.Updates for userID and returns every record
	// changed after req.ModifiedSince except the submitted ones, plus the
	// new cursor.
	SyncBookmarks(ctx context.Context, userID int64, req models.BookmarksRequest) (models.BookmarksResponse, error)

	// PurgeTombstones removes tombstones written before olderThan.
	PurgeTombstones(ctx context.Context, olderThan time.Time) (int64, error)
}

// SyncServiceWrapper defines middleware composition for SyncService.
// Implementations wrap an existing SyncService to add behavior such as
// validating.
type SyncServiceWrapper interface {
	Wrap(SyncService) SyncService // returns a decorated SyncService applying additional behavior
}

type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)

	// CheckAccount returns store.ErrAccountRevoked for a revoked account
	// and store.ErrNoUserWasFound for an unknown one.
	CheckAccount(ctx context.Context, userID int64) error

	// RevokeAccount marks the account revoked and drops its records.
	RevokeAccount(ctx context.Context, userID int64) error
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

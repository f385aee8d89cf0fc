package service

import (
	"context"
	"io"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock -exclude_interfaces=DataProvider

// DataProvider reads the outbound records of a sync pass from the local
// tree. Both methods read one consistent snapshot.
type DataProvider interface {
	// AllObjects encodes every entity. Used by the first sync of an account.
	AllObjects(ctx context.Context) (Snapshot, error)

	// ChangedObjects encodes the entities carrying a modified marker or
	// pending deletion.
	ChangedObjects(ctx context.Context) (Snapshot, error)
}

// ClientSyncService is the sync orchestrator of the device account.
type ClientSyncService interface {
	// Sync runs one sync pass. Calls made while a pass is running share a
	// single re-run after it, wait for it and return its error, so a nil
	// result means the caller's changes were sent. Once a pass reports
	// ErrAccountRemoved no re-run happens and that error is returned to the
	// caller that started the pass and to every waiting one. Without an
	// account Sync does nothing.
	Sync(ctx context.Context) error

	// Subscribe returns a channel of sync events and a function that ends
	// the subscription. Events are dropped for a subscriber that does not
	// keep up.
	Subscribe() (<-chan models.SyncEvent, func())
}

// ClientAccountService drives the account lifecycle of the device:
// unauthenticated, pending first sync, active.
type ClientAccountService interface {
	// CreateAccount signs up login on the server and stores the account in
	// the pending-first-sync state.
	CreateAccount(ctx context.Context, login, password string) (models.SyncAccount, error)

	// Login signs in to an existing account. Same result as CreateAccount.
	Login(ctx context.Context, login, password string) (models.SyncAccount, error)

	// Disconnect drops the account, its offline queue and its cursor. The
	// bookmark tree is kept.
	Disconnect(ctx context.Context) error

	// DeleteAccount revokes the account on the server and disconnects.
	DeleteAccount(ctx context.Context) error

	IsAuthenticated(ctx context.Context) (bool, error)

	// Account returns [ErrNotAuthenticated] when the device is signed out.
	Account(ctx context.Context) (models.SyncAccount, error)
}

// ClientBookmarksService edits the local bookmark tree. Every edit sets the
// modified marker of the touched entities so the next sync pass sends them.
type ClientBookmarksService interface {
	Tree(ctx context.Context) (*bookmarks.Tree, error)

	// AddBookmark creates a bookmark at the end of parent and returns its
	// uuid. An empty parent means the root folder.
	AddBookmark(ctx context.Context, parent, title, url string) (string, error)

	// AddFolder creates a folder at the end of parent and returns its uuid.
	AddFolder(ctx context.Context, parent, title string) (string, error)

	Rename(ctx context.Context, uuid, title string) error
	SetURL(ctx context.Context, uuid, url string) error

	// Move re-homes uuid under parent at index. A negative index appends.
	Move(ctx context.Context, uuid, parent string, index int) error

	// Delete removes uuid and its subtree. Entities the server never saw are
	// removed at once, the rest wait for their tombstones to be confirmed.
	Delete(ctx context.Context, uuid string) error

	// SetFavorite adds uuid to the end of the favorites or removes it.
	SetFavorite(ctx context.Context, uuid string, favorite bool) error

	// Import reads a Netscape bookmark file into parent and returns the
	// number of created entities.
	Import(ctx context.Context, parent string, r io.Reader) (int, error)
}

// ClientSyncJob triggers the sync orchestrator periodically.
type ClientSyncJob interface {
	// Start launches the background trigger. A zero or negative interval
	// defaults to 5 minutes. A running job is stopped first.
	Start(ctx context.Context, interval time.Duration)

	// Stop ends the background trigger and waits for it to exit.
	Stop()
}

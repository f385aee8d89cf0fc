package cli

import (
	"errors"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/service"
	"github.com/MKhiriev/bookmark-sync/internal/store"
)

// errMessages holds the user-facing text of the errors a command can end
// with. Checked in order.
var errMessages = []struct {
	target error
	text   string
}{
	{service.ErrNotAuthenticated, "not signed in, run `bookmark-sync login` first"},
	{service.ErrAlreadyAuthenticated, "already signed in, run `bookmark-sync logout` first"},
	{service.ErrAccountRemoved, "the account was deleted on another device, sign in again"},
	{service.ErrWrongPassword, "wrong login or password"},
	{store.ErrLoginAlreadyExists, "this login is already taken"},
	{service.ErrTransport, "the relay server is unreachable, changes are kept until the next sync"},
	{service.ErrInvalidDataProvided, "invalid input"},
	{bookmarks.ErrNotFound, "no such bookmark or folder"},
	{bookmarks.ErrNotAFolder, "the target is not a folder"},
	{bookmarks.ErrRootImmutable, "the top-level folders cannot be changed"},
	{bookmarks.ErrCycle, "a folder cannot be moved into itself"},
}

// describeError returns a short explanation of err for the terminal.
func describeError(err error) string {
	for _, m := range errMessages {
		if errors.Is(err, m.target) {
			return m.text + " (" + err.Error() + ")"
		}
	}
	return err.Error()
}

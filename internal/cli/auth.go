package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/bookmark-sync/internal/service"
	"github.com/MKhiriev/bookmark-sync/models"
)

var errPasswordsDiffer = errors.New("passwords do not match")

func (c *cli) signupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signup <login>",
		Short: "Create a sync account and upload the local bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			password, err := c.readPassword(out, "Password: ")
			if err != nil {
				return err
			}
			repeated, err := c.readPassword(out, "Repeat password: ")
			if err != nil {
				return err
			}
			if password != repeated {
				return errPasswordsDiffer
			}

			account, err := c.app.Services.AccountService.CreateAccount(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Account %q created.", account.Login)))

			return c.runSync(cmd)
		},
	}
}

func (c *cli) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <login>",
		Short: "Sign in to an existing account and merge its bookmarks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			password, err := c.readPassword(out, "Password: ")
			if err != nil {
				return err
			}

			account, err := c.app.Services.AccountService.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Signed in as %q.", account.Login)))

			return c.runSync(cmd)
		},
	}
}

func (c *cli) logoutCommand() *cobra.Command {
	var deleteAccount bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Stop syncing this device",
		Long: `Stop syncing this device. The bookmarks stay on the device.

With --delete-account the account is deleted on the server as well and every
other device signed in to it stops syncing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts := c.app.Services.AccountService

			if deleteAccount {
				if err := accounts.DeleteAccount(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Account deleted."))
				return nil
			}

			if err := accounts.Disconnect(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Signed out. Bookmarks are kept on this device."))
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteAccount, "delete-account", false, "delete the account on the server")

	return cmd
}

// runSync runs one sync pass and prints its outcome.
func (c *cli) runSync(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	events, unsubscribe := c.app.Services.SyncService.Subscribe()
	defer unsubscribe()

	syncErr := c.app.Services.SyncService.Sync(cmd.Context())

	var last *models.SyncEvent
	for drained := false; !drained; {
		select {
		case ev := <-events:
			if ev.Kind != models.SyncStarted {
				last = &ev
			}
		default:
			drained = true
		}
	}

	if syncErr != nil {
		if service.IsRetryable(syncErr) {
			fmt.Fprintln(out, warnStyle.Render("Sync failed, local changes are kept for the next attempt."))
		}
		return syncErr
	}
	if last == nil {
		fmt.Fprintln(out, helpStyle.Render("Not signed in, nothing to sync."))
		return nil
	}

	fmt.Fprintln(out, successStyle.Render(describeSyncEvent(*last)))
	return nil
}

func describeSyncEvent(ev models.SyncEvent) string {
	kind := "Sync"
	if ev.Initial {
		kind = "First sync"
	}
	text := fmt.Sprintf("%s done: %d sent, %d received.", kind, ev.Sent, ev.Received)
	if ev.Violations > 0 {
		text += fmt.Sprintf(" %d received records were held back.", ev.Violations)
	}
	return text
}

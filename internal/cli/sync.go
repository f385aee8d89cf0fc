package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/service"
	"github.com/MKhiriev/bookmark-sync/models"
)

func (c *cli) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send local changes and fetch changes from other devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSync(cmd)
		},
	}
}

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the account and the number of unsent changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			services := c.app.Services

			tree, err := services.BookmarksService.Tree(ctx)
			if err != nil {
				return err
			}
			counts := countEntities(tree)

			var lines []string
			account, err := services.AccountService.Account(ctx)
			switch {
			case errors.Is(err, service.ErrNotAuthenticated):
				lines = append(lines, "Account:  "+helpStyle.Render("not signed in"))
			case err != nil:
				return err
			default:
				lines = append(lines,
					"Account:  "+titleStyle.Render(account.Login),
					"State:    "+describeAccountState(account.State),
				)
			}
			lines = append(lines,
				fmt.Sprintf("Bookmarks: %d in %d folders, %d favorites", counts.bookmarks, counts.folders, len(tree.Favorites())),
				fmt.Sprintf("Unsent:    %d changes, %d deletions", counts.modified, counts.deleted),
			)

			fmt.Fprintln(cmd.OutOrStdout(), boxStyle.Render(strings.Join(lines, "\n")))
			return nil
		},
	}
}

func (c *cli) daemonCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Keep syncing in the foreground until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, helpStyle.Render("Syncing in the background, press Ctrl+C to stop."))

			return c.app.Run(ctx, func(ev models.SyncEvent) {
				stamp := ev.At.Local().Format(time.TimeOnly)
				switch ev.Kind {
				case models.SyncSucceeded:
					fmt.Fprintln(out, stamp, successStyle.Render(describeSyncEvent(ev)))
				case models.SyncFailed:
					fmt.Fprintln(out, stamp, warnStyle.Render("Sync failed: "+describeError(ev.Err)))
				}
			})
		},
	}
	cmd.Flags().DurationVar(&c.syncInterval, "interval", 0, "time between sync passes")

	return cmd
}

type entityCounts struct {
	bookmarks, folders, modified, deleted int
}

func countEntities(tree *bookmarks.Tree) entityCounts {
	var counts entityCounts
	for _, e := range tree.Entities() {
		switch {
		case e.PendingDeletion:
			counts.deleted++
			continue
		case e.IsModified():
			counts.modified++
		}
		if e.IsRoot() {
			continue
		}
		if e.IsFolder {
			counts.folders++
		} else {
			counts.bookmarks++
		}
	}
	return counts
}

func describeAccountState(state models.AccountState) string {
	if state == models.AccountPendingFirstSync {
		return warnStyle.Render("waiting for the first sync")
	}
	return successStyle.Render("active")
}

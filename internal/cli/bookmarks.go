package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/bookmark-sync/internal/service"
)

func (c *cli) treeCommand() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the bookmark tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := c.app.Services.BookmarksService.Tree(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTree(tree, showIDs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "show the uuid of every entry")

	return cmd
}

func (c *cli) addCommand() *cobra.Command {
	var title, parent string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.app.Services.BookmarksService.AddBookmark(cmd.Context(), parent, title, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Added "+id))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title, defaults to the address")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "uuid of the target folder")

	return cmd
}

func (c *cli) mkdirCommand() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "mkdir <title>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.app.Services.BookmarksService.AddFolder(cmd.Context(), parent, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Created "+id))
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "uuid of the target folder")

	return cmd
}

func (c *cli) renameCommand() *cobra.Command {
	var title, url string

	cmd := &cobra.Command{
		Use:   "rename <uuid>",
		Short: "Change the title or the address of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("title") && !flags.Changed("url") {
				return fmt.Errorf("%w: set --title or --url", service.ErrInvalidDataProvided)
			}

			svc := c.app.Services.BookmarksService
			if flags.Changed("title") {
				if err := svc.Rename(cmd.Context(), args[0], title); err != nil {
					return err
				}
			}
			if flags.Changed("url") {
				if err := svc.SetURL(cmd.Context(), args[0], url); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Updated "+args[0]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&url, "url", "u", "", "new address")

	return cmd
}

func (c *cli) moveCommand() *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:     "mv <uuid> <folder>",
		Aliases: []string{"move"},
		Short:   "Move an entry into a folder",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Services.BookmarksService.Move(cmd.Context(), args[0], args[1], index); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Moved "+args[0]))
			return nil
		},
	}
	cmd.Flags().IntVarP(&index, "index", "i", -1, "position in the folder, negative appends")

	return cmd
}

func (c *cli) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <uuid>",
		Short: "Delete an entry and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Services.BookmarksService.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Deleted "+args[0]))
			return nil
		},
	}
}

func (c *cli) favCommand() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "fav <uuid>",
		Short: "Add a bookmark to the favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Services.BookmarksService.SetFavorite(cmd.Context(), args[0], !off); err != nil {
				return err
			}
			msg := "Added to favorites"
			if off {
				msg = "Removed from favorites"
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(msg))
			return nil
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "remove from the favorites instead")

	return cmd
}

func (c *cli) importCommand() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a browser bookmark export (Netscape HTML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := c.app.Services.BookmarksService.Import(cmd.Context(), parent, f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Imported %d entries.", n)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "uuid of the target folder")

	return cmd
}

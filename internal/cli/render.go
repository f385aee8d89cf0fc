package cli

import (
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/models"
)

// renderTree draws the bookmark root followed by the favorites list.
// Entries waiting for a confirmed delete are hidden.
func renderTree(t *bookmarks.Tree, showIDs bool) string {
	root := renderFolder(t, models.RootFolderID, "Bookmarks", showIDs)

	favorites := tree.Root(favStyle.Render("★ Favorites"))
	for _, id := range t.Favorites() {
		if e, ok := t.Get(id); ok && !e.PendingDeletion {
			favorites.Child(entryLabel(e, false, showIDs))
		}
	}

	return root.String() + "\n" + favorites.String()
}

func renderFolder(t *bookmarks.Tree, uuid, title string, showIDs bool) *tree.Tree {
	node := tree.Root(folderStyle.Render(title))
	e, ok := t.Get(uuid)
	if !ok {
		return node
	}

	for _, id := range e.Children {
		child, ok := t.Get(id)
		if !ok || child.PendingDeletion {
			continue
		}
		if child.IsFolder {
			sub := renderFolder(t, id, child.Title, showIDs)
			if showIDs {
				sub.Root(folderStyle.Render(child.Title) + " " + helpStyle.Render(id))
			}
			node.Child(sub)
			continue
		}
		node.Child(entryLabel(child, t.IsFavorite(id), showIDs))
	}
	return node
}

func entryLabel(e *bookmarks.Entity, favorite, showIDs bool) string {
	label := e.Title
	if favorite {
		label = favStyle.Render("★ ") + label
	}
	label += " " + urlStyle.Render(e.URL)
	if e.IsModified() {
		label += " " + warnStyle.Render("*")
	}
	if showIDs {
		label += " " + helpStyle.Render(e.UUID)
	}
	return label
}

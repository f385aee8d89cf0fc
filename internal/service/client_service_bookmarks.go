package service

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/importer"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/internal/utils"
	"github.com/MKhiriev/bookmark-sync/models"
)

type clientBookmarksService struct {
	trees store.LocalTreeRepository
	ids   *utils.UUIDGenerator
	now   func() time.Time
}

func NewClientBookmarksService(localStore *store.ClientStorages) ClientBookmarksService {
	return &clientBookmarksService{
		trees: localStore.TreeRepository,
		ids:   utils.NewUUIDGenerator(),
		now:   time.Now,
	}
}

func (b *clientBookmarksService) Tree(ctx context.Context) (*bookmarks.Tree, error) {
	return b.trees.LoadTree(ctx)
}

func (b *clientBookmarksService) AddBookmark(ctx context.Context, parent, title, url string) (string, error) {
	title, url = strings.TrimSpace(title), strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("%w: bookmark needs an address", ErrInvalidDataProvided)
	}
	if title == "" {
		title = url
	}
	return b.add(ctx, parent, &bookmarks.Entity{Title: title, URL: url})
}

func (b *clientBookmarksService) AddFolder(ctx context.Context, parent, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: folder needs a title", ErrInvalidDataProvided)
	}
	return b.add(ctx, parent, &bookmarks.Entity{Title: title, IsFolder: true})
}

func (b *clientBookmarksService) add(ctx context.Context, parent string, e *bookmarks.Entity) (string, error) {
	log := logger.FromContext(ctx)

	if parent == "" {
		parent = models.RootFolderID
	}
	e.UUID = b.ids.Generate()

	err := b.trees.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := requireLive(tree, parent); err != nil {
			return err
		}
		at := b.now()
		e.MarkModified(at)
		if err := tree.Add(e, parent); err != nil {
			return err
		}
		touch(tree, at, parent)
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "clientBookmarksService.add").Str("parent", parent).Msg("failed to add entity")
		return "", err
	}
	return e.UUID, nil
}

func (b *clientBookmarksService) Rename(ctx context.Context, uuid, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidDataProvided)
	}
	return b.edit(ctx, uuid, func(e *bookmarks.Entity) error {
		e.Title = title
		return nil
	})
}

func (b *clientBookmarksService) SetURL(ctx context.Context, uuid, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidDataProvided)
	}
	return b.edit(ctx, uuid, func(e *bookmarks.Entity) error {
		if e.IsFolder {
			return fmt.Errorf("%w: folders have no address", bookmarks.ErrInvalidEntity)
		}
		e.URL = url
		return nil
	})
}

func (b *clientBookmarksService) edit(ctx context.Context, uuid string, fn func(e *bookmarks.Entity) error) error {
	return b.trees.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := requireLive(tree, uuid); err != nil {
			return err
		}
		e, _ := tree.Get(uuid)
		if e.IsRoot() {
			return fmt.Errorf("%w: %s", bookmarks.ErrRootImmutable, uuid)
		}
		if err := fn(e); err != nil {
			return err
		}
		touch(tree, b.now(), uuid)
		return nil
	})
}

func (b *clientBookmarksService) Move(ctx context.Context, uuid, parent string, index int) error {
	if parent == "" {
		parent = models.RootFolderID
	}
	return b.trees.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := requireLive(tree, uuid); err != nil {
			return err
		}
		if err := requireLive(tree, parent); err != nil {
			return err
		}
		e, _ := tree.Get(uuid)
		from := e.Parent
		if err := tree.Move(uuid, parent, index); err != nil {
			return err
		}
		touch(tree, b.now(), uuid, from, parent)
		return nil
	})
}

func (b *clientBookmarksService) Delete(ctx context.Context, uuid string) error {
	log := logger.FromContext(ctx)

	var removed, pending int
	err := b.trees.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := requireLive(tree, uuid); err != nil {
			return err
		}
		e, _ := tree.Get(uuid)
		if e.IsRoot() {
			return fmt.Errorf("%w: %s", bookmarks.ErrRootImmutable, uuid)
		}

		at := b.now()
		touch(tree, at, e.Parent)

		subtree := append([]string{uuid}, tree.Descendants(uuid)...)
		slices.Reverse(subtree)
		for _, id := range subtree {
			d, ok := tree.Get(id)
			if !ok {
				continue
			}
			if tree.RemoveFavorite(id) {
				touch(tree, at, models.FavoritesFolderID)
			}
			if !d.Synced {
				if err := tree.Remove(id); err != nil {
					return err
				}
				removed++
				continue
			}
			d.PendingDeletion = true
			d.MarkModified(at)
			tree.MarkDirty(id)
			pending++
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "clientBookmarksService.Delete").Str("uuid", uuid).Msg("failed to delete entity")
		return err
	}

	log.Debug().Str("func", "clientBookmarksService.Delete").
		Str("uuid", uuid).
		Int("removed", removed).
		Int("pending", pending).
		Msg("subtree deleted")
	return nil
}

func (b *clientBookmarksService) SetFavorite(ctx context.Context, uuid string, favorite bool) error {
	return b.trees.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := requireLive(tree, uuid); err != nil {
			return err
		}
		if favorite == tree.IsFavorite(uuid) {
			return nil
		}
		if favorite {
			if err := tree.AppendFavorite(uuid); err != nil {
				return err
			}
		} else {
			tree.RemoveFavorite(uuid)
		}
		touch(tree, b.now(), uuid, models.FavoritesFolderID)
		return nil
	})
}

func (b *clientBookmarksService) Import(ctx context.Context, parent string, r io.Reader) (int, error) {
	log := logger.FromContext(ctx)

	nodes, err := importer.ParseNetscape(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if parent == "" {
		parent = models.RootFolderID
	}

	created := 0
	err = b.trees.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		created = 0
		if err := requireLive(tree, parent); err != nil {
			return err
		}
		at := b.now()

		type pendingNode struct {
			node   *importer.Node
			parent string
		}
		queue := make([]pendingNode, 0, len(nodes))
		for _, n := range nodes {
			queue = append(queue, pendingNode{node: n, parent: parent})
		}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			e := &bookmarks.Entity{
				UUID:     b.ids.Generate(),
				IsFolder: cur.node.IsFolder,
				Title:    cur.node.Title,
				URL:      cur.node.URL,
			}
			e.MarkModified(at)
			if err := tree.Add(e, cur.parent); err != nil {
				return err
			}
			created++
			for _, c := range cur.node.Children {
				queue = append(queue, pendingNode{node: c, parent: e.UUID})
			}
		}
		touch(tree, at, parent)
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "clientBookmarksService.Import").Str("parent", parent).Msg("import rolled back")
		return 0, err
	}

	log.Info().Str("func", "clientBookmarksService.Import").Int("created", created).Msg("bookmarks imported")
	return created, nil
}

// requireLive fails for missing entities and for entities pending deletion.
func requireLive(tree *bookmarks.Tree, uuid string) error {
	e, ok := tree.Get(uuid)
	if !ok || e.PendingDeletion {
		return fmt.Errorf("%w: %s", bookmarks.ErrNotFound, uuid)
	}
	return nil
}

// touch sets the modified marker of every existing entity among uuids.
func touch(tree *bookmarks.Tree, at time.Time, uuids ...string) {
	for _, uuid := range uuids {
		if e, ok := tree.Get(uuid); ok && !e.PendingDeletion {
			e.MarkModified(at)
			tree.MarkDirty(uuid)
		}
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package bookmarks holds the in-memory bookmark tree the sync engine works
// on.
//
// The tree is an arena: every [Entity] is addressed by its uuid and the
// parent/children relations are stored as uuid references, so the structure
// has no ownership cycles and can be loaded from and written back to the
// local store inside one transaction. The tree records which entities were
// touched so the store only rewrites what changed.
package bookmarks

import (
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/bookmark-sync/models"
)

// Entity is the local, mutable counterpart of a [models.Syncable].
type Entity struct {
	UUID     string
	IsFolder bool
	Title    string
	URL      string

	// Parent is the uuid of the owning folder. Empty for the roots and for
	// orphans.
	Parent string

	// Children is the ordered list of child uuids of a folder.
	Children []string

	// ModifiedAt is the local-edit marker. Nil means nothing to send.
	ModifiedAt *time.Time

	// PendingDeletion marks a local delete awaiting confirmation.
	PendingDeletion bool

	// Synced is set once the server has acknowledged the uuid. Entities that
	// were never synced are hard-deleted right away on local delete.
	Synced bool

	// ReplacedBy is set on a tombstone left by deduplication and names the
	// entity that took its place.
	ReplacedBy string
}

// IsRoot reports whether e is one of the two well-known folders.
func (e *Entity) IsRoot() bool {
	return IsRootID(e.UUID)
}

// IsModified reports whether e carries a pending local change.
func (e *Entity) IsModified() bool {
	return e.ModifiedAt != nil || e.PendingDeletion
}

// MarkModified sets the local-edit marker.
func (e *Entity) MarkModified(at time.Time) {
	ts := at.UTC()
	e.ModifiedAt = &ts
}

// ModifiedAfter reports whether e was edited after ts.
func (e *Entity) ModifiedAfter(ts time.Time) bool {
	return e.ModifiedAt != nil && e.ModifiedAt.After(ts)
}

// IsRootID reports whether uuid names one of the two well-known folders.
func IsRootID(uuid string) bool {
	return uuid == models.RootFolderID || uuid == models.FavoritesFolderID
}

// Tree is the arena of bookmark entities plus the favorites ordering.
type Tree struct {
	entities  map[string]*Entity
	favorites []string

	dirty            map[string]struct{}
	removed          map[string]struct{}
	favoritesChanged bool
}

// NewTree returns a tree holding only the two well-known folders.
func NewTree() *Tree {
	t := newTree()
	t.ensureRoots()
	return t
}

// Restore rebuilds a tree from persisted entities. Entities must come ordered
// by parent and position; each one is appended to its parent's children in
// that order. Entities whose parent is unknown stay orphans. The returned
// tree reports no pending changes except missing roots it had to create.
func Restore(entities []Entity, favorites []string) *Tree {
	t := newTree()
	for i := range entities {
		e := entities[i]
		e.Children = nil
		t.entities[e.UUID] = &e
	}
	for i := range entities {
		e := t.entities[entities[i].UUID]
		if e.Parent == "" {
			continue
		}
		if parent, ok := t.entities[e.Parent]; ok && parent.IsFolder {
			parent.Children = append(parent.Children, e.UUID)
		}
	}
	for _, uuid := range favorites {
		if e, ok := t.entities[uuid]; ok && !e.IsFolder && !slices.Contains(t.favorites, uuid) {
			t.favorites = append(t.favorites, uuid)
		}
	}
	t.ensureRoots()
	return t
}

func newTree() *Tree {
	return &Tree{
		entities: make(map[string]*Entity),
		dirty:    make(map[string]struct{}),
		removed:  make(map[string]struct{}),
	}
}

func (t *Tree) ensureRoots() {
	for _, id := range []string{models.RootFolderID, models.FavoritesFolderID} {
		if _, ok := t.entities[id]; ok {
			continue
		}
		title := "Bookmarks"
		if id == models.FavoritesFolderID {
			title = "Favorites"
		}
		t.entities[id] = &Entity{UUID: id, IsFolder: true, Title: title}
		t.dirty[id] = struct{}{}
	}
}

// Len returns the number of entities including the roots.
func (t *Tree) Len() int {
	return len(t.entities)
}

// Get returns the entity with the given uuid.
func (t *Tree) Get(uuid string) (*Entity, bool) {
	e, ok := t.entities[uuid]
	return e, ok
}

// Has reports whether uuid is present.
func (t *Tree) Has(uuid string) bool {
	_, ok := t.entities[uuid]
	return ok
}

// Entities returns every entity ordered by uuid.
func (t *Tree) Entities() []*Entity {
	out := make([]*Entity, 0, len(t.entities))
	for _, e := range t.entities {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *Entity) int {
		switch {
		case a.UUID < b.UUID:
			return -1
		case a.UUID > b.UUID:
			return 1
		}
		return 0
	})
	return out
}

// Add inserts e as the last child of parent.
func (t *Tree) Add(e *Entity, parent string) error {
	return t.Insert(e, parent, -1)
}

// Insert inserts e into parent at index. A negative or out of range index
// appends.
func (t *Tree) Insert(e *Entity, parent string, index int) error {
	if e.UUID == "" {
		return fmt.Errorf("%w: empty uuid", ErrInvalidEntity)
	}
	if _, exists := t.entities[e.UUID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateUUID, e.UUID)
	}
	p, err := t.folder(parent)
	if err != nil {
		return err
	}
	if parent == models.FavoritesFolderID {
		return fmt.Errorf("%w: favorites folder holds no entities", ErrNotAFolder)
	}

	e.Parent = parent
	e.Children = nil
	t.entities[e.UUID] = e
	delete(t.removed, e.UUID)
	p.Children = insertAt(p.Children, e.UUID, index)
	t.touchChildren(p)
	t.MarkDirty(e.UUID)
	return nil
}

// Move re-homes uuid under parent at index (negative appends).
func (t *Tree) Move(uuid, parent string, index int) error {
	e, ok := t.entities[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if e.IsRoot() {
		return fmt.Errorf("%w: %s", ErrRootImmutable, uuid)
	}
	p, err := t.folder(parent)
	if err != nil {
		return err
	}
	if parent == models.FavoritesFolderID {
		return fmt.Errorf("%w: favorites folder holds no entities", ErrNotAFolder)
	}
	if e.IsFolder && t.isDescendant(parent, uuid) {
		return fmt.Errorf("%w: %s into %s", ErrCycle, uuid, parent)
	}

	t.detach(e)
	e.Parent = parent
	p.Children = insertAt(p.Children, uuid, index)
	t.touchChildren(p)
	t.MarkDirty(uuid)
	return nil
}

// Remove hard-deletes uuid. Its children are not removed: they become
// orphans until they are deleted or re-homed themselves.
func (t *Tree) Remove(uuid string) error {
	e, ok := t.entities[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if e.IsRoot() {
		return fmt.Errorf("%w: %s", ErrRootImmutable, uuid)
	}

	t.detach(e)
	for _, child := range e.Children {
		if c, ok := t.entities[child]; ok && c.Parent == uuid {
			c.Parent = ""
			t.MarkDirty(child)
		}
	}
	t.RemoveFavorite(uuid)
	delete(t.entities, uuid)
	delete(t.dirty, uuid)
	t.removed[uuid] = struct{}{}
	return nil
}

// Rekey gives the entity oldUUID the identity newUUID, keeping its place in
// the folder tree and in the favorites list.
func (t *Tree) Rekey(oldUUID, newUUID string) error {
	e, ok := t.entities[oldUUID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, oldUUID)
	}
	if e.IsRoot() || IsRootID(newUUID) {
		return fmt.Errorf("%w: %s", ErrRootImmutable, oldUUID)
	}
	if _, exists := t.entities[newUUID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateUUID, newUUID)
	}

	if p, ok := t.entities[e.Parent]; ok {
		if i := slices.Index(p.Children, oldUUID); i >= 0 {
			p.Children[i] = newUUID
		}
	}
	for _, child := range e.Children {
		if c, ok := t.entities[child]; ok && c.Parent == oldUUID {
			c.Parent = newUUID
			t.MarkDirty(child)
		}
	}
	if i := slices.Index(t.favorites, oldUUID); i >= 0 {
		t.favorites[i] = newUUID
		t.favoritesChanged = true
	}

	delete(t.entities, oldUUID)
	delete(t.dirty, oldUUID)
	t.removed[oldUUID] = struct{}{}

	e.UUID = newUUID
	t.entities[newUUID] = e
	delete(t.removed, newUUID)
	t.MarkDirty(newUUID)
	return nil
}

// SetChildrenOrder reorders the children of folder. Entries of order that are
// children of folder come first in the given order; remaining children keep
// their relative order after them.
func (t *Tree) SetChildrenOrder(folder string, order []string) error {
	p, err := t.folder(folder)
	if err != nil {
		return err
	}

	next := make([]string, 0, len(p.Children))
	seen := make(map[string]struct{}, len(p.Children))
	for _, uuid := range order {
		if _, dup := seen[uuid]; dup {
			continue
		}
		if c, ok := t.entities[uuid]; ok && c.Parent == folder && slices.Contains(p.Children, uuid) {
			next = append(next, uuid)
			seen[uuid] = struct{}{}
		}
	}
	for _, uuid := range p.Children {
		if _, ok := seen[uuid]; !ok {
			next = append(next, uuid)
		}
	}

	if !slices.Equal(next, p.Children) {
		p.Children = next
		t.touchChildren(p)
	}
	return nil
}

// Position returns the index of uuid inside its parent, or -1 for roots and
// orphans.
func (t *Tree) Position(uuid string) int {
	e, ok := t.entities[uuid]
	if !ok {
		return -1
	}
	p, ok := t.entities[e.Parent]
	if !ok {
		return -1
	}
	return slices.Index(p.Children, uuid)
}

// NextSibling returns the uuid following uuid inside its parent.
func (t *Tree) NextSibling(uuid string) (string, bool) {
	e, ok := t.entities[uuid]
	if !ok {
		return "", false
	}
	p, ok := t.entities[e.Parent]
	if !ok {
		return "", false
	}
	i := slices.Index(p.Children, uuid)
	if i < 0 || i+1 >= len(p.Children) {
		return "", false
	}
	return p.Children[i+1], true
}

// Descendants returns the uuids below uuid in depth-first pre-order.
func (t *Tree) Descendants(uuid string) []string {
	var out []string
	t.Walk(uuid, func(e *Entity, depth int) bool {
		if depth > 0 {
			out = append(out, e.UUID)
		}
		return true
	})
	return out
}

// Walk visits uuid and its subtree depth-first in children order. Returning
// false from fn skips the subtree of the visited entity.
func (t *Tree) Walk(uuid string, fn func(e *Entity, depth int) bool) {
	type frame struct {
		uuid  string
		depth int
	}
	stack := []frame{{uuid: uuid}}
	seen := make(map[string]struct{})
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		e, ok := t.entities[cur.uuid]
		if !ok {
			continue
		}
		if _, dup := seen[cur.uuid]; dup {
			continue
		}
		seen[cur.uuid] = struct{}{}
		if !fn(e, cur.depth) {
			continue
		}
		for i := len(e.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{uuid: e.Children[i], depth: cur.depth + 1})
		}
	}
}

// Orphans returns, ordered by uuid, the non-root entities whose parent cannot
// be resolved to a folder that lists them.
func (t *Tree) Orphans() []string {
	var out []string
	for uuid, e := range t.entities {
		if e.IsRoot() {
			continue
		}
		p, ok := t.entities[e.Parent]
		if !ok || !p.IsFolder || !slices.Contains(p.Children, uuid) {
			out = append(out, uuid)
		}
	}
	slices.Sort(out)
	return out
}

// MarkDirty records that uuid must be written back to the store.
func (t *Tree) MarkDirty(uuid string) {
	if _, ok := t.entities[uuid]; ok {
		t.dirty[uuid] = struct{}{}
	}
}

// Changes returns the entities to upsert (ordered by uuid), the uuids to
// delete and whether the favorites ordering must be rewritten.
func (t *Tree) Changes() (upserts []*Entity, removed []string, favoritesChanged bool) {
	for uuid := range t.dirty {
		if e, ok := t.entities[uuid]; ok {
			upserts = append(upserts, e)
		}
	}
	slices.SortFunc(upserts, func(a, b *Entity) int {
		switch {
		case a.UUID < b.UUID:
			return -1
		case a.UUID > b.UUID:
			return 1
		}
		return 0
	})
	for uuid := range t.removed {
		removed = append(removed, uuid)
	}
	slices.Sort(removed)
	return upserts, removed, t.favoritesChanged
}

// HasChanges reports whether anything must be written back.
func (t *Tree) HasChanges() bool {
	return len(t.dirty) > 0 || len(t.removed) > 0 || t.favoritesChanged
}

// ClearChanges forgets recorded changes after they were persisted.
func (t *Tree) ClearChanges() {
	t.dirty = make(map[string]struct{})
	t.removed = make(map[string]struct{})
	t.favoritesChanged = false
}

func (t *Tree) folder(uuid string) (*Entity, error) {
	p, ok := t.entities[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: folder %s", ErrNotFound, uuid)
	}
	if !p.IsFolder {
		return nil, fmt.Errorf("%w: %s", ErrNotAFolder, uuid)
	}
	return p, nil
}

func (t *Tree) detach(e *Entity) {
	p, ok := t.entities[e.Parent]
	if !ok {
		return
	}
	if i := slices.Index(p.Children, e.UUID); i >= 0 {
		p.Children = slices.Delete(p.Children, i, i+1)
		t.touchChildren(p)
	}
}

// touchChildren marks every child of p dirty because their positions may
// have shifted.
func (t *Tree) touchChildren(p *Entity) {
	t.MarkDirty(p.UUID)
	for _, c := range p.Children {
		t.MarkDirty(c)
	}
}

// isDescendant reports whether candidate lies in the subtree of ancestor
// (ancestor itself included).
func (t *Tree) isDescendant(candidate, ancestor string) bool {
	seen := make(map[string]struct{})
	for cur := candidate; cur != ""; {
		if cur == ancestor {
			return true
		}
		if _, loop := seen[cur]; loop {
			return true
		}
		seen[cur] = struct{}{}
		e, ok := t.entities[cur]
		if !ok {
			return false
		}
		cur = e.Parent
	}
	return false
}

func insertAt(list []string, uuid string, index int) []string {
	if index < 0 || index >= len(list) {
		return append(list, uuid)
	}
	return slices.Insert(list, index, uuid)
}

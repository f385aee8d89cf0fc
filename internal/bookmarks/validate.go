package bookmarks

import (
	"fmt"
	"slices"
	"time"
)

// Validate checks the arena invariants that must hold whenever the tree is
// written back: every listed child exists, names the listing folder as its
// parent and is listed only once, and every entity with a resolvable parent
// is listed by it. Orphans, whose parent is missing, are allowed.
func (t *Tree) Validate() error {
	owner := make(map[string]string, len(t.entities))
	for _, uuid := range t.sortedUUIDs() {
		p := t.entities[uuid]
		if len(p.Children) > 0 && !p.IsFolder {
			return fmt.Errorf("%w: bookmark %s has children", ErrBrokenTree, uuid)
		}
		for _, child := range p.Children {
			c, ok := t.entities[child]
			if !ok {
				return fmt.Errorf("%w: %s lists unknown child %s", ErrBrokenTree, uuid, child)
			}
			if prev, dup := owner[child]; dup {
				return fmt.Errorf("%w: %s is listed by %s and %s", ErrBrokenTree, child, prev, uuid)
			}
			if c.Parent != uuid {
				return fmt.Errorf("%w: %s is listed by %s but points to %q", ErrBrokenTree, child, uuid, c.Parent)
			}
			owner[child] = uuid
		}
	}
	for uuid, e := range t.entities {
		if e.IsRoot() {
			if e.Parent != "" {
				return fmt.Errorf("%w: well-known folder %s has a parent", ErrBrokenTree, uuid)
			}
			continue
		}
		if _, ok := t.entities[e.Parent]; ok && owner[uuid] != e.Parent {
			return fmt.Errorf("%w: %s is not listed by its parent %s", ErrBrokenTree, uuid, e.Parent)
		}
	}
	return nil
}

// AddTombstone records a detached deletion for uuid so the delete reaches the
// server on the next pass. It is a no-op when uuid is already present.
func (t *Tree) AddTombstone(uuid string, at time.Time) {
	if uuid == "" || IsRootID(uuid) || t.Has(uuid) {
		return
	}
	e := &Entity{UUID: uuid, PendingDeletion: true, Synced: true}
	e.MarkModified(at)
	t.entities[uuid] = e
	delete(t.removed, uuid)
	t.MarkDirty(uuid)
}

// AddReplacement records uuid as a tombstone superseded by replacement.
// References to uuid in later deltas resolve to replacement through
// [Tree.Replacement]. It is a no-op when uuid is already present.
func (t *Tree) AddReplacement(uuid, replacement string, at time.Time) {
	if t.Has(uuid) || uuid == replacement {
		return
	}
	t.AddTombstone(uuid, at)
	if e, ok := t.entities[uuid]; ok {
		e.ReplacedBy = replacement
	}
}

// Replacement returns the entity that superseded the tombstone uuid.
func (t *Tree) Replacement(uuid string) (*Entity, bool) {
	e, ok := t.entities[uuid]
	if !ok || !e.PendingDeletion || e.ReplacedBy == "" {
		return nil, false
	}
	r, ok := t.entities[e.ReplacedBy]
	if !ok || r.PendingDeletion {
		return nil, false
	}
	return r, true
}

// Detach clears the parent of uuid, leaving it an orphan.
func (t *Tree) Detach(uuid string) error {
	e, ok := t.entities[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if e.IsRoot() {
		return fmt.Errorf("%w: %s", ErrRootImmutable, uuid)
	}
	t.detach(e)
	e.Parent = ""
	t.MarkDirty(uuid)
	return nil
}

func (t *Tree) sortedUUIDs() []string {
	out := make([]string, 0, len(t.entities))
	for uuid := range t.entities {
		out = append(out, uuid)
	}
	slices.Sort(out)
	return out
}

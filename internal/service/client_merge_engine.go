package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
)

// IntegrityViolation describes a received record the tree could not place.
type IntegrityViolation struct {
	UUID   string
	Parent string
	Reason string
}

func (v IntegrityViolation) Error() string {
	if v.Parent == "" {
		return fmt.Sprintf("%s: %s", v.UUID, v.Reason)
	}
	return fmt.Sprintf("%s (parent %s): %s", v.UUID, v.Parent, v.Reason)
}

// MergeReport summarizes one merge of a received delta.
type MergeReport struct {
	Updated      []string
	Created      []string
	Deduplicated []string
	Deleted      []string

	// Skipped lists records that could not be decrypted. They are applied
	// when a later delta repeats them.
	Skipped []string

	Violations []IntegrityViolation
}

// Err joins the integrity violations of the report, each wrapped with
// [ErrIntegrityViolation]. It is nil for a clean merge.
func (r MergeReport) Err() error {
	if len(r.Violations) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Violations))
	for _, v := range r.Violations {
		errs = append(errs, fmt.Errorf("%w: %w", ErrIntegrityViolation, v))
	}
	return errors.Join(errs...)
}

// MergeEngine applies received deltas to the local tree. The result does not
// depend on the order of the received records.
type MergeEngine struct {
	crypter crypto.Crypter
	now     func() time.Time
}

func NewMergeEngine(crypter crypto.Crypter) *MergeEngine {
	return &MergeEngine{
		crypter: crypter,
		now:     time.Now,
	}
}

// Merge applies received to tree in place. Remote fields win over local ones.
// Records that cannot be decrypted are skipped and records that cannot be
// attached to a folder are reported as violations; neither stops the merge.
func (m *MergeEngine) Merge(ctx context.Context, tree *bookmarks.Tree, received []models.Syncable) MergeReport {
	p := &mergePass{
		tree:     tree,
		crypter:  m.crypter,
		now:      m.now().UTC(),
		received: make(map[string]models.Syncable, len(received)),
		assigned: make(map[string]string),
		matched:  make(map[string]struct{}),
		alias:    make(map[string]string),
		skipped:  make(map[string]struct{}),
		violated: make(map[string]struct{}),
	}

	for _, rec := range received {
		if rec.UUID == "" {
			continue
		}
		p.received[rec.UUID] = rec
	}
	p.order = make([]string, 0, len(p.received))
	for uuid := range p.received {
		p.order = append(p.order, uuid)
	}
	slices.Sort(p.order)

	p.applyExisting()
	p.traverse(p.traversalRoots())
	p.attachMissing()
	p.reconcileFavorites()
	p.rehome()
	p.reorder()
	p.reportOrphans()

	log := logger.FromContext(ctx)
	for _, v := range p.report.Violations {
		log.Warn().Str("func", "MergeEngine.Merge").
			Str("uuid", v.UUID).
			Str("parent", v.Parent).
			Msg(v.Reason)
	}
	log.Debug().Str("func", "MergeEngine.Merge").
		Int("received", len(p.received)).
		Int("updated", len(p.report.Updated)).
		Int("created", len(p.report.Created)).
		Int("deduplicated", len(p.report.Deduplicated)).
		Int("deleted", len(p.report.Deleted)).
		Int("skipped", len(p.report.Skipped)).
		Int("violations", len(p.report.Violations)).
		Msg("delta merged")

	return p.report
}

type frame struct {
	children []string
	parent   string
}

type mergePass struct {
	tree    *bookmarks.Tree
	crypter crypto.Crypter
	now     time.Time

	received map[string]models.Syncable
	order    []string

	// assigned maps a record to the folder the traversal placed it under.
	assigned map[string]string
	// matched holds local entities already consumed by deduplication.
	matched map[string]struct{}
	// alias maps an incoming uuid to the local entity that replaced it.
	alias map[string]string

	skipped  map[string]struct{}
	violated map[string]struct{}

	report MergeReport
}

// applyExisting writes received fields into entities the tree already holds
// and applies received tombstones.
func (p *mergePass) applyExisting() {
	for _, uuid := range p.order {
		rec := p.received[uuid]
		e, ok := p.tree.Get(uuid)
		if !ok {
			continue
		}

		if rec.IsDeleted() {
			if e.IsRoot() {
				continue
			}
			if err := p.tree.Remove(uuid); err == nil {
				p.report.Deleted = append(p.report.Deleted, uuid)
			}
			continue
		}

		// A local delete still waiting for confirmation wins.
		if e.PendingDeletion {
			continue
		}

		if err := applyToEntity(rec, e, p.crypter); err != nil {
			p.skip(uuid)
			continue
		}
		p.confirm(e)
		p.report.Updated = append(p.report.Updated, uuid)
	}
}

// traversalRoots picks where the folder traversal starts: the root folder
// when it was received, otherwise every received folder that no received
// record contains.
func (p *mergePass) traversalRoots() []frame {
	if rec, ok := p.received[models.RootFolderID]; ok && !rec.IsDeleted() {
		return []frame{{children: rec.Children, parent: models.RootFolderID}}
	}

	listed := make(map[string]struct{})
	for _, uuid := range p.order {
		rec := p.received[uuid]
		if rec.IsFolder && !rec.IsDeleted() {
			for _, child := range rec.Children {
				listed[child] = struct{}{}
			}
		}
	}

	var roots []frame
	for _, uuid := range p.order {
		rec := p.received[uuid]
		if !rec.IsFolder || rec.IsDeleted() || uuid == models.FavoritesFolderID {
			continue
		}
		if _, ok := listed[uuid]; ok {
			continue
		}
		if _, ok := p.received[rec.Parent()]; ok {
			continue
		}

		e, ok := p.tree.Get(uuid)
		if !ok {
			parent := rec.Parent()
			if !p.isFolder(parent) {
				p.violate(uuid, parent, "parent folder not found")
				continue
			}
			p.assigned[uuid] = parent
			if e = p.place(rec, parent); e == nil {
				continue
			}
		}
		if e.PendingDeletion {
			r, ok := p.tree.Replacement(uuid)
			if !ok {
				continue
			}
			e = r
		}
		if !e.IsFolder {
			continue
		}
		roots = append(roots, frame{children: rec.Children, parent: e.UUID})
	}
	return roots
}

// traverse walks received children lists with an explicit stack. Each
// children list is processed last-to-first.
func (p *mergePass) traverse(stack []frame) {
	slices.Reverse(stack)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := len(f.children) - 1; i >= 0; i-- {
			uuid := f.children[i]
			if _, done := p.assigned[uuid]; done {
				continue
			}
			rec, ok := p.received[uuid]
			if !ok || rec.IsDeleted() || bookmarks.IsRootID(uuid) {
				continue
			}

			p.assigned[uuid] = f.parent
			e := p.place(rec, f.parent)
			if e == nil || !e.IsFolder || len(rec.Children) == 0 {
				continue
			}
			stack = append(stack, frame{children: rec.Children, parent: e.UUID})
		}
	}
}

// place resolves rec to a local entity under parent: the entity with the
// same uuid or the one that replaced it, an equivalent unsynced sibling, or a
// newly created entity.
func (p *mergePass) place(rec models.Syncable, parent string) *bookmarks.Entity {
	if e, ok := p.tree.Get(rec.UUID); ok {
		if !e.PendingDeletion {
			return e
		}
		// A uuid dropped by an earlier deduplication keeps resolving to the
		// entity that replaced it.
		if r, ok := p.tree.Replacement(rec.UUID); ok && r.Parent == parent {
			p.matched[r.UUID] = struct{}{}
			p.keepLocal(r, parent)
			return r
		}
		return nil
	}
	if _, ok := p.skipped[rec.UUID]; ok {
		return nil
	}

	title, url, err := decodeFields(rec, p.crypter)
	if err != nil {
		p.skip(rec.UUID)
		return nil
	}

	if e := p.dedup(rec, parent, title, url); e != nil {
		return e
	}

	e := &bookmarks.Entity{
		UUID:     rec.UUID,
		IsFolder: rec.IsFolder,
		Title:    title,
		URL:      url,
		Synced:   true,
	}
	if err := p.tree.Add(e, parent); err != nil {
		p.violate(rec.UUID, parent, err.Error())
		return nil
	}
	p.report.Created = append(p.report.Created, rec.UUID)
	return e
}

// dedup looks for a local entity under parent that describes the same
// bookmark as rec but was never synced. Both sides converge on the smaller
// uuid: the other one becomes a tombstone.
func (p *mergePass) dedup(rec models.Syncable, parent, title, url string) *bookmarks.Entity {
	pe, ok := p.tree.Get(parent)
	if !ok {
		return nil
	}

	for _, cid := range slices.Clone(pe.Children) {
		if _, ok := p.received[cid]; ok {
			continue
		}
		if _, ok := p.matched[cid]; ok {
			continue
		}
		c, ok := p.tree.Get(cid)
		if !ok || c.PendingDeletion || c.Synced || c.IsRoot() {
			continue
		}
		if !bookmarks.Equivalent(c, rec.IsFolder, title, url) {
			continue
		}

		if rec.UUID < cid {
			if err := p.tree.Rekey(cid, rec.UUID); err != nil {
				continue
			}
			p.tree.AddReplacement(cid, rec.UUID, p.now)
			c.Title, c.URL = title, url
			c.Synced = true
			if c.IsFolder && len(c.Children) > 0 {
				c.MarkModified(p.now)
			} else {
				c.ModifiedAt = nil
			}
			p.tree.MarkDirty(c.UUID)
			pe.MarkModified(p.now)
			p.tree.MarkDirty(parent)
		} else {
			p.tree.AddReplacement(rec.UUID, cid, p.now)
			p.alias[rec.UUID] = cid
			p.keepLocal(c, parent)
		}

		p.matched[c.UUID] = struct{}{}
		p.report.Deduplicated = append(p.report.Deduplicated, rec.UUID)
		return c
	}
	return nil
}

// attachMissing creates the received records the traversal never reached
// under their declared parent, repeating while it makes progress so a folder
// created late still picks up its children.
func (p *mergePass) attachMissing() {
	for progress := true; progress; {
		progress = false
		for _, uuid := range p.order {
			rec := p.received[uuid]
			if !p.pendingPlacement(rec) {
				continue
			}
			parent := p.resolve(rec.Parent())
			if !p.isFolder(parent) {
				continue
			}

			p.assigned[uuid] = parent
			e := p.place(rec, parent)
			if e == nil {
				continue
			}
			progress = true
			if e.IsFolder && len(rec.Children) > 0 {
				p.traverse([]frame{{children: rec.Children, parent: e.UUID}})
			}
		}
	}

	for _, uuid := range p.order {
		rec := p.received[uuid]
		if !p.pendingPlacement(rec) {
			continue
		}
		parent := rec.Parent()
		if _, ok := p.skipped[parent]; ok {
			p.skip(uuid)
			continue
		}
		p.violate(uuid, parent, "parent folder not found")
	}
}

// pendingPlacement reports whether rec describes a live entity that is still
// missing from the tree and was never handled.
func (p *mergePass) pendingPlacement(rec models.Syncable) bool {
	if rec.IsDeleted() || bookmarks.IsRootID(rec.UUID) || p.tree.Has(rec.UUID) {
		return false
	}
	if _, ok := p.assigned[rec.UUID]; ok {
		return false
	}
	if _, ok := p.skipped[rec.UUID]; ok {
		return false
	}
	_, ok := p.violated[rec.UUID]
	return !ok
}

// reconcileFavorites applies the received favorite flags and then rebuilds
// the favorites ordering from the received favorites folder, removing and
// re-appending every listed entry in order.
func (p *mergePass) reconcileFavorites() {
	for _, uuid := range p.order {
		rec := p.received[uuid]
		e, ok := p.live(uuid)
		if !ok || rec.IsDeleted() || e.IsFolder || e.IsRoot() {
			continue
		}
		switch {
		case rec.IsFavorite && !p.tree.IsFavorite(uuid):
			_ = p.tree.AppendFavorite(uuid)
		case !rec.IsFavorite && p.tree.IsFavorite(uuid):
			p.tree.RemoveFavorite(uuid)
		}
	}

	rec, ok := p.received[models.FavoritesFolderID]
	if !ok || rec.IsDeleted() {
		return
	}
	for _, child := range rec.Children {
		uuid := p.resolve(child)
		e, ok := p.live(uuid)
		if !ok || e.IsFolder {
			continue
		}
		p.tree.RemoveFavorite(uuid)
		_ = p.tree.AppendFavorite(uuid)
	}
}

// rehome moves every received entity under the folder the traversal assigned
// it to, or under its declared parent when the traversal never reached it.
func (p *mergePass) rehome() {
	for _, uuid := range p.order {
		rec := p.received[uuid]
		if rec.IsDeleted() || bookmarks.IsRootID(uuid) {
			continue
		}
		if _, ok := p.skipped[uuid]; ok {
			continue
		}
		if _, ok := p.violated[uuid]; ok {
			continue
		}
		e, ok := p.live(uuid)
		if !ok {
			continue
		}

		want, ok := p.assigned[uuid]
		if !ok {
			want = p.resolve(rec.Parent())
		}
		if want == "" {
			p.violate(uuid, "", "record has no parent")
			continue
		}
		if e.Parent == want {
			continue
		}
		if _, ok := p.skipped[want]; ok {
			continue
		}
		if !p.isFolder(want) {
			p.violate(uuid, want, "parent folder not found")
			continue
		}
		if err := p.tree.Move(uuid, want, -1); err != nil {
			p.violate(uuid, want, err.Error())
			continue
		}
		// The server still holds the old parent of an entity moved away
		// from its declared folder.
		if want != rec.Parent() {
			e.MarkModified(p.now)
		}
	}
}

// reorder applies the received children order of every received folder.
// The next_item pointers carry the same information and are not read.
func (p *mergePass) reorder() {
	for _, uuid := range p.order {
		rec := p.received[uuid]
		if rec.IsDeleted() || !rec.IsFolder || uuid == models.FavoritesFolderID {
			continue
		}
		e, ok := p.live(p.resolve(uuid))
		if !ok || !e.IsFolder {
			continue
		}
		order := make([]string, 0, len(rec.Children))
		for _, child := range rec.Children {
			order = append(order, p.resolve(child))
		}
		_ = p.tree.SetChildrenOrder(e.UUID, order)
	}
}

// reportOrphans reports every live entity left without a resolvable folder.
func (p *mergePass) reportOrphans() {
	for _, uuid := range p.tree.Orphans() {
		e, _ := p.tree.Get(uuid)
		if e.PendingDeletion {
			continue
		}
		if _, ok := p.violated[uuid]; ok {
			continue
		}
		p.violate(uuid, e.Parent, "entity has no resolvable parent folder")
	}
}

// keepLocal marks a local entity that won deduplication, and its folder, for
// sending so the server learns about the replacement.
func (p *mergePass) keepLocal(e *bookmarks.Entity, parent string) {
	e.MarkModified(p.now)
	p.tree.MarkDirty(e.UUID)
	if pe, ok := p.tree.Get(parent); ok {
		pe.MarkModified(p.now)
		p.tree.MarkDirty(parent)
	}
}

func (p *mergePass) confirm(e *bookmarks.Entity) {
	e.Synced = true
	e.ModifiedAt = nil
	e.PendingDeletion = false
	p.tree.MarkDirty(e.UUID)
}

func (p *mergePass) skip(uuid string) {
	if _, ok := p.skipped[uuid]; ok {
		return
	}
	p.skipped[uuid] = struct{}{}
	p.report.Skipped = append(p.report.Skipped, uuid)
}

func (p *mergePass) violate(uuid, parent, reason string) {
	if _, ok := p.violated[uuid]; ok {
		return
	}
	p.violated[uuid] = struct{}{}
	p.report.Violations = append(p.report.Violations, IntegrityViolation{UUID: uuid, Parent: parent, Reason: reason})
}

// live returns the entity for uuid unless it is pending deletion.
func (p *mergePass) live(uuid string) (*bookmarks.Entity, bool) {
	e, ok := p.tree.Get(uuid)
	if !ok || e.PendingDeletion {
		return nil, false
	}
	return e, true
}

func (p *mergePass) isFolder(uuid string) bool {
	e, ok := p.live(uuid)
	return ok && e.IsFolder && uuid != models.FavoritesFolderID
}

// resolve maps an incoming uuid to the local entity standing for it, either
// deduplicated in this pass or by an earlier one.
func (p *mergePass) resolve(uuid string) string {
	if local, ok := p.alias[uuid]; ok {
		return local
	}
	if r, ok := p.tree.Replacement(uuid); ok {
		return r.UUID
	}
	return uuid
}

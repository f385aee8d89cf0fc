package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/models"
)

// ─────────────────────────────────────────────
// crypters
// ─────────────────────────────────────────────

var errBadCiphertext = errors.New("bad ciphertext")

// fakeCrypter wraps plaintext in enc(...) so tests can read the wire form.
type fakeCrypter struct{}

func (fakeCrypter) Encrypt(plaintext string) (string, error) {
	return "enc(" + plaintext + ")", nil
}

func (fakeCrypter) Decrypt(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, "enc(") || !strings.HasSuffix(ciphertext, ")") {
		return "", errBadCiphertext
	}
	return strings.TrimSuffix(strings.TrimPrefix(ciphertext, "enc("), ")"), nil
}

// failingCrypter refuses to encrypt one plaintext.
type failingCrypter struct {
	fakeCrypter
	reject string
}

func (c failingCrypter) Encrypt(plaintext string) (string, error) {
	if plaintext == c.reject {
		return "", errBadCiphertext
	}
	return c.fakeCrypter.Encrypt(plaintext)
}

// ─────────────────────────────────────────────
// in-memory stores
// ─────────────────────────────────────────────

// memTreeRepo keeps the tree in memory. UpdateTree works on a copy and only
// keeps it when fn succeeds and the tree is valid, like the SQLite store.
type memTreeRepo struct {
	mu      sync.Mutex
	tree    *bookmarks.Tree
	updates int
}

func newMemTreeRepo(tree *bookmarks.Tree) *memTreeRepo {
	if tree == nil {
		tree = bookmarks.NewTree()
	}
	tree.ClearChanges()
	return &memTreeRepo{tree: tree}
}

func (r *memTreeRepo) LoadTree(_ context.Context) (*bookmarks.Tree, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneTree(r.tree), nil
}

func (r *memTreeRepo) UpdateTree(_ context.Context, fn func(tree *bookmarks.Tree) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := cloneTree(r.tree)
	if err := fn(work); err != nil {
		return err
	}
	if err := work.Validate(); err != nil {
		return err
	}
	work.ClearChanges()
	r.tree = work
	r.updates++
	return nil
}

// current returns the stored tree without copying it.
func (r *memTreeRepo) current() *bookmarks.Tree {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree
}

// cloneTree copies t through bookmarks.Restore, feeding entities in
// pre-order so children keep their positions.
func cloneTree(t *bookmarks.Tree) *bookmarks.Tree {
	var ordered []bookmarks.Entity
	seen := make(map[string]struct{})
	collect := func(e *bookmarks.Entity, _ int) bool {
		if _, ok := seen[e.UUID]; ok {
			return false
		}
		seen[e.UUID] = struct{}{}
		ordered = append(ordered, *e)
		return true
	}

	t.Walk(models.RootFolderID, collect)
	for _, e := range t.Entities() {
		if _, ok := seen[e.UUID]; !ok {
			t.Walk(e.UUID, collect)
		}
	}

	out := bookmarks.Restore(ordered, t.Favorites())
	out.ClearChanges()
	return out
}

type memAccountRepo struct {
	account *models.SyncAccount
	saves   int
	clears  int
}

func (r *memAccountRepo) GetAccount(_ context.Context) (models.SyncAccount, error) {
	if r.account == nil {
		return models.SyncAccount{}, store.ErrNoAccount
	}
	return *r.account, nil
}

func (r *memAccountRepo) SaveAccount(_ context.Context, account models.SyncAccount) error {
	r.account = &account
	r.saves++
	return nil
}

func (r *memAccountRepo) ClearAccount(_ context.Context) error {
	r.account = nil
	r.clears++
	return nil
}

type memQueueRepo struct {
	batch *models.OfflineBatch
}

func (r *memQueueRepo) LoadBatch(_ context.Context, userID int64) (models.OfflineBatch, error) {
	if r.batch == nil || r.batch.UserID != userID {
		return models.OfflineBatch{}, store.ErrNoOfflineBatch
	}
	return *r.batch, nil
}

func (r *memQueueRepo) SaveBatch(_ context.Context, batch models.OfflineBatch) error {
	batch.Changes = slices.Clone(batch.Changes)
	r.batch = &batch
	return nil
}

func (r *memQueueRepo) ClearBatch(_ context.Context, _ int64) error {
	r.batch = nil
	return nil
}

type memMetadataRepo struct {
	cursor string
}

func (r *memMetadataRepo) GetCursor(_ context.Context) (string, error) {
	return r.cursor, nil
}

func (r *memMetadataRepo) SetCursor(_ context.Context, cursor string) error {
	r.cursor = cursor
	return nil
}

type memStores struct {
	trees    *memTreeRepo
	accounts *memAccountRepo
	queue    *memQueueRepo
	meta     *memMetadataRepo
}

func newMemStores(tree *bookmarks.Tree) (*store.ClientStorages, memStores) {
	m := memStores{
		trees:    newMemTreeRepo(tree),
		accounts: &memAccountRepo{},
		queue:    &memQueueRepo{},
		meta:     &memMetadataRepo{},
	}
	return &store.ClientStorages{
		TreeRepository:         m.trees,
		AccountRepository:      m.accounts,
		OfflineQueueRepository: m.queue,
		SyncMetadataRepository: m.meta,
	}, m
}

// ─────────────────────────────────────────────
// tree builders
// ─────────────────────────────────────────────

func addFolder(t *bookmarks.Tree, parent, uuid, title string) *bookmarks.Entity {
	e := &bookmarks.Entity{UUID: uuid, IsFolder: true, Title: title}
	if err := t.Add(e, parent); err != nil {
		panic(err)
	}
	return e
}

func addBookmark(t *bookmarks.Tree, parent, uuid, title, url string) *bookmarks.Entity {
	e := &bookmarks.Entity{UUID: uuid, Title: title, URL: url}
	if err := t.Add(e, parent); err != nil {
		panic(err)
	}
	return e
}

// encodeAll returns the wire records of every entity of t, roots included.
func encodeAll(t *bookmarks.Tree) []models.Syncable {
	out := make([]models.Syncable, 0, t.Len())
	for _, e := range t.Entities() {
		rec, err := toSyncable(e, t, fakeCrypter{})
		if err != nil {
			panic(err)
		}
		out = append(out, rec)
	}
	return out
}

// shape is a comparable description of the live part of a tree.
type shape struct {
	Parent   string
	Children string
	Title    string
	URL      string
}

func describe(t *bookmarks.Tree) map[string]shape {
	out := make(map[string]shape)
	for _, e := range t.Entities() {
		if e.PendingDeletion {
			continue
		}
		out[e.UUID] = shape{
			Parent:   e.Parent,
			Children: strings.Join(e.Children, ","),
			Title:    e.Title,
			URL:      e.URL,
		}
	}
	return out
}

package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mergeNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestMergeEngine() *MergeEngine {
	m := NewMergeEngine(fakeCrypter{})
	m.now = func() time.Time { return mergeNow }
	return m
}

func synced(e *bookmarks.Entity) *bookmarks.Entity {
	e.Synced = true
	return e
}

// ─────────────────────────────────────────────
// building trees from deltas
// ─────────────────────────────────────────────

func TestMerge_IntoEmptyTree(t *testing.T) {
	remote := codecTree()
	local := bookmarks.NewTree()

	report := newTestMergeEngine().Merge(context.Background(), local, encodeAll(remote))

	require.NoError(t, report.Err())
	assert.Equal(t, describe(remote), describe(local))
	assert.ElementsMatch(t, []string{"f1", "b1", "b2", "b3", "b4"}, report.Created)
	assert.Empty(t, report.Violations)
	require.NoError(t, local.Validate())

	for _, uuid := range []string{"f1", "b1", "b2", "b3", "b4"} {
		e, ok := local.Get(uuid)
		require.True(t, ok, uuid)
		assert.True(t, e.Synced, uuid)
		assert.Nil(t, e.ModifiedAt, uuid)
	}
}

func TestMerge_IsIdempotent(t *testing.T) {
	remote := codecTree()
	received := encodeAll(remote)
	local := bookmarks.NewTree()
	engine := newTestMergeEngine()

	engine.Merge(context.Background(), local, received)
	first := describe(local)

	report := engine.Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Empty(t, report.Created)
	assert.Empty(t, report.Deduplicated)
	assert.Equal(t, first, describe(local))
}

func TestMerge_DoesNotDependOnRecordOrder(t *testing.T) {
	remote := codecTree()
	received := encodeAll(remote)
	reversed := slices.Clone(received)
	slices.Reverse(reversed)

	a := bookmarks.NewTree()
	b := bookmarks.NewTree()
	newTestMergeEngine().Merge(context.Background(), a, received)
	newTestMergeEngine().Merge(context.Background(), b, reversed)

	assert.Equal(t, describe(a), describe(b))
}

func TestMerge_DoesNotDependOnRecordOrder_PopulatedTree(t *testing.T) {
	base, received := reconcileScenario()
	newTestMergeEngine().Merge(context.Background(), base, received)
	want := describe(base)
	wantFavorites := base.Favorites()

	rng := rand.New(rand.NewPCG(7, 11))
	for i := range 50 {
		local, delta := reconcileScenario()
		rng.Shuffle(len(delta), func(a, b int) { delta[a], delta[b] = delta[b], delta[a] })

		report := newTestMergeEngine().Merge(context.Background(), local, delta)

		require.NoError(t, report.Err(), "ordering %d", i)
		assert.Equal(t, want, describe(local), "ordering %d", i)
		assert.Equal(t, wantFavorites, local.Favorites(), "ordering %d", i)
	}
}

func TestMerge_ChildrenBeforeTheirFolder(t *testing.T) {
	remote := codecTree()
	received := encodeAll(remote)
	local := bookmarks.NewTree()
	engine := newTestMergeEngine()

	var children []models.Syncable
	for _, rec := range received {
		if rec.Parent() == "f1" {
			children = append(children, rec)
		}
	}
	report := engine.Merge(context.Background(), local, children)
	assert.Len(t, report.Violations, 3)
	assert.False(t, local.Has("b1"))

	report = engine.Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Equal(t, describe(remote), describe(local))
}

func TestMerge_FolderWithoutRootRecord(t *testing.T) {
	local := bookmarks.NewTree()
	received := []models.Syncable{
		{UUID: "f1", IsFolder: true, Title: "enc(News)", ParentUUID: stringPtr(models.RootFolderID), Children: []string{"b1"}},
		{UUID: "b1", Title: "enc(Go)", URL: "enc(https://go.dev)", ParentUUID: stringPtr("f1")},
	}

	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	f1, ok := local.Get("f1")
	require.True(t, ok)
	assert.Equal(t, models.RootFolderID, f1.Parent)
	assert.Equal(t, []string{"b1"}, f1.Children)
	b1, _ := local.Get("b1")
	assert.Equal(t, "https://go.dev", b1.URL)
}

// ─────────────────────────────────────────────
// updates, moves and deletes
// ─────────────────────────────────────────────

func TestMerge_RemoteFieldsWin(t *testing.T) {
	local := bookmarks.NewTree()
	b1 := synced(addBookmark(local, models.RootFolderID, "b1", "Local", "https://go.dev"))
	b1.MarkModified(mergeNow.Add(-time.Hour))

	received := []models.Syncable{
		{UUID: "b1", Title: "enc(Remote)", URL: "enc(https://go.dev/doc)", ParentUUID: stringPtr(models.RootFolderID)},
	}
	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"b1"}, report.Updated)
	assert.Equal(t, "Remote", b1.Title)
	assert.Equal(t, "https://go.dev/doc", b1.URL)
	assert.Nil(t, b1.ModifiedAt)
}

func TestMerge_MovesIntoReceivedFolder(t *testing.T) {
	local := bookmarks.NewTree()
	synced(addFolder(local, models.RootFolderID, "f1", "News"))
	synced(addBookmark(local, models.RootFolderID, "b1", "Go", "https://go.dev"))

	received := []models.Syncable{
		{UUID: "f1", IsFolder: true, Title: "enc(News)", ParentUUID: stringPtr(models.RootFolderID), Children: []string{"b1"}},
		{UUID: "b1", Title: "enc(Go)", URL: "enc(https://go.dev)", ParentUUID: stringPtr("f1")},
	}
	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	b1, _ := local.Get("b1")
	assert.Equal(t, "f1", b1.Parent)
	assert.Nil(t, b1.ModifiedAt)
	root, _ := local.Get(models.RootFolderID)
	assert.Equal(t, []string{"f1"}, root.Children)
	require.NoError(t, local.Validate())
}

func TestMerge_AppliesReceivedChildrenOrder(t *testing.T) {
	local := bookmarks.NewTree()
	synced(addFolder(local, models.RootFolderID, "f1", "News"))
	for _, id := range []string{"b1", "b2", "b3"} {
		synced(addBookmark(local, "f1", id, id, "https://"+id+".example"))
	}

	received := []models.Syncable{
		{UUID: "f1", IsFolder: true, Title: "enc(News)", ParentUUID: stringPtr(models.RootFolderID), Children: []string{"b3", "b1", "b2"}},
	}
	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	f1, _ := local.Get("f1")
	assert.Equal(t, []string{"b3", "b1", "b2"}, f1.Children)
}

func TestMerge_TombstoneRemovesEntity(t *testing.T) {
	local := bookmarks.NewTree()
	synced(addBookmark(local, models.RootFolderID, "b1", "Go", "https://go.dev"))
	require.NoError(t, local.AppendFavorite("b1"))

	received := []models.Syncable{
		models.NewTombstone("b1"),
		models.NewTombstone("unknown"),
		models.NewTombstone(models.RootFolderID),
	}
	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"b1"}, report.Deleted)
	assert.False(t, local.Has("b1"))
	assert.False(t, local.Has("unknown"))
	assert.True(t, local.Has(models.RootFolderID))
	assert.Empty(t, local.Favorites())
}

func TestMerge_LocalDeleteWinsOverRemoteUpdate(t *testing.T) {
	local := bookmarks.NewTree()
	b1 := synced(addBookmark(local, models.RootFolderID, "b1", "Go", "https://go.dev"))
	b1.PendingDeletion = true
	b1.MarkModified(mergeNow.Add(-time.Minute))

	received := []models.Syncable{
		{UUID: "b1", Title: "enc(Renamed)", URL: "enc(https://go.dev)", ParentUUID: stringPtr(models.RootFolderID)},
	}
	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Empty(t, report.Updated)
	assert.True(t, b1.PendingDeletion)
	assert.Equal(t, "Go", b1.Title)
}

// ─────────────────────────────────────────────
// deduplication
// ─────────────────────────────────────────────

func TestMerge_DedupAdoptsSmallerIncomingUUID(t *testing.T) {
	local := bookmarks.NewTree()
	addBookmark(local, models.RootFolderID, "zzz", "Go", "https://go.dev/").MarkModified(mergeNow.Add(-time.Hour))

	remote := bookmarks.NewTree()
	addBookmark(remote, models.RootFolderID, "aaa", "Go", "https://go.dev")

	report := newTestMergeEngine().Merge(context.Background(), local, encodeAll(remote))

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"aaa"}, report.Deduplicated)
	assert.Empty(t, report.Created)

	aaa, ok := local.Get("aaa")
	require.True(t, ok)
	assert.True(t, aaa.Synced)
	assert.Nil(t, aaa.ModifiedAt)
	assert.Equal(t, "https://go.dev", aaa.URL)

	ghost, ok := local.Get("zzz")
	require.True(t, ok, "the replaced uuid stays as a tombstone")
	assert.True(t, ghost.PendingDeletion)

	root, _ := local.Get(models.RootFolderID)
	assert.Equal(t, []string{"aaa"}, root.Children)
	require.NoError(t, local.Validate())
}

func TestMerge_DedupKeepsSmallerLocalUUID(t *testing.T) {
	local := bookmarks.NewTree()
	addBookmark(local, models.RootFolderID, "aaa", "Go", "https://go.dev")

	remote := bookmarks.NewTree()
	addBookmark(remote, models.RootFolderID, "zzz", "Go", "https://go.dev")

	report := newTestMergeEngine().Merge(context.Background(), local, encodeAll(remote))

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"zzz"}, report.Deduplicated)

	aaa, ok := local.Get("aaa")
	require.True(t, ok)
	assert.True(t, aaa.IsModified(), "the kept entity is sent back to the server")

	ghost, ok := local.Get("zzz")
	require.True(t, ok)
	assert.True(t, ghost.PendingDeletion)

	root, _ := local.Get(models.RootFolderID)
	assert.Equal(t, []string{"aaa"}, root.Children)
}

func TestMerge_DedupConvergesOnBothDevices(t *testing.T) {
	deviceA := bookmarks.NewTree()
	addBookmark(deviceA, models.RootFolderID, "aaa", "Go", "https://go.dev")
	deviceB := bookmarks.NewTree()
	addBookmark(deviceB, models.RootFolderID, "zzz", "Go", "https://go.dev")

	fromA := encodeAll(deviceA)
	fromB := encodeAll(deviceB)

	newTestMergeEngine().Merge(context.Background(), deviceA, fromB)
	newTestMergeEngine().Merge(context.Background(), deviceB, fromA)

	assert.Equal(t, describe(deviceA), describe(deviceB))
	assert.Contains(t, describe(deviceA), "aaa")
	assert.NotContains(t, describe(deviceA), "zzz")
}

// reconcileScenario returns a local tree holding an unsynced copy of a
// received bookmark, and a delta that also deletes a folder, moves a
// bookmark into a new subfolder and rewrites the favorites.
func reconcileScenario() (*bookmarks.Tree, []models.Syncable) {
	local := bookmarks.NewTree()
	synced(addFolder(local, models.RootFolderID, "f1", "Old"))
	synced(addFolder(local, models.RootFolderID, "f2", "Reading"))
	synced(addBookmark(local, "f2", "b2", "Kept", "https://kept.example"))
	addBookmark(local, "f2", "loc", "Dup", "https://dup.example").MarkModified(mergeNow.Add(-time.Hour))
	synced(addBookmark(local, models.RootFolderID, "b7", "Moved", "https://moved.example"))
	if err := local.AppendFavorite("b7"); err != nil {
		panic(err)
	}
	local.ClearChanges()

	received := []models.Syncable{
		models.NewTombstone("f1"),
		{UUID: "f2", IsFolder: true, Title: "enc(Reading)", ParentUUID: stringPtr(models.RootFolderID), Children: []string{"b1", "n1", "zzz", "f3"}},
		{UUID: "b1", Title: "enc(One)", URL: "enc(https://one.example)", ParentUUID: stringPtr("f2"), IsFavorite: true},
		{UUID: "n1", Title: "enc(New)", URL: "enc(https://new.example)", ParentUUID: stringPtr("f2"), IsFavorite: true},
		{UUID: "zzz", Title: "enc(Dup)", URL: "enc(https://dup.example/)", ParentUUID: stringPtr("f2")},
		{UUID: "f3", IsFolder: true, Title: "enc(Nested)", ParentUUID: stringPtr("f2"), Children: []string{"b5", "b7"}},
		{UUID: "b5", Title: "enc(Five)", URL: "enc(https://five.example)", ParentUUID: stringPtr("f3")},
		{UUID: "b7", Title: "enc(Moved)", URL: "enc(https://moved.example)", ParentUUID: stringPtr("f3")},
		{UUID: models.FavoritesFolderID, IsFolder: true, Children: []string{"n1", "b1"}},
	}
	return local, received
}

func TestMerge_ReconcileScenario(t *testing.T) {
	local, received := reconcileScenario()

	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"zzz"}, report.Deduplicated)
	assert.Equal(t, []string{"f1"}, report.Deleted)
	assert.ElementsMatch(t, []string{"b1", "n1", "f3", "b5"}, report.Created)

	f2, _ := local.Get("f2")
	assert.Equal(t, []string{"b1", "n1", "loc", "f3", "b2"}, f2.Children)
	f3, _ := local.Get("f3")
	assert.Equal(t, []string{"b5", "b7"}, f3.Children)
	assert.Equal(t, []string{"n1", "b1"}, local.Favorites())
	assert.False(t, local.Has("f1"))

	ghost, ok := local.Get("zzz")
	require.True(t, ok)
	assert.True(t, ghost.PendingDeletion)
	assert.Equal(t, "loc", ghost.ReplacedBy)
	require.NoError(t, local.Validate())
}

func TestMerge_RedeliveredDeltaAfterDedup(t *testing.T) {
	local, received := reconcileScenario()
	engine := newTestMergeEngine()

	engine.Merge(context.Background(), local, received)
	first := describe(local)
	firstFavorites := local.Favorites()
	f2, _ := local.Get("f2")
	require.Equal(t, []string{"b1", "n1", "loc", "f3", "b2"}, f2.Children)

	report := engine.Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Empty(t, report.Created)
	assert.Empty(t, report.Deduplicated)
	assert.Equal(t, first, describe(local))
	assert.Equal(t, firstFavorites, local.Favorites())
	assert.Equal(t, []string{"b1", "n1", "loc", "f3", "b2"}, f2.Children)

	loc, _ := local.Get("loc")
	assert.True(t, loc.IsModified(), "the kept entity is still sent")
	assert.True(t, f2.IsModified(), "the folder listing it is still sent")
	require.NoError(t, local.Validate())
}

func TestMerge_RedeliveredFolderAfterDedup(t *testing.T) {
	local := bookmarks.NewTree()
	addFolder(local, models.RootFolderID, "aaa", "Work")

	received := []models.Syncable{
		{UUID: "zzz", IsFolder: true, Title: "enc(Work)", ParentUUID: stringPtr(models.RootFolderID), Children: []string{"b2", "b1"}},
		{UUID: "b1", Title: "enc(One)", URL: "enc(https://one.example)", ParentUUID: stringPtr("zzz")},
		{UUID: "b2", Title: "enc(Two)", URL: "enc(https://two.example)", ParentUUID: stringPtr("zzz")},
	}
	engine := newTestMergeEngine()

	report := engine.Merge(context.Background(), local, received)
	require.NoError(t, report.Err())
	assert.Equal(t, []string{"zzz"}, report.Deduplicated)
	first := describe(local)

	report = engine.Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Empty(t, report.Created)
	assert.Equal(t, first, describe(local))
	aaa, _ := local.Get("aaa")
	assert.Equal(t, []string{"b2", "b1"}, aaa.Children)
}

func TestMerge_SyncedEntitiesAreNeverDeduplicated(t *testing.T) {
	local := bookmarks.NewTree()
	synced(addBookmark(local, models.RootFolderID, "zzz", "Go", "https://go.dev"))

	remote := bookmarks.NewTree()
	addBookmark(remote, models.RootFolderID, "aaa", "Go", "https://go.dev")

	report := newTestMergeEngine().Merge(context.Background(), local, encodeAll(remote))

	require.NoError(t, report.Err())
	assert.Empty(t, report.Deduplicated)
	assert.Equal(t, []string{"aaa"}, report.Created)
	assert.True(t, local.Has("zzz"))
	assert.True(t, local.Has("aaa"))
}

// ─────────────────────────────────────────────
// favorites
// ─────────────────────────────────────────────

func TestMerge_FavoritesFollowReceivedOrder(t *testing.T) {
	local := bookmarks.NewTree()
	for _, id := range []string{"b1", "b2", "b3"} {
		synced(addBookmark(local, models.RootFolderID, id, id, "https://"+id+".example"))
	}
	require.NoError(t, local.AppendFavorite("b1"))
	require.NoError(t, local.AppendFavorite("b2"))

	received := []models.Syncable{
		{UUID: models.FavoritesFolderID, IsFolder: true, Children: []string{"b1", "b3", "b2"}},
		{UUID: "b3", Title: "enc(b3)", URL: "enc(https://b3.example)", ParentUUID: stringPtr(models.RootFolderID), IsFavorite: true},
	}
	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.Equal(t, []string{"b1", "b3", "b2"}, local.Favorites())
}

func TestMerge_FavoriteFlagCleared(t *testing.T) {
	local := bookmarks.NewTree()
	synced(addBookmark(local, models.RootFolderID, "b1", "b1", "https://b1.example"))
	require.NoError(t, local.AppendFavorite("b1"))

	received := []models.Syncable{
		{UUID: "b1", Title: "enc(b1)", URL: "enc(https://b1.example)", ParentUUID: stringPtr(models.RootFolderID)},
	}
	newTestMergeEngine().Merge(context.Background(), local, received)

	assert.False(t, local.IsFavorite("b1"))
}

// ─────────────────────────────────────────────
// damaged deltas
// ─────────────────────────────────────────────

func TestMerge_UnknownParentIsViolation(t *testing.T) {
	local := bookmarks.NewTree()
	received := []models.Syncable{
		{UUID: "x", Title: "enc(X)", URL: "enc(https://x.example)", ParentUUID: stringPtr("missing")},
	}

	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.Len(t, report.Violations, 1)
	assert.Equal(t, "x", report.Violations[0].UUID)
	assert.Equal(t, "missing", report.Violations[0].Parent)
	assert.True(t, errors.Is(report.Err(), ErrIntegrityViolation))
	assert.False(t, local.Has("x"))
	require.NoError(t, local.Validate())
}

func TestMerge_ChildOfDeletedFolderBecomesOrphan(t *testing.T) {
	local := bookmarks.NewTree()
	synced(addFolder(local, models.RootFolderID, "fa", "Folder A"))
	synced(addBookmark(local, "fa", "x", "X", "https://x.example"))
	local.ClearChanges()

	received := []models.Syncable{
		{UUID: "x", Title: "enc(X2)", URL: "enc(https://x.example)", ParentUUID: stringPtr("fa")},
		models.NewTombstone("fa"),
	}

	report := newTestMergeEngine().Merge(context.Background(), local, received)

	assert.Equal(t, []string{"fa"}, report.Deleted)
	assert.Equal(t, []string{"x"}, report.Updated)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "x", report.Violations[0].UUID)
	assert.Equal(t, "fa", report.Violations[0].Parent)
	assert.ErrorIs(t, report.Err(), ErrIntegrityViolation)

	x, ok := local.Get("x")
	require.True(t, ok, "the orphan is kept")
	assert.Equal(t, "X2", x.Title)
	assert.Empty(t, x.Parent)
	assert.False(t, local.Has("fa"))
	assert.Equal(t, []string{"x"}, local.Orphans())
	require.NoError(t, local.Validate())
}

func TestMerge_UndecryptableRecordsAreSkipped(t *testing.T) {
	local := bookmarks.NewTree()
	received := []models.Syncable{
		{UUID: models.RootFolderID, IsFolder: true, Children: []string{"badf", "ok"}},
		{UUID: "badf", IsFolder: true, Title: "garbage", ParentUUID: stringPtr(models.RootFolderID), Children: []string{"c"}},
		{UUID: "c", Title: "enc(C)", URL: "enc(https://c.example)", ParentUUID: stringPtr("badf")},
		{UUID: "ok", Title: "enc(Ok)", URL: "enc(https://ok.example)", ParentUUID: stringPtr(models.RootFolderID)},
	}

	report := newTestMergeEngine().Merge(context.Background(), local, received)

	require.NoError(t, report.Err())
	assert.ElementsMatch(t, []string{"badf", "c"}, report.Skipped)
	assert.Equal(t, []string{"ok"}, report.Created)
	assert.False(t, local.Has("badf"))
	assert.False(t, local.Has("c"))
}

func TestMergeReport_Err(t *testing.T) {
	assert.NoError(t, MergeReport{}.Err())

	report := MergeReport{Violations: []IntegrityViolation{
		{UUID: "a", Parent: "p", Reason: "parent folder not found"},
		{UUID: "b", Reason: "record has no parent"},
	}}
	err := report.Err()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIntegrityViolation))
	assert.Contains(t, err.Error(), "a (parent p): parent folder not found")
	assert.Contains(t, err.Error(), "b: record has no parent")
}

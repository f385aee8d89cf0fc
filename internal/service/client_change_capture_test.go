package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/internal/mock"
	"github.com/MKhiriev/bookmark-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var captureNow = time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC)

func newTestCapture(trees *memTreeRepo, crypter crypto.Crypter) *changeCapture {
	c := NewChangeCapture(trees, crypter).(*changeCapture)
	c.now = func() time.Time { return captureNow }
	return c
}

func uuids(recs []models.Syncable) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.UUID)
	}
	return out
}

func TestChangeCapture_AllObjects(t *testing.T) {
	trees := newMemTreeRepo(codecTree())

	snap, err := newTestCapture(trees, fakeCrypter{}).AllObjects(context.Background())

	require.NoError(t, err)
	assert.True(t, snap.Full)
	assert.Equal(t, captureNow, snap.CapturedAt)
	assert.Equal(t, []string{"b1", "b2", "b3", "b4", models.RootFolderID, "f1", models.FavoritesFolderID}, uuids(snap.Records))
	assert.Empty(t, snap.Skipped)
}

func TestChangeCapture_ChangedObjects(t *testing.T) {
	tree := codecTree()
	b1, _ := tree.Get("b1")
	b1.MarkModified(captureNow.Add(-time.Minute))
	b2, _ := tree.Get("b2")
	b2.Synced = true
	b2.PendingDeletion = true
	tree.AddTombstone("ghost", captureNow.Add(-time.Minute))
	trees := newMemTreeRepo(tree)

	snap, err := newTestCapture(trees, fakeCrypter{}).ChangedObjects(context.Background())

	require.NoError(t, err)
	assert.False(t, snap.Full)
	require.Equal(t, []string{"b1", "b2", "ghost"}, uuids(snap.Records))
	assert.False(t, snap.Records[0].IsDeleted())
	assert.Equal(t, "enc(Go)", snap.Records[0].Title)
	assert.True(t, snap.Records[1].IsDeleted())
	assert.True(t, snap.Records[2].IsDeleted())
}

func TestChangeCapture_NothingChanged(t *testing.T) {
	trees := newMemTreeRepo(codecTree())

	snap, err := newTestCapture(trees, fakeCrypter{}).ChangedObjects(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Skipped)
}

func TestChangeCapture_HoldsBackOrphans(t *testing.T) {
	tree := codecTree()
	require.NoError(t, tree.Detach("b3"))
	b3, _ := tree.Get("b3")
	b3.MarkModified(captureNow.Add(-time.Minute))
	trees := newMemTreeRepo(tree)

	snap, err := newTestCapture(trees, fakeCrypter{}).ChangedObjects(context.Background())

	require.NoError(t, err)
	assert.NotContains(t, uuids(snap.Records), "b3")
	assert.Equal(t, []string{"b3"}, snap.Skipped)
}

func TestChangeCapture_SkipsUnencryptableEntities(t *testing.T) {
	tree := codecTree()
	for _, id := range []string{"b1", "b3"} {
		e, _ := tree.Get(id)
		e.MarkModified(captureNow.Add(-time.Minute))
	}
	trees := newMemTreeRepo(tree)

	snap, err := newTestCapture(trees, failingCrypter{reject: "Rust"}).ChangedObjects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, uuids(snap.Records))
	assert.Equal(t, []string{"b3"}, snap.Skipped)
}

func TestChangeCapture_LoadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	trees := mock.NewMockLocalTreeRepository(ctrl)
	loadErr := errors.New("database is locked")
	trees.EXPECT().LoadTree(gomock.Any()).Return((*bookmarks.Tree)(nil), loadErr)

	_, err := NewChangeCapture(trees, fakeCrypter{}).ChangedObjects(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, loadErr))
}

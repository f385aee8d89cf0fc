// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
)

func newTestClientStorages(t *testing.T) *ClientStorages {
	t.Helper()

	cfg := config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "nested", "bookmarks.db")}}
	s, err := NewClientStorages(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocalTreeRepository_RoundTrip(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()
	edited := time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC)

	err := s.TreeRepository.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		require.NoError(t, tree.Add(&bookmarks.Entity{UUID: "f1", IsFolder: true, Title: "News"}, models.RootFolderID))
		require.NoError(t, tree.Add(&bookmarks.Entity{UUID: "b2", Title: "two", URL: "https://two"}, "f1"))
		require.NoError(t, tree.Insert(&bookmarks.Entity{UUID: "b1", Title: "one", URL: "https://one"}, "f1", 0))
		require.NoError(t, tree.Add(&bookmarks.Entity{UUID: "b3", Title: "three", URL: "https://three", Synced: true}, models.RootFolderID))
		require.NoError(t, tree.AppendFavorite("b3"))
		require.NoError(t, tree.AppendFavorite("b1"))

		b1, _ := tree.Get("b1")
		b1.MarkModified(edited)
		return nil
	})
	require.NoError(t, err)

	tree, err := s.TreeRepository.LoadTree(ctx)
	require.NoError(t, err)
	assert.False(t, tree.HasChanges())

	f1, ok := tree.Get("f1")
	require.True(t, ok)
	assert.Equal(t, []string{"b1", "b2"}, f1.Children)
	assert.Equal(t, []string{"b3", "b1"}, tree.Favorites())

	root, _ := tree.Get(models.RootFolderID)
	assert.Equal(t, []string{"f1", "b3"}, root.Children)

	b1, _ := tree.Get("b1")
	require.NotNil(t, b1.ModifiedAt)
	assert.True(t, b1.ModifiedAt.Equal(edited))
	assert.Equal(t, "https://one", b1.URL)

	b3, _ := tree.Get("b3")
	assert.True(t, b3.Synced)
	assert.Nil(t, b3.ModifiedAt)
	require.NoError(t, tree.Validate())
}

func TestLocalTreeRepository_RemoveAndMove(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()

	require.NoError(t, s.TreeRepository.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := tree.Add(&bookmarks.Entity{UUID: "f1", IsFolder: true}, models.RootFolderID); err != nil {
			return err
		}
		if err := tree.Add(&bookmarks.Entity{UUID: "b1"}, "f1"); err != nil {
			return err
		}
		if err := tree.Add(&bookmarks.Entity{UUID: "b2"}, "f1"); err != nil {
			return err
		}
		return tree.AppendFavorite("b2")
	}))

	require.NoError(t, s.TreeRepository.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := tree.Move("b2", models.RootFolderID, 0); err != nil {
			return err
		}
		return tree.Remove("b1")
	}))

	tree, err := s.TreeRepository.LoadTree(ctx)
	require.NoError(t, err)
	assert.False(t, tree.Has("b1"))
	root, _ := tree.Get(models.RootFolderID)
	assert.Equal(t, []string{"b2", "f1"}, root.Children)
	f1, _ := tree.Get("f1")
	assert.Empty(t, f1.Children)
	assert.Equal(t, []string{"b2"}, tree.Favorites())
}

func TestLocalTreeRepository_KeepsReplacement(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.TreeRepository.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := tree.Add(&bookmarks.Entity{UUID: "loc", Title: "Dup", URL: "https://dup"}, models.RootFolderID); err != nil {
			return err
		}
		tree.AddReplacement("zzz", "loc", now)
		return nil
	}))

	tree, err := s.TreeRepository.LoadTree(ctx)
	require.NoError(t, err)

	ghost, ok := tree.Get("zzz")
	require.True(t, ok)
	assert.True(t, ghost.PendingDeletion)
	assert.Equal(t, "loc", ghost.ReplacedBy)
	r, ok := tree.Replacement("zzz")
	require.True(t, ok)
	assert.Equal(t, "loc", r.UUID)

	loc, _ := tree.Get("loc")
	assert.Empty(t, loc.ReplacedBy)
}

func TestLocalTreeRepository_RollsBackOnError(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.TreeRepository.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := tree.Add(&bookmarks.Entity{UUID: "b1"}, models.RootFolderID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = s.TreeRepository.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		if err := tree.Add(&bookmarks.Entity{UUID: "b2"}, models.RootFolderID); err != nil {
			return err
		}
		b2, _ := tree.Get("b2")
		b2.Parent = "elsewhere"
		return nil
	})
	assert.ErrorIs(t, err, bookmarks.ErrBrokenTree)

	tree, err := s.TreeRepository.LoadTree(ctx)
	require.NoError(t, err)
	assert.False(t, tree.Has("b1"))
	assert.False(t, tree.Has("b2"))
}

func TestAccountRepository(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()

	_, err := s.AccountRepository.GetAccount(ctx)
	assert.ErrorIs(t, err, ErrNoAccount)

	account := models.SyncAccount{
		UserID:     7,
		Login:      "alice",
		PrimaryKey: []byte{1, 2, 3},
		SecretKey:  []byte{4, 5, 6},
		Token:      "jwt",
		State:      models.AccountPendingFirstSync,
	}
	require.NoError(t, s.AccountRepository.SaveAccount(ctx, account))

	account.State = models.AccountActive
	require.NoError(t, s.AccountRepository.SaveAccount(ctx, account))

	got, err := s.AccountRepository.GetAccount(ctx)
	require.NoError(t, err)
	assert.Equal(t, account, got)

	require.NoError(t, s.AccountRepository.ClearAccount(ctx))
	_, err = s.AccountRepository.GetAccount(ctx)
	assert.ErrorIs(t, err, ErrNoAccount)
}

func TestOfflineQueueRepository(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()

	_, err := s.OfflineQueueRepository.LoadBatch(ctx, 7)
	assert.ErrorIs(t, err, ErrNoOfflineBatch)

	parent := models.RootFolderID
	batch := models.OfflineBatch{
		UserID:        7,
		Changes:       []models.Syncable{{UUID: "b1", ParentUUID: &parent, Title: "enc"}, models.NewTombstone("b2")},
		ModifiedSince: "12",
	}
	require.NoError(t, s.OfflineQueueRepository.SaveBatch(ctx, batch))

	// a newer batch supersedes the stored one
	batch.ModifiedSince = "13"
	require.NoError(t, s.OfflineQueueRepository.SaveBatch(ctx, batch))

	got, err := s.OfflineQueueRepository.LoadBatch(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "13", got.ModifiedSince)
	assert.Equal(t, batch.Changes, got.Changes)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.OfflineQueueRepository.LoadBatch(ctx, 8)
	assert.ErrorIs(t, err, ErrNoOfflineBatch)

	require.NoError(t, s.OfflineQueueRepository.ClearBatch(ctx, 7))
	_, err = s.OfflineQueueRepository.LoadBatch(ctx, 7)
	assert.ErrorIs(t, err, ErrNoOfflineBatch)
}

func TestSyncMetadataRepository(t *testing.T) {
	s := newTestClientStorages(t)
	ctx := context.Background()

	cursor, err := s.SyncMetadataRepository.GetCursor(ctx)
	require.NoError(t, err)
	assert.Empty(t, cursor)

	require.NoError(t, s.SyncMetadataRepository.SetCursor(ctx, "5"))
	require.NoError(t, s.SyncMetadataRepository.SetCursor(ctx, "6"))
	cursor, err = s.SyncMetadataRepository.GetCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "6", cursor)

	require.NoError(t, s.SyncMetadataRepository.SetCursor(ctx, ""))
	cursor, err = s.SyncMetadataRepository.GetCursor(ctx)
	require.NoError(t, err)
	assert.Empty(t, cursor)
}

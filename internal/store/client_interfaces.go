// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalTreeRepository persists the bookmark tree on the device.
type LocalTreeRepository interface {
	// LoadTree reads the whole tree inside one read transaction.
	LoadTree(ctx context.Context) (*bookmarks.Tree, error)

	// UpdateTree loads the tree, hands it to fn and writes back every change
	// fn made, all inside one transaction. Nothing is written when fn
	// returns an error or when the tree breaks its invariants.
	UpdateTree(ctx context.Context, fn func(tree *bookmarks.Tree) error) error
}

// AccountRepository is the device credential store. A device holds at most
// one sync account.
type AccountRepository interface {
	// GetAccount returns [ErrNoAccount] when the device is signed out.
	GetAccount(ctx context.Context) (models.SyncAccount, error)
	SaveAccount(ctx context.Context, account models.SyncAccount) error
	ClearAccount(ctx context.Context) error
}

// OfflineQueueRepository keeps the single unsent batch of an account.
type OfflineQueueRepository interface {
	// LoadBatch returns [ErrNoOfflineBatch] when nothing is queued.
	LoadBatch(ctx context.Context, userID int64) (models.OfflineBatch, error)
	SaveBatch(ctx context.Context, batch models.OfflineBatch) error
	ClearBatch(ctx context.Context, userID int64) error
}

// SyncMetadataRepository stores the modified_since cursor.
type SyncMetadataRepository interface {
	// GetCursor returns an empty cursor when none was stored.
	GetCursor(ctx context.Context) (string, error)
	SetCursor(ctx context.Context, cursor string) error
}

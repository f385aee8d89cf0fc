// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
)

// ClientStorages aggregates the client repositories. All of them share one
// SQLite connection.
type ClientStorages struct {
	TreeRepository         LocalTreeRepository
	AccountRepository      AccountRepository
	OfflineQueueRepository OfflineQueueRepository
	SyncMetadataRepository SyncMetadataRepository

	db *DB
}

func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newClientStorages(db, logger), nil
}

func newClientStorages(db *DB, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		TreeRepository:         NewLocalTreeRepository(db, logger),
		AccountRepository:      NewAccountRepository(db, logger),
		OfflineQueueRepository: NewOfflineQueueRepository(db, logger),
		SyncMetadataRepository: NewSyncMetadataRepository(db, logger),
		db:                     db,
	}
}

// Close releases the database connection.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

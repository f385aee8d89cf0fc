// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
)

type syncMetadataRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewSyncMetadataRepository(db *DB, logger *logger.Logger) SyncMetadataRepository {
	return &syncMetadataRepository{
		db:     db,
		logger: logger,
	}
}

func (r *syncMetadataRepository) GetCursor(ctx context.Context) (string, error) {
	var cursor string
	err := r.db.QueryRowContext(ctx, selectMetadata, cursorKey).Scan(&cursor)
	if isNoRows(err) {
		return "", nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "syncMetadataRepository.GetCursor").Msg("failed to read cursor")
		return "", fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return cursor, nil
}

// SetCursor stores cursor. An empty cursor forgets the stored one, so the
// next sync pass fetches everything.
func (r *syncMetadataRepository) SetCursor(ctx context.Context, cursor string) error {
	log := logger.FromContext(ctx)

	var err error
	if cursor == "" {
		_, err = r.db.ExecContext(ctx, deleteMetadata, cursorKey)
	} else {
		_, err = r.db.ExecContext(ctx, upsertMetadata, cursorKey, cursor)
	}
	if err != nil {
		log.Err(err).Str("func", "syncMetadataRepository.SetCursor").Msg("failed to store cursor")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().Str("func", "syncMetadataRepository.SetCursor").Str("cursor", cursor).Msg("cursor stored")
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
)

type offlineQueueRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewOfflineQueueRepository(db *DB, logger *logger.Logger) OfflineQueueRepository {
	return &offlineQueueRepository{
		db:     db,
		logger: logger,
	}
}

func (r *offlineQueueRepository) LoadBatch(ctx context.Context, userID int64) (models.OfflineBatch, error) {
	log := logger.FromContext(ctx)

	var (
		payload   string
		createdAt string
		batch     = models.OfflineBatch{UserID: userID}
	)
	err := r.db.QueryRowContext(ctx, selectOfflineBatch, userID).Scan(&payload, &batch.ModifiedSince, &createdAt)
	if isNoRows(err) {
		return models.OfflineBatch{}, ErrNoOfflineBatch
	}
	if err != nil {
		log.Err(err).
			Str("func", "offlineQueueRepository.LoadBatch").
			Int64("user_id", userID).
			Msg("failed to read offline batch")
		return models.OfflineBatch{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err := json.Unmarshal([]byte(payload), &batch.Changes); err != nil {
		log.Err(err).
			Str("func", "offlineQueueRepository.LoadBatch").
			Int64("user_id", userID).
			Msg("offline batch is not valid JSON")
		return models.OfflineBatch{}, fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	batch.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	return batch, nil
}

// SaveBatch replaces the queued batch of batch.UserID.
func (r *offlineQueueRepository) SaveBatch(ctx context.Context, batch models.OfflineBatch) error {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(batch.Changes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingPayload, err)
	}
	createdAt := batch.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, upsertOfflineBatch,
		batch.UserID,
		string(payload),
		batch.ModifiedSince,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		log.Err(err).
			Str("func", "offlineQueueRepository.SaveBatch").
			Int64("user_id", batch.UserID).
			Int("changes", len(batch.Changes)).
			Msg("failed to save offline batch")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().
		Str("func", "offlineQueueRepository.SaveBatch").
		Int64("user_id", batch.UserID).
		Int("changes", len(batch.Changes)).
		Msg("offline batch saved")
	return nil
}

func (r *offlineQueueRepository) ClearBatch(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteOfflineBatch, userID); err != nil {
		log.Err(err).
			Str("func", "offlineQueueRepository.ClearBatch").
			Int64("user_id", userID).
			Msg("failed to clear offline batch")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

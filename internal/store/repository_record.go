package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
)

// syncAttempts bounds how often a sync transaction is replayed after a
// transient failure such as a serialization conflict.
const syncAttempts = 3

type recordRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	return &recordRepository{
		db:     db,
		logger: logger,
	}
}

func (r *recordRepository) SyncRecords(ctx context.Context, userID, since int64, updates []models.StoredRecord) ([]models.StoredRecord, int64, error) {
	log := logger.FromContext(ctx)

	var (
		delta  []models.StoredRecord
		cursor int64
		err    error
	)
	for attempt := 1; attempt <= syncAttempts; attempt++ {
		delta, cursor, err = r.syncRecords(ctx, userID, since, updates)
		if err == nil || !r.retryable(err) {
			break
		}
		log.Warn().
			Err(err).
			Str("func", "recordRepository.SyncRecords").
			Int64("user_id", userID).
			Int("attempt", attempt).
			Msg("transient database error, retrying sync transaction")
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.SyncRecords").
			Int64("user_id", userID).
			Int64("since", since).
			Int("updates", len(updates)).
			Msg("sync transaction failed")
		return nil, 0, err
	}

	log.Debug().
		Str("func", "recordRepository.SyncRecords").
		Int64("user_id", userID).
		Int64("since", since).
		Int64("cursor", cursor).
		Int("updates", len(updates)).
		Int("delta", len(delta)).
		Msg("records synchronized")
	return delta, cursor, nil
}

func (r *recordRepository) syncRecords(ctx context.Context, userID, since int64, updates []models.StoredRecord) ([]models.StoredRecord, int64, error) {
	var (
		delta  []models.StoredRecord
		cursor int64
	)
	err := r.db.withTx(ctx, nil, func(tx *sql.Tx) error {
		// the row lock serializes concurrent passes of the same account
		var (
			seq     int64
			revoked bool
		)
		err := tx.QueryRowContext(ctx, lockUserSeq, userID).Scan(&seq, &revoked)
		if isNoRows(err) {
			return ErrNoUserWasFound
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if revoked {
			return ErrAccountRevoked
		}
		if since < 0 || since > seq {
			return fmt.Errorf("%w: %d is ahead of %d", ErrInvalidCursor, since, seq)
		}

		delta, err = selectDelta(ctx, tx, userID, since, updates)
		if err != nil {
			return err
		}

		cursor = seq
		if len(updates) == 0 {
			return nil
		}

		cursor = seq + 1
		if _, err := tx.ExecContext(ctx, advanceUserSeq, userID, cursor); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		for _, u := range updates {
			if _, err := tx.ExecContext(ctx, upsertRecord, userID, u.UUID, u.Payload, u.Deleted, cursor); err != nil {
				return fmt.Errorf("%w: record %s: %w", ErrExecutingStatement, u.UUID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return delta, cursor, nil
}

func selectDelta(ctx context.Context, tx *sql.Tx, userID, since int64, updates []models.StoredRecord) ([]models.StoredRecord, error) {
	exclude := make([]string, 0, len(updates))
	for _, u := range updates {
		exclude = append(exclude, u.UUID)
	}

	query, args, err := buildDeltaQuery(userID, since, exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var delta []models.StoredRecord
	for rows.Next() {
		rec := models.StoredRecord{UserID: userID}
		if err := rows.Scan(&rec.UUID, &rec.Payload, &rec.Deleted, &rec.Seq, &rec.LastModified); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		delta = append(delta, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return delta, nil
}

func (r *recordRepository) PurgeTombstones(ctx context.Context, olderThan time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	res, err := r.db.ExecContext(ctx, purgeTombstones, olderThan)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.PurgeTombstones").Time("older_than", olderThan).Msg("failed to purge tombstones")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	n, _ := res.RowsAffected()
	log.Info().Str("func", "recordRepository.PurgeTombstones").Int64("purged", n).Msg("tombstones purged")
	return n, nil
}

func (r *recordRepository) retryable(err error) bool {
	return r.db.errorClassificator != nil && r.db.errorClassificator.Classify(err) == Retryable
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
)

func newTestRecordRepo(t *testing.T) (*recordRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := logger.Nop()
	return &recordRepository{
		db:     &DB{DB: db, logger: l, errorClassificator: NewPostgresErrorClassifier()},
		logger: l,
	}, mock
}

var deltaColumns = []string{"uuid", "payload", "deleted", "seq", "updated_at"}

func TestSyncRecords_StoresUpdatesAndReturnsDelta(t *testing.T) {
	repo, mock := newTestRecordRepo(t)
	now := time.Now()

	updates := []models.StoredRecord{
		{UUID: "b1", Payload: []byte(`{"id":"b1"}`)},
		{UUID: "b2", Payload: []byte(`{"id":"b2"}`), Deleted: true},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT change_seq, revoked").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"change_seq", "revoked"}).AddRow(4, false))
	mock.ExpectQuery("SELECT uuid, payload, deleted, seq, updated_at FROM records").
		WithArgs(int64(7), int64(2), "b1", "b2").
		WillReturnRows(sqlmock.NewRows(deltaColumns).
			AddRow("f1", []byte(`{"id":"f1"}`), false, 3, now).
			AddRow("x1", []byte(`{"id":"x1"}`), true, 4, now))
	mock.ExpectExec("UPDATE users SET change_seq").
		WithArgs(int64(7), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO records").
		WithArgs(int64(7), "b1", []byte(`{"id":"b1"}`), false, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO records").
		WithArgs(int64(7), "b2", []byte(`{"id":"b2"}`), true, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	delta, cursor, err := repo.SyncRecords(context.Background(), 7, 2, updates)
	require.NoError(t, err)
	assert.Equal(t, int64(5), cursor)
	require.Len(t, delta, 2)
	assert.Equal(t, "f1", delta[0].UUID)
	assert.Equal(t, int64(7), delta[0].UserID)
	assert.True(t, delta[1].Deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRecords_EmptyUpdatesKeepCursor(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT change_seq, revoked").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"change_seq", "revoked"}).AddRow(9, false))
	mock.ExpectQuery("FROM records").
		WithArgs(int64(7), int64(9)).
		WillReturnRows(sqlmock.NewRows(deltaColumns))
	mock.ExpectCommit()

	delta, cursor, err := repo.SyncRecords(context.Background(), 7, 9, nil)
	require.NoError(t, err)
	assert.Empty(t, delta)
	assert.Equal(t, int64(9), cursor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRecords_Errors(t *testing.T) {
	tests := []struct {
		name    string
		since   int64
		rows    *sqlmock.Rows
		wantErr error
	}{
		{
			name:    "revoked account",
			rows:    sqlmock.NewRows([]string{"change_seq", "revoked"}).AddRow(3, true),
			wantErr: ErrAccountRevoked,
		},
		{
			name:    "unknown account",
			rows:    sqlmock.NewRows([]string{"change_seq", "revoked"}),
			wantErr: ErrNoUserWasFound,
		},
		{
			name:    "cursor ahead of sequence",
			since:   10,
			rows:    sqlmock.NewRows([]string{"change_seq", "revoked"}).AddRow(3, false),
			wantErr: ErrInvalidCursor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRecordRepo(t)

			mock.ExpectBegin()
			mock.ExpectQuery("SELECT change_seq, revoked").WillReturnRows(tt.rows)
			mock.ExpectRollback()

			_, _, err := repo.SyncRecords(context.Background(), 7, tt.since, nil)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSyncRecords_RetriesSerializationFailure(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT change_seq, revoked").
		WillReturnError(pgError(pgerrcode.SerializationFailure))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT change_seq, revoked").
		WillReturnRows(sqlmock.NewRows([]string{"change_seq", "revoked"}).AddRow(0, false))
	mock.ExpectQuery("FROM records").
		WillReturnRows(sqlmock.NewRows(deltaColumns))
	mock.ExpectCommit()

	_, cursor, err := repo.SyncRecords(context.Background(), 7, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cursor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRecords_NonRetryableFailsOnce(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT change_seq, revoked").
		WillReturnError(errors.New("syntax"))
	mock.ExpectRollback()

	_, _, err := repo.SyncRecords(context.Background(), 7, 0, nil)
	assert.ErrorIs(t, err, ErrScanningRow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurgeTombstones(t *testing.T) {
	repo, mock := newTestRecordRepo(t)
	cutoff := time.Now().Add(-time.Hour)

	mock.ExpectExec("DELETE FROM records").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.PurgeTombstones(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

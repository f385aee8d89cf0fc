package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/models"
)

// syncService relays encrypted records. Payloads are stored as the JSON
// encoding of the submitted record and returned unchanged.
type syncService struct {
	records store.RecordRepository
	logger  *logger.Logger
}

func NewSyncService(records store.RecordRepository, logger *logger.Logger) SyncService {
	return &syncService{
		records: records,
		logger:  logger,
	}
}

func (s *syncService) SyncBookmarks(ctx context.Context, userID int64, req models.BookmarksRequest) (models.BookmarksResponse, error) {
	log := logger.FromContext(ctx)

	since, err := parseCursor(req.ModifiedSince)
	if err != nil {
		log.Error().Err(err).Str("func", "syncService.SyncBookmarks").Str("cursor", req.ModifiedSince).Msg("malformed cursor")
		return models.BookmarksResponse{}, err
	}

	updates := make([]models.StoredRecord, 0, len(req.Updates))
	for _, u := range req.Updates {
		payload, err := json.Marshal(u)
		if err != nil {
			return models.BookmarksResponse{}, fmt.Errorf("%w: %w", store.ErrEncodingPayload, err)
		}
		updates = append(updates, models.StoredRecord{
			UserID:  userID,
			UUID:    u.UUID,
			Payload: payload,
			Deleted: u.IsDeleted(),
		})
	}

	delta, cursor, err := s.records.SyncRecords(ctx, userID, since, updates)
	if err != nil {
		return models.BookmarksResponse{}, err
	}

	resp := models.BookmarksResponse{
		Entries:      make([]models.Syncable, 0, len(delta)),
		LastModified: strconv.FormatInt(cursor, 10),
	}
	for _, rec := range delta {
		var entry models.Syncable
		if err := json.Unmarshal(rec.Payload, &entry); err != nil {
			log.Err(err).Str("func", "syncService.SyncBookmarks").Str("uuid", rec.UUID).Msg("stored payload is unreadable")
			return models.BookmarksResponse{}, fmt.Errorf("decode record %s: %w", rec.UUID, err)
		}
		resp.Entries = append(resp.Entries, entry)
	}

	log.Debug().Str("func", "syncService.SyncBookmarks").
		Int64("user_id", userID).
		Int("received", len(req.Updates)).
		Int("returned", len(resp.Entries)).
		Str("cursor", resp.LastModified).
		Msg("bookmarks synchronized")
	return resp, nil
}

func (s *syncService) PurgeTombstones(ctx context.Context, olderThan time.Time) (int64, error) {
	return s.records.PurgeTombstones(ctx, olderThan)
}

// parseCursor reads a decimal sequence cursor. An empty cursor is zero.
func parseCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	since, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || since < 0 {
		return 0, fmt.Errorf("%w: %q", store.ErrInvalidCursor, cursor)
	}
	return since, nil
}

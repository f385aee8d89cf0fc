package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/validators"
	"github.com/MKhiriev/bookmark-sync/models"
)

// syncValidationService rejects malformed requests before they reach the
// wrapped SyncService.
type syncValidationService struct {
	inner     SyncService
	validator validators.Validator
	logger    *logger.Logger
}

type SyncValidationServiceWrapper struct {
	validator validators.Validator
	logger    *logger.Logger
}

func NewSyncValidationServiceWrapper(validator validators.Validator, logger *logger.Logger) SyncServiceWrapper {
	return &SyncValidationServiceWrapper{
		validator: validator,
		logger:    logger,
	}
}

func (w *SyncValidationServiceWrapper) Wrap(service SyncService) SyncService {
	return &syncValidationService{
		inner:     service,
		validator: w.validator,
		logger:    w.logger,
	}
}

func (v *syncValidationService) SyncBookmarks(ctx context.Context, userID int64, req models.BookmarksRequest) (models.BookmarksResponse, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("func", "syncValidationService.SyncBookmarks").
			Int64("user_id", userID).
			Msg("invalid sync request")
		return models.BookmarksResponse{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.SyncBookmarks(ctx, userID, req)
}

func (v *syncValidationService) PurgeTombstones(ctx context.Context, olderThan time.Time) (int64, error) {
	return v.inner.PurgeTombstones(ctx, olderThan)
}

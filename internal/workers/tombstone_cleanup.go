package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/service"
)

const (
	defaultTombstoneRetention = 30 * 24 * time.Hour
	defaultCleanupInterval    = time.Hour
)

// tombstoneCleanupWorker purges tombstones older than the retention period.
// A client that has been offline longer than the retention misses those
// deletes, so the retention bounds how stale a device may get.
type tombstoneCleanupWorker struct {
	syncService service.SyncService
	retention   time.Duration
	interval    time.Duration
	now         func() time.Time

	logger *logger.Logger
}

func NewTombstoneCleanupWorker(syncService service.SyncService, retention, interval time.Duration, logger *logger.Logger) Worker {
	if retention <= 0 {
		retention = defaultTombstoneRetention
	}
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	return &tombstoneCleanupWorker{
		syncService: syncService,
		retention:   retention,
		interval:    interval,
		now:         time.Now,
		logger:      logger,
	}
}

// Run purges once at start and then on every tick until ctx is cancelled.
func (w *tombstoneCleanupWorker) Run(ctx context.Context) {
	w.logger.Info().
		Str("func", "tombstoneCleanupWorker.Run").
		Dur("retention", w.retention).
		Dur("interval", w.interval).
		Msg("tombstone cleanup started")

	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		w.purge(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info().Str("func", "tombstoneCleanupWorker.Run").Msg("tombstone cleanup stopped")
			return
		case <-t.C:
		}
	}
}

func (w *tombstoneCleanupWorker) purge(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cutoff := w.now().Add(-w.retention)
	purged, err := w.syncService.PurgeTombstones(ctx, cutoff)
	if err != nil {
		w.logger.Err(err).Str("func", "tombstoneCleanupWorker.purge").Time("cutoff", cutoff).Msg("failed to purge tombstones")
		return
	}

	w.logger.Info().
		Str("func", "tombstoneCleanupWorker.purge").
		Time("cutoff", cutoff).
		Int64("purged", purged).
		Msg("tombstones purged")
}

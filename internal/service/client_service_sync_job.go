package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
)

const defaultSyncInterval = 5 * time.Minute

type clientSyncJob struct {
	syncService ClientSyncService

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a clientSyncJob that calls syncService.Sync on a
// ticker. The job is idle until Start is called.
func NewClientSyncJob(syncService ClientSyncService) ClientSyncJob {
	return &clientSyncJob{syncService: syncService}
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches a background goroutine that triggers a sync pass every interval.
// Failed passes are logged and retried on the next tick. The goroutine exits
// when ctx is cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		log := logger.FromContext(jobCtx)
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				err := j.syncService.Sync(jobCtx)
				switch {
				case err == nil:
				case errors.Is(err, ErrAccountRemoved):
					log.Warn().Err(err).Str("func", "clientSyncJob.Start").Msg("account removed, sign in again to resume syncing")
				default:
					log.Err(err).Str("func", "clientSyncJob.Start").Bool("retryable", IsRetryable(err)).Msg("scheduled sync failed")
				}
			}
		}
	}()
}

// Stop implements ClientSyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

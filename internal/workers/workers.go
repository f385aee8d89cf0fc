package workers

import (
	"context"
	"sync"

	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/service"
)

type Workers struct {
	workers []Worker
}

// NewServerWorkers builds the relay background jobs.
func NewServerWorkers(services *service.Services, cfg config.ServerWorkers, logger *logger.Logger) *Workers {
	return &Workers{workers: []Worker{
		NewTombstoneCleanupWorker(services.SyncService, cfg.TombstoneRetention, cfg.CleanupInterval, logger),
	}}
}

// Run starts every worker in its own goroutine and returns once all of them
// have stopped.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}
	wg.Wait()
}

package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/adapter"
	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/service"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/models"
)

// App owns the client services and the local database for the lifetime of
// one CLI invocation or daemon process.
type App struct {
	Services *service.ClientServices

	syncInterval time.Duration
	closers      []func() error

	logger *logger.Logger
}

// NewApp opens the local store and builds the client services.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, logger)
	if err != nil {
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	localStorage, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	services := service.NewClientServices(localStorage, serverAdapter, crypto.NewKeyChainService())

	app := NewAppWithServices(services, cfg.Workers, logger)
	app.closers = append(app.closers, localStorage.Close)
	return app, nil
}

// NewAppWithServices wraps already built services. It owns no resources.
func NewAppWithServices(services *service.ClientServices, workers config.ClientWorkers, logger *logger.Logger) *App {
	return &App{
		Services:     services,
		syncInterval: workers.SyncInterval,
		logger:       logger,
	}
}

// Run is the daemon mode: it syncs once, then on every tick of the sync job
// until ctx is cancelled. Every finished pass is reported to onEvent.
func (a *App) Run(ctx context.Context, onEvent func(models.SyncEvent)) error {
	ctx = a.logger.WithContext(ctx)

	events, unsubscribe := a.Services.SyncService.Subscribe()
	defer unsubscribe()

	a.Services.SyncJob.Start(ctx, a.syncInterval)
	defer a.Services.SyncJob.Stop()

	a.logger.Info().Str("func", "App.Run").Dur("interval", a.syncInterval).Msg("daemon started")

	if err := a.Services.SyncService.Sync(ctx); err != nil && !errors.Is(err, service.ErrAccountRemoved) {
		a.logger.Err(err).Str("func", "App.Run").Msg("startup sync failed")
	}

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Str("func", "App.Run").Msg("daemon stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if onEvent != nil {
				onEvent(ev)
			}
		}
	}
}

// Close releases the local store.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

package service

import (
	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/internal/validators"
)

type Services struct {
	AuthService    AuthService
	SyncService    SyncService
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg config.ServerConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	syncSvc := NewSyncValidationServiceWrapper(validators.NewSyncRequestValidator(), logger).
		Wrap(NewSyncService(storages.RecordRepository, logger))

	return &Services{
		AuthService:    NewAuthService(storages.UserRepository, cfg.App, logger),
		SyncService:    syncSvc,
		AppInfoService: appInfo,
	}, nil
}

package service

import (
	"github.com/MKhiriev/bookmark-sync/internal/adapter"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/internal/store"
)

type ClientServices struct {
	AccountService   ClientAccountService
	BookmarksService ClientBookmarksService
	SyncService      ClientSyncService
	SyncJob          ClientSyncJob
}

func NewClientServices(localStore *store.ClientStorages, serverAdapter adapter.ServerAdapter, keys crypto.KeyChainService) *ClientServices {
	syncSvc := NewClientSyncService(localStore, serverAdapter, keys)

	return &ClientServices{
		AccountService:   NewClientAccountService(localStore, serverAdapter, keys),
		BookmarksService: NewClientBookmarksService(localStore),
		SyncService:      syncSvc,
		SyncJob:          NewClientSyncJob(syncSvc),
	}
}

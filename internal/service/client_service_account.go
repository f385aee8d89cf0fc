package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MKhiriev/bookmark-sync/internal/adapter"
	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/models"
)

type clientAccountService struct {
	localStore *store.ClientStorages
	adapter    adapter.ServerAdapter
	keys       crypto.KeyChainService
}

func NewClientAccountService(localStore *store.ClientStorages, serverAdapter adapter.ServerAdapter, keys crypto.KeyChainService) ClientAccountService {
	return &clientAccountService{
		localStore: localStore,
		adapter:    serverAdapter,
		keys:       keys,
	}
}

func (a *clientAccountService) CreateAccount(ctx context.Context, login, password string) (models.SyncAccount, error) {
	return a.authenticate(ctx, login, password, a.adapter.Signup, ErrRegisterOnServer)
}

func (a *clientAccountService) Login(ctx context.Context, login, password string) (models.SyncAccount, error) {
	return a.authenticate(ctx, login, password, a.adapter.Login, ErrLoginOnServer)
}

type authCall func(ctx context.Context, user models.User) (models.User, error)

func (a *clientAccountService) authenticate(ctx context.Context, login, password string, call authCall, failure error) (models.SyncAccount, error) {
	log := logger.FromContext(ctx)

	if login == "" || password == "" {
		return models.SyncAccount{}, ErrInvalidDataProvided
	}

	ok, err := a.IsAuthenticated(ctx)
	if err != nil {
		return models.SyncAccount{}, err
	}
	if ok {
		return models.SyncAccount{}, ErrAlreadyAuthenticated
	}

	keys, err := a.keys.DeriveKeys(login, password)
	if err != nil {
		return models.SyncAccount{}, fmt.Errorf("derive account keys: %w", err)
	}

	user, err := call(ctx, models.User{Login: login, PrimaryKey: hex.EncodeToString(keys.PrimaryKey)})
	if err != nil {
		log.Err(err).Str("func", "clientAccountService.authenticate").Str("login", login).Msg("server rejected credentials")
		mapped := mapAdapterError(err)
		if errors.Is(mapped, err) {
			return models.SyncAccount{}, fmt.Errorf("%w: %w", failure, err)
		}
		return models.SyncAccount{}, mapped
	}

	if err = a.resetSyncState(ctx, user.UserID); err != nil {
		return models.SyncAccount{}, err
	}

	account := models.SyncAccount{
		UserID:     user.UserID,
		Login:      login,
		PrimaryKey: keys.PrimaryKey,
		SecretKey:  keys.SecretKey,
		Token:      a.adapter.Token(),
		State:      models.AccountPendingFirstSync,
	}
	if err = a.localStore.AccountRepository.SaveAccount(ctx, account); err != nil {
		return models.SyncAccount{}, err
	}

	log.Info().Str("func", "clientAccountService.authenticate").Int64("user_id", user.UserID).Msg("account stored, first sync pending")
	return account, nil
}

// resetSyncState prepares the tree for the first sync of a new account: local
// deletes no server will ever confirm are applied and every entity is treated
// as unknown to the server.
func (a *clientAccountService) resetSyncState(ctx context.Context, userID int64) error {
	err := a.localStore.TreeRepository.UpdateTree(ctx, func(tree *bookmarks.Tree) error {
		for _, e := range tree.Entities() {
			if e.PendingDeletion && !e.IsRoot() {
				if err := tree.Remove(e.UUID); err != nil {
					return err
				}
				continue
			}
			if e.Synced {
				e.Synced = false
				tree.MarkDirty(e.UUID)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err = a.localStore.OfflineQueueRepository.ClearBatch(ctx, userID); err != nil {
		return err
	}
	return a.localStore.SyncMetadataRepository.SetCursor(ctx, "")
}

func (a *clientAccountService) Disconnect(ctx context.Context) error {
	log := logger.FromContext(ctx)

	account, err := a.localStore.AccountRepository.GetAccount(ctx)
	if errors.Is(err, store.ErrNoAccount) {
		return nil
	}
	if err != nil {
		return err
	}

	a.adapter.SetToken("")
	if err = a.localStore.OfflineQueueRepository.ClearBatch(ctx, account.UserID); err != nil {
		return err
	}
	if err = a.localStore.SyncMetadataRepository.SetCursor(ctx, ""); err != nil {
		return err
	}
	if err = a.localStore.AccountRepository.ClearAccount(ctx); err != nil {
		return err
	}

	log.Info().Str("func", "clientAccountService.Disconnect").Int64("user_id", account.UserID).Msg("account disconnected")
	return nil
}

func (a *clientAccountService) DeleteAccount(ctx context.Context) error {
	log := logger.FromContext(ctx)

	account, err := a.Account(ctx)
	if err != nil {
		return err
	}

	a.adapter.SetToken(account.Token)
	if err = a.adapter.DeleteAccount(ctx); err != nil && !errors.Is(err, adapter.ErrForbidden) {
		log.Err(err).Str("func", "clientAccountService.DeleteAccount").Int64("user_id", account.UserID).Msg("server did not revoke account")
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	return a.Disconnect(ctx)
}

func (a *clientAccountService) IsAuthenticated(ctx context.Context) (bool, error) {
	_, err := a.localStore.AccountRepository.GetAccount(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNoAccount):
		return false, nil
	default:
		return false, err
	}
}

func (a *clientAccountService) Account(ctx context.Context) (models.SyncAccount, error) {
	account, err := a.localStore.AccountRepository.GetAccount(ctx)
	if errors.Is(err, store.ErrNoAccount) {
		return models.SyncAccount{}, ErrNotAuthenticated
	}
	return account, err
}

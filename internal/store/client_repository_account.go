// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
)

type accountRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) GetAccount(ctx context.Context) (models.SyncAccount, error) {
	log := logger.FromContext(ctx)

	var (
		account models.SyncAccount
		state   string
	)
	err := r.db.QueryRowContext(ctx, selectAccount).Scan(
		&account.UserID,
		&account.Login,
		&account.PrimaryKey,
		&account.SecretKey,
		&account.Token,
		&state,
	)
	if isNoRows(err) {
		return models.SyncAccount{}, ErrNoAccount
	}
	if err != nil {
		log.Err(err).Str("func", "accountRepository.GetAccount").Msg("failed to read sync account")
		return models.SyncAccount{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	account.State = models.AccountState(state)
	return account, nil
}

func (r *accountRepository) SaveAccount(ctx context.Context, account models.SyncAccount) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, upsertAccount,
		account.UserID,
		account.Login,
		account.PrimaryKey,
		account.SecretKey,
		account.Token,
		string(account.State),
	)
	if err != nil {
		log.Err(err).
			Str("func", "accountRepository.SaveAccount").
			Int64("user_id", account.UserID).
			Msg("failed to save sync account")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "accountRepository.SaveAccount").
		Int64("user_id", account.UserID).
		Str("state", string(account.State)).
		Msg("sync account saved")
	return nil
}

func (r *accountRepository) ClearAccount(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, deleteAccount); err != nil {
		log.Err(err).Str("func", "accountRepository.ClearAccount").Msg("failed to clear sync account")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().Str("func", "accountRepository.ClearAccount").Msg("sync account cleared")
	return nil
}

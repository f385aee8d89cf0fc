package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
)

// DB wraps a *sql.DB together with the migrations of its role and an
// optional classifier deciding which driver errors are worth a retry.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	migrate            func(*sql.DB) error
	logger             *logger.Logger
}

// Migrate applies the goose migrations of the role the connection was opened
// for.
func (db *DB) Migrate() error {
	if db.migrate == nil {
		return fmt.Errorf("no migrations configured for this connection")
	}
	return db.migrate(db.DB)
}

// withTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func (db *DB) withTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
)

type localTreeRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewLocalTreeRepository(db *DB, logger *logger.Logger) LocalTreeRepository {
	return &localTreeRepository{
		db:     db,
		logger: logger,
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *localTreeRepository) LoadTree(ctx context.Context) (*bookmarks.Tree, error) {
	log := logger.FromContext(ctx)

	var tree *bookmarks.Tree
	err := r.db.withTx(ctx, nil, func(tx *sql.Tx) error {
		var err error
		tree, err = loadTree(ctx, tx)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "localTreeRepository.LoadTree").Msg("failed to load bookmark tree")
		return nil, err
	}

	log.Debug().Str("func", "localTreeRepository.LoadTree").Int("entities", tree.Len()).Msg("bookmark tree loaded")
	return tree, nil
}

func (r *localTreeRepository) UpdateTree(ctx context.Context, fn func(tree *bookmarks.Tree) error) error {
	log := logger.FromContext(ctx)

	var upserts, removed int
	err := r.db.withTx(ctx, nil, func(tx *sql.Tx) error {
		tree, err := loadTree(ctx, tx)
		if err != nil {
			return err
		}

		if err := fn(tree); err != nil {
			return err
		}

		if err := tree.Validate(); err != nil {
			return err
		}

		changed, gone, _ := tree.Changes()
		upserts, removed = len(changed), len(gone)
		return saveTree(ctx, tx, tree)
	})
	if err != nil {
		log.Err(err).Str("func", "localTreeRepository.UpdateTree").Msg("bookmark tree update rolled back")
		return err
	}

	log.Debug().
		Str("func", "localTreeRepository.UpdateTree").
		Int("upserts", upserts).
		Int("removed", removed).
		Msg("bookmark tree updated")
	return nil
}

func loadTree(ctx context.Context, q queryer) (*bookmarks.Tree, error) {
	rows, err := q.QueryContext(ctx, selectBookmarks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entities []bookmarks.Entity
	for rows.Next() {
		var (
			e          bookmarks.Entity
			parent     sql.NullString
			modifiedAt sql.NullString
		)
		if err := rows.Scan(
			&e.UUID,
			&e.IsFolder,
			&e.Title,
			&e.URL,
			&parent,
			&modifiedAt,
			&e.PendingDeletion,
			&e.Synced,
			&e.ReplacedBy,
		); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}

		e.Parent = parent.String
		if modifiedAt.Valid {
			ts, err := time.Parse(time.RFC3339Nano, modifiedAt.String)
			if err != nil {
				return nil, fmt.Errorf("%w: modified_at of %s: %w", ErrScanningRows, e.UUID, err)
			}
			e.MarkModified(ts)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	favorites, err := loadFavorites(ctx, q)
	if err != nil {
		return nil, err
	}

	return bookmarks.Restore(entities, favorites), nil
}

func loadFavorites(ctx context.Context, q queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx, selectFavorites)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var favorites []string
	for rows.Next() {
		var uuid string
		if err := rows.Scan(&uuid); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		favorites = append(favorites, uuid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return favorites, nil
}

// saveTree writes the recorded changes of tree and forgets them.
func saveTree(ctx context.Context, q queryer, tree *bookmarks.Tree) error {
	upserts, removed, favoritesChanged := tree.Changes()

	if len(removed) > 0 {
		query, args, err := buildDeleteBookmarksQuery(removed)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: delete bookmarks: %w", ErrExecutingStatement, err)
		}
	}

	if favoritesChanged {
		if _, err := q.ExecContext(ctx, clearFavoritePositions); err != nil {
			return fmt.Errorf("%w: clear favorites: %w", ErrExecutingStatement, err)
		}
	}

	for _, e := range upserts {
		if _, err := q.ExecContext(ctx, upsertBookmark, entityArgs(tree, e)...); err != nil {
			return fmt.Errorf("%w: upsert bookmark %s: %w", ErrExecutingStatement, e.UUID, err)
		}
	}

	if favoritesChanged {
		for i, uuid := range tree.Favorites() {
			if _, err := q.ExecContext(ctx, setFavoritePosition, i, uuid); err != nil {
				return fmt.Errorf("%w: favorite %s: %w", ErrExecutingStatement, uuid, err)
			}
		}
	}

	tree.ClearChanges()
	return nil
}

func entityArgs(tree *bookmarks.Tree, e *bookmarks.Entity) []any {
	var parent, modifiedAt, favorite any
	if e.Parent != "" {
		parent = e.Parent
	}
	if e.ModifiedAt != nil {
		modifiedAt = e.ModifiedAt.UTC().Format(time.RFC3339Nano)
	}
	if pos := tree.FavoritePosition(e.UUID); pos >= 0 {
		favorite = pos
	}
	position := max(tree.Position(e.UUID), 0)

	return []any{
		e.UUID,
		e.IsFolder,
		e.Title,
		e.URL,
		parent,
		position,
		favorite,
		modifiedAt,
		e.PendingDeletion,
		e.Synced,
		e.ReplacedBy,
	}
}

// isNoRows reports a missing single-row result.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

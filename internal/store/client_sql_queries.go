// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	selectBookmarks = `
		SELECT
			uuid,
			is_folder,
			title,
			url,
			parent_uuid,
			modified_at,
			pending_deletion,
			synced,
			replaced_by
		FROM bookmarks
		ORDER BY parent_uuid, position, uuid;`

	selectFavorites = `
		SELECT uuid
		FROM bookmarks
		WHERE favorite_position IS NOT NULL
		ORDER BY favorite_position;`

	upsertBookmark = `
		INSERT INTO bookmarks (
			uuid,
			is_folder,
			title,
			url,
			parent_uuid,
			position,
			favorite_position,
			modified_at,
			pending_deletion,
			synced,
			replaced_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (uuid) DO UPDATE SET
			is_folder = excluded.is_folder,
			title = excluded.title,
			url = excluded.url,
			parent_uuid = excluded.parent_uuid,
			position = excluded.position,
			favorite_position = excluded.favorite_position,
			modified_at = excluded.modified_at,
			pending_deletion = excluded.pending_deletion,
			synced = excluded.synced,
			replaced_by = excluded.replaced_by;`

	clearFavoritePositions = `UPDATE bookmarks SET favorite_position = NULL WHERE favorite_position IS NOT NULL;`

	setFavoritePosition = `UPDATE bookmarks SET favorite_position = ? WHERE uuid = ?;`

	selectAccount = `
		SELECT user_id, login, primary_key, secret_key, token, state
		FROM sync_account
		WHERE id = 1;`

	upsertAccount = `
		INSERT INTO sync_account (id, user_id, login, primary_key, secret_key, token, state)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			login = excluded.login,
			primary_key = excluded.primary_key,
			secret_key = excluded.secret_key,
			token = excluded.token,
			state = excluded.state;`

	deleteAccount = `DELETE FROM sync_account;`

	selectOfflineBatch = `
		SELECT batch, modified_since, created_at
		FROM offline_queue
		WHERE user_id = ?;`

	upsertOfflineBatch = `
		INSERT INTO offline_queue (user_id, batch, modified_since, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			batch = excluded.batch,
			modified_since = excluded.modified_since,
			created_at = excluded.created_at;`

	deleteOfflineBatch = `DELETE FROM offline_queue WHERE user_id = ?;`

	selectMetadata = `SELECT value FROM sync_metadata WHERE key = ?;`

	upsertMetadata = `
		INSERT INTO sync_metadata (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	deleteMetadata = `DELETE FROM sync_metadata WHERE key = ?;`
)

const cursorKey = "modified_since"

var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// buildDeleteBookmarksQuery builds one DELETE for every removed uuid.
func buildDeleteBookmarksQuery(uuids []string) (string, []any, error) {
	return sqlite.
		Delete("bookmarks").
		Where(sq.Eq{"uuid": uuids}).
		ToSql()
}

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	createUser = `INSERT INTO users (login, auth_hash)
    VALUES ($1, $2)
    RETURNING user_id, login, auth_hash, revoked, created_at;`

	findUserByLogin = `SELECT user_id, login, auth_hash, revoked, created_at
    FROM users
    WHERE login = $1;`

	findUserByID = `SELECT user_id, login, auth_hash, revoked, created_at
    FROM users
    WHERE user_id = $1;`

	revokeUser = `UPDATE users SET revoked = TRUE WHERE user_id = $1;`

	deleteUserRecords = `DELETE FROM records WHERE user_id = $1;`

	lockUserSeq = `SELECT change_seq, revoked
    FROM users
    WHERE user_id = $1
    FOR UPDATE;`

	advanceUserSeq = `UPDATE users SET change_seq = $2 WHERE user_id = $1;`

	upsertRecord = `INSERT INTO records (user_id, uuid, payload, deleted, seq, updated_at)
    VALUES ($1, $2, $3, $4, $5, NOW())
    ON CONFLICT (user_id, uuid) DO UPDATE SET
        payload = EXCLUDED.payload,
        deleted = EXCLUDED.deleted,
        seq = EXCLUDED.seq,
        updated_at = EXCLUDED.updated_at;`

	purgeTombstones = `DELETE FROM records
    WHERE deleted AND updated_at < $1;`
)

var postgres = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildDeltaQuery selects the records of userID written after since, leaving
// out the uuids the client is sending right now. A full fetch (since == 0)
// leaves out tombstones since the client has nothing to delete yet.
func buildDeltaQuery(userID, since int64, exclude []string) (string, []any, error) {
	query := postgres.
		Select("uuid", "payload", "deleted", "seq", "updated_at").
		From("records").
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Gt{"seq": since})

	if len(exclude) > 0 {
		query = query.Where(sq.NotEq{"uuid": exclude})
	}
	if since == 0 {
		query = query.Where(sq.Eq{"deleted": false})
	}

	return query.OrderBy("seq", "uuid").ToSql()
}

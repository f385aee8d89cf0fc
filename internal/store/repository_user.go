package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/models"
	"github.com/jackc/pgerrcode"
)

type userRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser inserts a new account.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrLoginAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Login, user.PrimaryKey)

	// create user in db
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrLoginAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	// scan saved user from db
	if err := scanUser(row, &user); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrLoginAlreadyExists
		}
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByLogin", findUserByLogin, login)
}

func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findUser(ctx, "*userRepository.FindUserByID", findUserByID, userID)
}

func (r *userRepository) findUser(ctx context.Context, funcName, query string, arg any) (models.User, error) {
	log := logger.FromContext(ctx)

	var foundUser models.User
	err := scanUser(r.db.QueryRowContext(ctx, query, arg), &foundUser)
	if isNoRows(err) || postgresError(err) == pgerrcode.NoDataFound {
		return models.User{}, ErrNoUserWasFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: scanning error")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return foundUser, nil
}

func (r *userRepository) RevokeUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	err := r.db.withTx(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, revokeUser, userID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNoUserWasFound
		}

		if _, err := tx.ExecContext(ctx, deleteUserRecords, userID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*userRepository.RevokeUser").Int64("user_id", userID).Msg("failed to revoke user")
		return err
	}

	log.Info().Str("func", "*userRepository.RevokeUser").Int64("user_id", userID).Msg("user revoked")
	return nil
}

func scanUser(row *sql.Row, user *models.User) error {
	return row.Scan(&user.UserID, &user.Login, &user.PrimaryKey, &user.Revoked, &user.CreatedAt)
}

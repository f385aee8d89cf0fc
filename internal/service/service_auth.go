package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/bookmark-sync/internal/config"
	"github.com/MKhiriev/bookmark-sync/internal/logger"
	"github.com/MKhiriev/bookmark-sync/internal/store"
	"github.com/MKhiriev/bookmark-sync/internal/utils"
	"github.com/MKhiriev/bookmark-sync/internal/validators"
	"github.com/MKhiriev/bookmark-sync/models"
)

// authService is the concrete implementation of AuthService.
// It handles account registration, credential verification, revocation and
// the JWT token lifecycle using a UserRepository for persistence and
// HMAC-SHA256 for hashing the primary keys clients derive.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// validator checks the login and primary key of incoming credentials.
	validator validators.Validator

	// hashKey is the HMAC secret used when hashing primary keys before
	// storage or comparison. Must match the value used at registration time.
	hashKey string

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given UserRepository
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(userRepository store.UserRepository, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		validator:      validators.NewSyncRequestValidator(),
		hashKey:        cfg.PasswordHashKey,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         logger,
	}
}

// RegisterUser creates a new account.
//
// It validates the login and the hex primary key, replaces the key with its
// keyed hash and delegates persistence to the UserRepository.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if the credentials are malformed.
//   - A wrapped storage error if the repository call fails (e.g. login already
//     taken, see store.ErrLoginAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, user); err != nil {
		log.Error().Err(err).Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	a.hashPrimaryKey(&user)
	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, nil
}

// Login authenticates an existing account.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if the credentials are malformed.
//   - A wrapped storage error if the repository lookup fails (e.g. user not
//     found, see store.ErrNoUserWasFound).
//   - ErrWrongPassword if the hashed keys do not match.
//   - store.ErrAccountRevoked if the account was deleted.
func (a *authService) Login(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, user); err != nil {
		log.Error().Err(err).Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	foundUser, err := a.userRepository.FindUserByLogin(ctx, user.Login)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	a.hashPrimaryKey(&user)
	if !utils.EqualHashes(foundUser.PrimaryKey, user.PrimaryKey) {
		log.Error().
			Int64("id", foundUser.UserID).
			Str("login", foundUser.Login).
			Msg("wrong primary key")
		return models.User{}, ErrWrongPassword
	}

	if foundUser.Revoked {
		log.Warn().Int64("id", foundUser.UserID).Msg("login into revoked account")
		return models.User{}, store.ErrAccountRevoked
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT for the given user.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string. Any validation failure
// (expired, wrong issuer, malformed) is normalised to
// ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

func (a *authService) CheckAccount(ctx context.Context, userID int64) error {
	user, err := a.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Revoked {
		return store.ErrAccountRevoked
	}
	return nil
}

func (a *authService) RevokeAccount(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if err := a.userRepository.RevokeUser(ctx, userID); err != nil {
		log.Err(err).Int64("id", userID).Msg("account revocation failed")
		return fmt.Errorf("account revocation failed: %w", err)
	}

	log.Info().Int64("id", userID).Msg("account revoked")
	return nil
}

// hashPrimaryKey replaces the client-derived primary key in user with its
// HMAC-SHA256 hash computed using the service's hashKey.
func (a *authService) hashPrimaryKey(user *models.User) {
	user.PrimaryKey = utils.HashString(user.PrimaryKey, a.hashKey)
}

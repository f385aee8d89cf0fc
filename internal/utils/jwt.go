package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/bookmark-sync/models"
)

var (
	ErrInvalidTokenParams = errors.New("issuer, duration and sign key are required")
	ErrInvalidSubject     = errors.New("token subject is not a user id")
	ErrInvalidAuthHeader  = errors.New("authorization header is not a bearer token")
)

// GenerateJWTToken signs an HS256 token for userID. The subject holds the
// user id.
func GenerateJWTToken(issuer string, userID int64, tokenDuration time.Duration, signKey string) (models.Token, error) {
	if issuer == "" || tokenDuration <= 0 || signKey == "" {
		return models.Token{}, ErrInvalidTokenParams
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
	})
	signed, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("sign token: %w", err)
	}

	return models.Token{Token: token, SignedString: signed, UserID: userID}, nil
}

// ValidateAndParseJWTToken checks the signature, the issuer and the expiry of
// tokenString and returns it with the user id resolved.
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.Token, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Token{}, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Token{}, fmt.Errorf("parse token: %w", err)
	}

	userID, err := subjectUserID(token.Claims)
	if err != nil {
		return models.Token{}, err
	}
	return models.Token{Token: token, SignedString: tokenString, UserID: userID}, nil
}

// ParseUserIDFromJWT reads the subject of a token without verifying it. The
// client uses it to learn its own user id; the server never trusts it.
func ParseUserIDFromJWT(tokenString string) (int64, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	return subjectUserID(token.Claims)
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <t>"
// header value.
func ParseBearerToken(authorizationHeader string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorizationHeader), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

func subjectUserID(claims jwt.Claims) (int64, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSubject, err)
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSubject, sub)
	}
	return id, nil
}

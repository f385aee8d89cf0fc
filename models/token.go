package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the relay server bearer token. It doubles as the claims target
// when a token is parsed, so it embeds both [jwt.Token] and
// [jwt.RegisteredClaims].
type Token struct {
	// Token is the underlying JWT token.
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	// SignedString is the compact form sent in the Authorization header.
	SignedString string `json:"-"`

	// UserID is the account the token was issued for (the "sub" claim).
	UserID int64 `json:"-"`
}

// GetUserID parses the subject claim as the account id.
func (t *Token) GetUserID() (int64, error) {
	userIDString, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// String returns the signed token.
func (t *Token) String() string {
	return t.SignedString
}

package models

import "time"

// User represents a relay server account.
// The server never learns the user's password or data-encryption key; it only
// stores a keyed hash of the derived primary key.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Login is the unique user login identifier.
	Login string `json:"login"`

	// PrimaryKey is the hex-encoded authentication key derived on the client.
	// The server stores only its HMAC.
	PrimaryKey string `json:"primary_key"`

	// Revoked is set when the account was removed. Requests carrying a token
	// of a revoked account are answered with 403.
	Revoked bool `json:"-"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

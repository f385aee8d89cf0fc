// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// AccountState is the lifecycle state of a stored [SyncAccount].
// An unauthenticated device simply has no stored account.
type AccountState string

const (
	// AccountPendingFirstSync is set by signup and login. The next sync pass
	// sends a full snapshot and requests a full fetch.
	AccountPendingFirstSync AccountState = "pending_first_sync"

	// AccountActive is set after the first successful sync pass.
	AccountActive AccountState = "active"
)

// SyncAccount is the credential bundle of the device's sync account.
type SyncAccount struct {
	// UserID is the server-assigned account identifier.
	UserID int64 `json:"user_id"`

	// Login is the account login used to derive the keys.
	Login string `json:"login"`

	// PrimaryKey is the derived authentication key sent to the server.
	PrimaryKey []byte `json:"primary_key"`

	// SecretKey is the derived data-encryption key. It never leaves the
	// device.
	SecretKey []byte `json:"secret_key"`

	// Token is the bearer credential issued by the server. Empty when the
	// device holds keys but no session.
	Token string `json:"token,omitempty"`

	// State is the account lifecycle state.
	State AccountState `json:"state"`
}

// IsPendingFirstSync reports whether the next sync pass must be an initial
// sync.
func (a SyncAccount) IsPendingFirstSync() bool {
	return a.State == AccountPendingFirstSync
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// OfflineBatch is the single durable batch of changes that could not be
// delivered to the server. A newer batch always supersedes the stored one.
type OfflineBatch struct {
	// UserID is the account the batch belongs to.
	UserID int64 `json:"user_id"`

	// Changes are the unsent records in send order.
	Changes []Syncable `json:"changes"`

	// ModifiedSince is the cursor the batch was built against.
	ModifiedSince string `json:"modified_since"`

	// CreatedAt is the time the batch was persisted.
	CreatedAt time.Time `json:"created_at"`
}

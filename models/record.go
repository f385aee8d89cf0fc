// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// StoredRecord is how the relay server keeps one encrypted record. The
// payload is the opaque JSON encoding of the [Syncable] the client sent.
type StoredRecord struct {
	UserID       int64     `json:"user_id"`
	UUID         string    `json:"uuid"`
	Payload      []byte    `json:"payload"`
	Deleted      bool      `json:"deleted"`
	LastModified time.Time `json:"last_modified"`

	// Seq is the per-user change sequence number the record was written
	// under. Cursors handed out to clients are sequence numbers.
	Seq int64 `json:"seq"`
}

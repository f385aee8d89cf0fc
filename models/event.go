// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// SyncEventKind distinguishes completion events of the sync orchestrator.
type SyncEventKind string

const (
	SyncStarted   SyncEventKind = "started"
	SyncSucceeded SyncEventKind = "succeeded"
	SyncFailed    SyncEventKind = "failed"
)

// SyncEvent is published by the sync orchestrator around every sync pass.
type SyncEvent struct {
	Kind SyncEventKind `json:"kind"`

	// Initial reports whether the pass was a first (full) sync.
	Initial bool `json:"initial"`

	// Sent and Received count the records of a succeeded pass.
	Sent     int `json:"sent,omitempty"`
	Received int `json:"received,omitempty"`

	// Violations counts received records the merge could not place.
	Violations int `json:"violations,omitempty"`

	// Err carries the failure of a SyncFailed event.
	Err error `json:"-"`

	At time.Time `json:"at"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// BookmarksRequest is the single request type of the sync protocol: a batch
// of encrypted changes plus the cursor the client last received.
type BookmarksRequest struct {
	// Updates holds upserts and tombstones in the order they should be
	// applied by the server.
	Updates []Syncable `json:"updates"`

	// ModifiedSince is the server-issued cursor. Empty requests a full
	// fetch of everything the account owns.
	ModifiedSince string `json:"modified_since,omitempty"`
}

// BookmarksResponse is the accepted-delta answer of the relay server.
type BookmarksResponse struct {
	// Entries contains every record changed after ModifiedSince, except the
	// records submitted by the request itself. May be empty.
	Entries []Syncable `json:"entries"`

	// LastModified is the new cursor the client stores after a successful
	// round-trip.
	LastModified string `json:"last_modified"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Well-known folder identifiers. Both folders exist on every device, have no
// parent and are never deleted.
const (
	// RootFolderID is the uuid of the top-level bookmarks folder.
	RootFolderID = "bookmarks_root"

	// FavoritesFolderID is the uuid of the favorites pseudo-folder. Its
	// Children list carries the favorites order on the wire; it never owns
	// entities in the folder tree.
	FavoritesFolderID = "favorites_root"
)

// Syncable is the wire representation of a single bookmark tree node as it
// travels between a client and the relay server.
//
// Title and URL are ciphertext produced by the account's crypter; the relay
// server stores them opaquely and never sees plaintext.
type Syncable struct {
	// UUID is the globally unique, immutable identity of the node.
	UUID string `json:"id"`

	// IsFolder distinguishes folders from bookmarks.
	IsFolder bool `json:"is_folder,omitempty"`

	// ParentUUID references the folder that owns the node. Nil for the two
	// well-known roots.
	ParentUUID *string `json:"parent,omitempty"`

	// Children is the ordered list of child uuids. Only meaningful for
	// folders.
	Children []string `json:"children,omitempty"`

	// Title is the encrypted display title.
	Title string `json:"title,omitempty"`

	// URL is the encrypted page address. Empty for folders.
	URL string `json:"url,omitempty"`

	// NextItemUUID points to the next sibling inside the parent folder.
	NextItemUUID *string `json:"next_item,omitempty"`

	// IsFavorite reports membership in the favorites list.
	IsFavorite bool `json:"is_favorite,omitempty"`

	// NextFavoriteUUID points to the next entry of the favorites list.
	NextFavoriteUUID *string `json:"next_favorite,omitempty"`

	// Deleted marks a tombstone. Its presence, not its value, signals the
	// deletion.
	Deleted *string `json:"deleted,omitempty"`

	// ClientLastModified is the local edit time on the sending device.
	ClientLastModified *time.Time `json:"client_last_modified,omitempty"`
}

// IsDeleted reports whether the record is a tombstone.
func (s Syncable) IsDeleted() bool {
	return s.Deleted != nil
}

// Parent returns the parent uuid or an empty string when none is set.
func (s Syncable) Parent() string {
	if s.ParentUUID == nil {
		return ""
	}
	return *s.ParentUUID
}

// NewTombstone builds a deletion record for uuid.
func NewTombstone(uuid string) Syncable {
	marker := ""
	return Syncable{UUID: uuid, Deleted: &marker}
}

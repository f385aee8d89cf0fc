package service

import (
	"fmt"

	"github.com/MKhiriev/bookmark-sync/internal/bookmarks"
	"github.com/MKhiriev/bookmark-sync/internal/crypto"
	"github.com/MKhiriev/bookmark-sync/models"
)

// toSyncable encodes e into its wire record. Title and URL are encrypted with
// crypter; the sibling and favorites pointers are read from tree. An entity
// pending deletion is encoded as a tombstone.
func toSyncable(e *bookmarks.Entity, tree *bookmarks.Tree, crypter crypto.Crypter) (models.Syncable, error) {
	if e.PendingDeletion {
		return models.NewTombstone(e.UUID), nil
	}

	rec := models.Syncable{
		UUID:     e.UUID,
		IsFolder: e.IsFolder,
	}

	var err error
	if rec.Title, err = encryptField(crypter, e.Title); err != nil {
		return models.Syncable{}, fmt.Errorf("%w: title of %s: %w", ErrEncryption, e.UUID, err)
	}
	if !e.IsFolder {
		if rec.URL, err = encryptField(crypter, e.URL); err != nil {
			return models.Syncable{}, fmt.Errorf("%w: url of %s: %w", ErrEncryption, e.UUID, err)
		}
	}

	if e.Parent != "" {
		rec.ParentUUID = stringPtr(e.Parent)
		if next, ok := nextLiveSibling(tree, e); ok {
			rec.NextItemUUID = stringPtr(next)
		}
	}

	switch {
	case e.UUID == models.FavoritesFolderID:
		rec.Children = tree.Favorites()
	case e.IsFolder:
		rec.Children = liveChildren(tree, e)
	}

	if tree.IsFavorite(e.UUID) {
		rec.IsFavorite = true
		if next, ok := tree.NextFavorite(e.UUID); ok {
			rec.NextFavoriteUUID = stringPtr(next)
		}
	}

	if e.ModifiedAt != nil {
		ts := *e.ModifiedAt
		rec.ClientLastModified = &ts
	}

	return rec, nil
}

// applyToEntity decrypts rec and writes its fields into e. The uuid of e is
// never touched and the well-known folders keep their own fields. Nothing is
// written when decryption fails.
func applyToEntity(rec models.Syncable, e *bookmarks.Entity, crypter crypto.Crypter) error {
	title, url, err := decodeFields(rec, crypter)
	if err != nil {
		return err
	}
	if e.IsRoot() {
		return nil
	}

	e.IsFolder = rec.IsFolder
	e.Title = title
	e.URL = url
	if e.IsFolder {
		e.URL = ""
	}
	return nil
}

// decodeFields returns the plaintext title and URL of rec.
func decodeFields(rec models.Syncable, crypter crypto.Crypter) (title, url string, err error) {
	if title, err = decryptField(crypter, rec.Title); err != nil {
		return "", "", fmt.Errorf("%w: title of %s: %w", ErrEncryption, rec.UUID, err)
	}
	if rec.IsFolder {
		return title, "", nil
	}
	if url, err = decryptField(crypter, rec.URL); err != nil {
		return "", "", fmt.Errorf("%w: url of %s: %w", ErrEncryption, rec.UUID, err)
	}
	return title, url, nil
}

func encryptField(crypter crypto.Crypter, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	return crypter.Encrypt(plaintext)
}

func decryptField(crypter crypto.Crypter, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	return crypter.Decrypt(ciphertext)
}

// liveChildren returns the children of folder that are not pending deletion.
func liveChildren(tree *bookmarks.Tree, folder *bookmarks.Entity) []string {
	out := make([]string, 0, len(folder.Children))
	for _, uuid := range folder.Children {
		if c, ok := tree.Get(uuid); ok && !c.PendingDeletion {
			out = append(out, uuid)
		}
	}
	return out
}

func nextLiveSibling(tree *bookmarks.Tree, e *bookmarks.Entity) (string, bool) {
	for cur := e.UUID; ; {
		next, ok := tree.NextSibling(cur)
		if !ok {
			return "", false
		}
		if n, ok := tree.Get(next); ok && !n.PendingDeletion {
			return next, true
		}
		cur = next
	}
}

func stringPtr(s string) *string {
	return &s
}

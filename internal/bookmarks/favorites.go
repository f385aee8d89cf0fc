package bookmarks

import (
	"fmt"
	"slices"
)

// Favorites returns a copy of the favorites ordering.
func (t *Tree) Favorites() []string {
	return slices.Clone(t.favorites)
}

// IsFavorite reports whether uuid is in the favorites list.
func (t *Tree) IsFavorite(uuid string) bool {
	return slices.Contains(t.favorites, uuid)
}

// FavoritePosition returns the index of uuid in the favorites list or -1.
func (t *Tree) FavoritePosition(uuid string) int {
	return slices.Index(t.favorites, uuid)
}

// NextFavorite returns the favorite following uuid.
func (t *Tree) NextFavorite(uuid string) (string, bool) {
	i := slices.Index(t.favorites, uuid)
	if i < 0 || i+1 >= len(t.favorites) {
		return "", false
	}
	return t.favorites[i+1], true
}

// AppendFavorite adds a bookmark to the end of the favorites list. Adding an
// existing favorite moves it to the end.
func (t *Tree) AppendFavorite(uuid string) error {
	e, ok := t.entities[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	if e.IsFolder {
		return fmt.Errorf("%w: folders cannot be favorites: %s", ErrInvalidEntity, uuid)
	}
	t.RemoveFavorite(uuid)
	t.favorites = append(t.favorites, uuid)
	t.favoritesChanged = true
	return nil
}

// RemoveFavorite drops uuid from the favorites list and reports whether it
// was present.
func (t *Tree) RemoveFavorite(uuid string) bool {
	i := slices.Index(t.favorites, uuid)
	if i < 0 {
		return false
	}
	t.favorites = slices.Delete(t.favorites, i, i+1)
	t.favoritesChanged = true
	return true
}

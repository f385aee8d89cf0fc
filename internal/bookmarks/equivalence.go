package bookmarks

import (
	"net/url"
	"strings"
)

// Equivalent reports whether e and the given content describe the same
// bookmark or folder. Folders match on title; bookmarks match on title and
// URL. Titles are compared after whitespace normalization. URLs are compared
// with a lower-cased scheme and host and without a trailing slash.
func Equivalent(e *Entity, isFolder bool, title, rawURL string) bool {
	if e.IsFolder != isFolder {
		return false
	}
	if NormalizeTitle(e.Title) != NormalizeTitle(title) {
		return false
	}
	if isFolder {
		return true
	}
	return NormalizeURL(e.URL) == NormalizeURL(rawURL)
}

// NormalizeTitle trims the title and collapses inner whitespace.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

// NormalizeURL returns the comparison form of a bookmark address.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" {
		return strings.TrimSuffix(trimmed, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.RawQuery == "" && u.Fragment == "" {
		u.Path = strings.TrimSuffix(u.Path, "/")
		u.RawPath = ""
	}
	return strings.TrimSuffix(u.String(), "/")
}

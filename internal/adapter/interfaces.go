// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client transport to the relay server.
//
// [ServerAdapter] decouples the service layer from HTTP. Error values defined
// in errors.go are mapped from status codes by mapHTTPError so callers can
// use [errors.Is] (e.g. [ErrForbidden] for 403, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/bookmark-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines communication with the relay server.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to authenticated requests.
	SetToken(token string)

	// Token returns the stored bearer token or an empty string.
	Token() string

	// Signup creates an account for user.Login authenticated by
	// user.PrimaryKey. On success the bearer token is stored and the
	// returned user carries the server-assigned UserID.
	Signup(ctx context.Context, user models.User) (models.User, error)

	// Login authenticates an existing account. Same result contract as
	// Signup.
	Login(ctx context.Context, user models.User) (models.User, error)

	// DeleteAccount revokes the authenticated account on the server. Every
	// other device of the account gets 403 from then on.
	DeleteAccount(ctx context.Context) error

	// SyncBookmarks submits local changes and returns the remote delta
	// since req.ModifiedSince together with the new cursor. A 403 is
	// returned as [ErrForbidden].
	SyncBookmarks(ctx context.Context, req models.BookmarksRequest) (models.BookmarksResponse, error)

	// ServerVersion returns the relay server build version.
	ServerVersion(ctx context.Context) (string, error)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the message strings the relay server writes into
// error response bodies. The client matches on the same constants to turn a
// response back into a typed error.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded or fails basic validation.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLoginPassword is returned when the login is unknown or the
	// primary key does not match.
	MsgInvalidLoginPassword = "invalid login/password"

	// MsgLoginAlreadyExists is returned by signup for a taken login.
	MsgLoginAlreadyExists = "login already exists"

	// MsgInternalServerError is returned for unexpected server-side failures.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a bearer token is expired
	// or cannot be verified.
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgNoTokenProvided is returned when the Authorization header is
	// missing or malformed.
	MsgNoTokenProvided = "no token provided"

	// MsgAccountRevoked is returned with 403 for every request of a deleted
	// account.
	MsgAccountRevoked = "account was revoked"

	// MsgInvalidCursor is returned when modified_since was not issued by the
	// server.
	MsgInvalidCursor = "invalid modified_since cursor"

	// MsgRegistrationFailed and MsgLoginFailed are returned when the account
	// store fails while authenticating.
	MsgRegistrationFailed = "registration failed"
	MsgLoginFailed        = "login failed"
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// relay server and the client. It is populated by merging defaults,
// environment variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to nested env lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token, hashing and logging settings.
	App App `envPrefix:"APP_"`

	// Storage holds the database connection settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address and timeouts of the relay server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the relay server address as seen by the client.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds background job intervals.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for storage backends.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds application-level configuration values.
type App struct {
	// PasswordHashKey is the HMAC key used to hash the primary key the
	// client sends as its credential.
	// Env: APP_PASSWORD_HASH_KEY
	PasswordHashKey string `env:"PASSWORD_HASH_KEY"`

	// TokenSignKey signs and verifies JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration specifies how long a token remains valid.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// Version is exposed via the /api/version/ endpoint.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogFile is the client log file path. Rotated by size.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Server holds network and timeout settings of the relay server.
type Server struct {
	// HTTPAddress is the listen address in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the maximum duration of a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds the database connection settings. The server expects a
// PostgreSQL DSN, the client a SQLite file path.
type DB struct {
	// DSN is the data source name.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the client view of the relay server.
type Adapter struct {
	// HTTPAddress is the base URL or host:port of the relay server.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds background job settings.
type Workers struct {
	// SyncInterval is the period of the client sync job.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// TombstoneRetention is how long the relay keeps tombstones before the
	// cleanup worker purges them.
	// Env: WORKERS_TOMBSTONE_RETENTION
	TombstoneRetention time.Duration `env:"TOMBSTONE_RETENTION"`

	// CleanupInterval is the period of the tombstone cleanup worker.
	// Env: WORKERS_CLEANUP_INTERVAL
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL"`
}

// GetStructuredConfig loads, merges and validates the configuration from
// all sources in priority order (later sources override non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags parsed from args
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults(serverDefaults()).
		withEnv().
		withFlags(args).
		withJSON().
		build()
}

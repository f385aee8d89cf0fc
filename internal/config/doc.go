// Package config provides configuration loading, merging and validation for
// the relay server and the client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags (server) or CLI overrides (client)
//  4. JSON config file
//
// The entry points are [GetServerConfig] and [GetClientConfig].
package config

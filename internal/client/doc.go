// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the client application runtime.
//
// It wires the local store, the relay adapter and the client services into
// one process, and runs the periodic sync for the daemon mode.
package client

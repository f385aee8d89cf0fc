// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/bookmark-sync/models"
)

// Client defines the lifecycle contract of a long-running client process.
type Client interface {
	// Run blocks until ctx is cancelled, reporting every sync pass to
	// onEvent.
	Run(ctx context.Context, onEvent func(models.SyncEvent)) error

	// Close releases the resources owned by the client.
	Close() error
}

var _ Client = (*App)(nil)

// Package workers provides the background jobs of the relay server.
// It defines the Worker interface and a Workers aggregate that runs every
// worker until the shared context is cancelled.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is cancelled. Failures of a single iteration are
// logged by the worker and never stop it.
type Worker interface {
	Run(ctx context.Context)
}

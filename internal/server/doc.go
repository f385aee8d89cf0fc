// Package server runs the relay: the HTTP transport and the background
// workers, including signal handling and graceful shutdown.
package server

// Package http implements the HTTP transport layer of the relay server.
//
// It exposes route wiring, request handlers, and middleware used by the REST
// API. Request tracing, access logging, response compression and bearer
// authentication are handled in this package before requests are delegated
// to the service layer. A revoked account is answered with 403 on every
// authenticated route.
package http

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func relayRouter() *chi.Mux {
	ok := func(status int) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(status) }
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/signup", ok(http.StatusCreated))
		r.Get("/api/version/", ok(http.StatusOK))
	})
	router.Group(func(r chi.Router) {
		r.Patch("/api/sync/bookmarks", ok(http.StatusOK))
		r.Delete("/api/auth/account", ok(http.StatusNoContent))
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))
	return router
}

func TestCheckHTTPMethod(t *testing.T) {
	router := relayRouter()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPatch, "/api/sync/bookmarks", http.StatusOK},
		{http.MethodGet, "/api/sync/bookmarks", http.StatusNotFound},
		{http.MethodPost, "/api/sync/bookmarks", http.StatusNotFound},
		{http.MethodPost, "/api/auth/signup", http.StatusCreated},
		{http.MethodGet, "/api/auth/signup", http.StatusNotFound},
		{http.MethodDelete, "/api/auth/account", http.StatusNoContent},
		{http.MethodPut, "/api/auth/account", http.StatusNotFound},
		{http.MethodGet, "/api/version/", http.StatusOK},
		{http.MethodDelete, "/api/version/", http.StatusNotFound},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestCheckHTTPMethod_ServesMatchingRequest(t *testing.T) {
	router := relayRouter()
	rr := httptest.NewRecorder()

	CheckHTTPMethod(router)(rr, httptest.NewRequest(http.MethodPatch, "/api/sync/bookmarks", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

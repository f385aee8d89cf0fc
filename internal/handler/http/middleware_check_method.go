// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod is registered as the MethodNotAllowed handler of router.
// A known path requested with an unregistered method gets 404 instead of
// chi's 405, so the relay does not reveal which routes exist. A request the
// router can serve is passed on.
func CheckHTTPMethod(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if router.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	}
}

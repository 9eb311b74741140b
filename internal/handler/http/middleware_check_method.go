// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod is the router's MethodNotAllowed handler. The relay does
// not advertise its routes: a known path requested with an unsupported
// method gets 404 Not Found, exactly like an unknown path.
//
// Usage:
//
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router chi.Routes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, route := range router.Routes() {
			if route.Pattern != r.URL.Path {
				continue
			}
			if _, ok := route.Handlers[strings.ToUpper(r.Method)]; ok {
				// reachable only if chi matched the method elsewhere
				route.Handlers[strings.ToUpper(r.Method)].ServeHTTP(w, r)
				return
			}
			break
		}

		http.NotFound(w, r)
	}
}

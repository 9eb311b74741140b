package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// plain request/response routes
	router.Group(func(r chi.Router) {
		if h.requestTimeout > 0 {
			r.Use(middleware.Timeout(h.requestTimeout))
		}
		r.Post("/register", h.register)
		r.Get("/health", h.health)
	})

	// long-lived channel, authorized by the registration token
	router.Group(func(r chi.Router) {
		r.Use(h.withDeviceToken)
		r.Get("/ws", h.channel)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}

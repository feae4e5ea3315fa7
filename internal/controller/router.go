package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/ws", c.serveWS)

	r.Route("/stream/{room}", func(r chi.Router) {
		r.Get("/", c.streamLive)
		r.Get("/current", c.streamCurrent)
	})

	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/", c.listRooms)
		r.Post("/", c.createRoom)
		r.Route("/{room}", func(r chi.Router) {
			r.Delete("/", c.removeRoom)
			r.Get("/history", c.roomHistory)
		})
	})

	return r
}

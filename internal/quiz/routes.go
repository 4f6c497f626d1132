package quiz

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Post("/", h.Publish)
	r.Get("/{id}", h.GetByID)
	return r
}

func PublishedRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListPublished)
	return r
}

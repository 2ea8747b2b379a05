package server

import "github.com/go-chi/chi/v5"

// SetupRoutes registers the API routes.
func SetupRoutes(router chi.Router, h *Handlers) {
	router.Get("/", h.Index)
	router.Post("/analyze/{kind}", h.Analyze)
	router.Post("/upload_and_analyze", h.UploadAndAnalyze)
}

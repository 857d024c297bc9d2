package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/faceid/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	facesHandler := handlers.NewFacesHandler(s.service)
	healthHandler := handlers.NewHealthHandler(s.service, s.backend)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		// Faces
		r.Get("/faces", facesHandler.List)
		r.Post("/faces/register", facesHandler.Register)
		r.Post("/faces/recognize", facesHandler.Recognize)
		r.Get("/faces/{id}", facesHandler.Get)
		r.Delete("/faces/{id}", facesHandler.Delete)
	})
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

const requestTimeout = 60 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.NotFound(s.handleNotFound)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	if s.FilesDir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(s.FilesDir))))
	}

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))
		r.Use(s.identityMiddleware)

		// Anonymous callers are allowed here; visibility rules still apply.
		r.Get("/sets", s.handleListSets)
		r.Get("/sets/{id}", s.handleGetSet)
		r.Get("/sets/{id}/flashcards", s.handleListFlashcards)
		r.Get("/shared/{token}", s.handleResolveLink)

		r.Group(func(r chi.Router) {
			r.Use(requireIdentity)

			r.Get("/auth/profile", s.handleGetProfile)
			r.Put("/auth/profile", s.handleUpdateProfile)
			r.Get("/auth/stats", s.handleUserStats)
			r.Delete("/auth/account", s.handleDeleteAccount)

			r.Post("/sets", s.handleCreateSet)
			r.Put("/sets/{id}", s.handleUpdateSet)
			r.Delete("/sets/{id}", s.handleDeleteSet)
			r.Post("/sets/{id}/favorite", s.handleAddFavorite)
			r.Delete("/sets/{id}/favorite", s.handleRemoveFavorite)
			r.Get("/favorites", s.handleListFavorites)

			r.Post("/sets/{id}/flashcards", s.handleCreateFlashcard)
			r.Post("/sets/{id}/flashcards/bulk", s.handleBulkCreateFlashcards)
			r.Put("/flashcards/{id}", s.handleUpdateFlashcard)
			r.Delete("/flashcards/{id}", s.handleDeleteFlashcard)

			r.Get("/sets/{id}/collaborators", s.handleListCollaborators)
			r.Post("/sets/{id}/collaborators", s.handleAddCollaborator)
			r.Put("/sets/{id}/collaborators/{collaboratorID}", s.handleUpdateCollaborator)
			r.Delete("/sets/{id}/collaborators/{collaboratorID}", s.handleRemoveCollaborator)

			r.Get("/sets/{id}/share", s.handleListLinks)
			r.Post("/sets/{id}/share", s.handleCreateLink)
			r.Delete("/share/{token}", s.handleRevokeLink)

			r.Route("/study", func(r chi.Router) {
				r.Post("/session/start", s.handleStartSession)
				r.Put("/session/{id}/end", s.handleEndSession)
				r.Post("/progress", s.handleRecordProgress)
				r.Get("/stats/{setID}", s.handleStudyStats)
				r.Get("/recommended/{setID}", s.handleRecommended)
				r.Post("/multiple-choice", s.handleMultipleChoice)
				r.Get("/matching/{setID}", s.handleMatchingRound)
				r.Post("/matching/{setID}/grade", s.handleGradeMatching)
				r.Post("/suggestions", s.handleSuggestions)
			})

			r.Post("/ai/generate", s.handleGenerate)
		})
	})

	// Uploads stream large bodies, so they sit outside the buffered timeout handler.
	r.Group(func(r chi.Router) {
		r.Use(s.identityMiddleware)
		r.Use(requireIdentity)
		r.Post("/uploads/image", s.handleUploadImage)
		r.Post("/uploads/document", s.handleUploadDocument)
		r.Delete("/uploads", s.handleDeleteUpload)
	})

	return s.cors().Handler(r)
}

func (s *Server) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   s.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

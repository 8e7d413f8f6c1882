package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/services"
)

type flashcardRequest struct {
	Term          string  `json:"term" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	ImageURL      *string `json:"image_url"`
	AIReviewNotes *string `json:"ai_review_notes"`
}

func (f flashcardRequest) input() services.CardInput {
	return services.CardInput{
		Term:          f.Term,
		Description:   f.Description,
		ImageURL:      f.ImageURL,
		AIReviewNotes: f.AIReviewNotes,
	}
}

type bulkFlashcardsRequest struct {
	Flashcards []flashcardRequest `json:"flashcards" validate:"required,min=1,max=200,dive"`
}

type updateFlashcardRequest struct {
	Term          *string `json:"term"`
	Description   *string `json:"description"`
	ImageURL      *string `json:"image_url"`
	AIReviewNotes *string `json:"ai_review_notes"`
}

func (s *Server) handleListFlashcards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.FlashcardService.ListFlashcards(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req flashcardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.CreateFlashcard(r.Context(), userID(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleBulkCreateFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req bulkFlashcardsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	in := make([]services.CardInput, len(req.Flashcards))
	for i, f := range req.Flashcards {
		in[i] = f.input()
	}
	cards, err := s.FlashcardService.BulkCreateFlashcards(r.Context(), userID(r), chi.URLParam(r, "id"), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("bulk created %d flashcards", len(cards))
	writeJSON(w, http.StatusCreated, cards)
}

func (s *Server) handleUpdateFlashcard(w http.ResponseWriter, r *http.Request) {
	var req updateFlashcardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.FlashcardService.UpdateFlashcard(r.Context(), userID(r), chi.URLParam(r, "id"), models.FlashcardPatch{
		Term:          req.Term,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		AIReviewNotes: req.AIReviewNotes,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	if err := s.FlashcardService.DeleteFlashcard(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

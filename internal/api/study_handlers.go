package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/brainyflash/internal/models"
)

type startSessionRequest struct {
	SetID string `json:"set_id" validate:"required"`
	Mode  string `json:"mode" validate:"required"`
}

type endSessionRequest struct {
	CardsStudied     int `json:"cards_studied" validate:"min=0"`
	CorrectAnswers   int `json:"correct_answers" validate:"min=0"`
	TotalTimeSeconds int `json:"total_time_seconds" validate:"min=0"`
}

type recordProgressRequest struct {
	FlashcardID string `json:"flashcard_id" validate:"required"`
	IsCorrect   *bool  `json:"is_correct" validate:"required"`
	Difficulty  string `json:"difficulty"`
}

type multipleChoiceRequest struct {
	FlashcardID string `json:"flashcard_id" validate:"required"`
	Count       int    `json:"count" validate:"min=0"`
}

type gradeMatchingRequest struct {
	Picks []models.MatchingPick `json:"picks" validate:"required,min=1"`
}

type suggestionsRequest struct {
	SetID string `json:"set_id" validate:"required"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.StudyService.StartSession(r.Context(), userID(r), req.SetID, req.Mode)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	var req endSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	session, err := s.StudyService.EndSession(r.Context(), userID(r), chi.URLParam(r, "id"), models.SessionResult{
		CardsStudied:     req.CardsStudied,
		CorrectAnswers:   req.CorrectAnswers,
		TotalTimeSeconds: req.TotalTimeSeconds,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	var req recordProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	progress, err := s.StudyService.RecordProgress(r.Context(), userID(r), req.FlashcardID, *req.IsCorrect, req.Difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleStudyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StudyService.StudyStats(r.Context(), userID(r), chi.URLParam(r, "setID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRecommended(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	cards, err := s.StudyService.Recommended(r.Context(), userID(r), chi.URLParam(r, "setID"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleMultipleChoice(w http.ResponseWriter, r *http.Request) {
	var req multipleChoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	q, err := s.StudyService.MultipleChoice(r.Context(), userID(r), req.FlashcardID, req.Count)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleMatchingRound(w http.ResponseWriter, r *http.Request) {
	size, err := queryInt(r, "size", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	round, err := s.StudyService.MatchingRound(r.Context(), userID(r), chi.URLParam(r, "setID"), size)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleGradeMatching(w http.ResponseWriter, r *http.Request) {
	var req gradeMatchingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	grade, err := s.StudyService.GradeMatching(r.Context(), userID(r), chi.URLParam(r, "setID"), req.Picks)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grade)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	out, err := s.StudyService.Suggestions(r.Context(), userID(r), req.SetID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

package api

import (
	"net/http"

	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/services"
)

type generateRequest struct {
	SetID     string `json:"set_id"`
	Text      string `json:"text" validate:"required"`
	Delimiter string `json:"delimiter" validate:"max=10"`
	Count     int    `json:"count" validate:"min=0,max=50"`
	Save      bool   `json:"save"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.GenerationService.Generate(r.Context(), userID(r), services.GenerateInput{
		SetID:     req.SetID,
		Text:      req.Text,
		Delimiter: req.Delimiter,
		Count:     req.Count,
		Save:      req.Save,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("generated %d flashcards (parsed=%d, partial=%t)", len(result.Pairs), result.ParsedCount, result.Partial)
	status := http.StatusOK
	if req.Save {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

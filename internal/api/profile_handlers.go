package api

import (
	"net/http"

	"github.com/vytor/brainyflash/internal/logger"
	"github.com/vytor/brainyflash/internal/models"
)

type updateProfileRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=30"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.ProfileService.GetProfile(r.Context(), userID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	profile, err := s.ProfileService.UpdateProfile(r.Context(), userID(r), models.ProfilePatch{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ProfileService.UserStats(r.Context(), userID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := s.ProfileService.DeleteAccount(r.Context(), userID(r)); err != nil {
		handleError(w, r, err)
		return
	}
	log.Info("account deleted")
	w.WriteHeader(http.StatusNoContent)
}

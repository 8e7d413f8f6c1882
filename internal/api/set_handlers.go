package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/brainyflash/internal/models"
	"github.com/vytor/brainyflash/internal/services"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type createSetRequest struct {
	Title           string   `json:"title" validate:"required,max=200"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags" validate:"max=20,dive,max=50"`
	IsPublic        bool     `json:"is_public"`
	IsCollaborative bool     `json:"is_collaborative"`
}

type updateSetRequest struct {
	Title           *string   `json:"title" validate:"omitempty,max=200"`
	Description     *string   `json:"description"`
	Tags            *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	IsPublic        *bool     `json:"is_public"`
	IsCollaborative *bool     `json:"is_collaborative"`
}

func (s *Server) handleListSets(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	publicOnly, err := queryBool(r, "public_only")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	sets, err := s.SetService.ListSets(r.Context(), userID(r), models.SetFilter{
		Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		Tags:       queryList(r, "tags"),
		PublicOnly: publicOnly,
		OwnerID:    r.URL.Query().Get("owner_id"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleGetSet(w http.ResponseWriter, r *http.Request) {
	detail, err := s.SetService.GetSet(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateSet(w http.ResponseWriter, r *http.Request) {
	var req createSetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	set, err := s.SetService.CreateSet(r.Context(), userID(r), services.SetInput{
		Title:           req.Title,
		Description:     req.Description,
		Tags:            req.Tags,
		IsPublic:        req.IsPublic,
		IsCollaborative: req.IsCollaborative,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req updateSetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	set, err := s.SetService.UpdateSet(r.Context(), userID(r), chi.URLParam(r, "id"), models.SetPatch{
		Title:           req.Title,
		Description:     req.Description,
		Tags:            req.Tags,
		IsPublic:        req.IsPublic,
		IsCollaborative: req.IsCollaborative,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	if err := s.SetService.DeleteSet(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.SetService.AddFavorite(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"favorited": true})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.SetService.RemoveFavorite(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	sets, err := s.SetService.ListFavorites(r.Context(), userID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type addCollaboratorRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Permission string `json:"permission"`
}

type updateCollaboratorRequest struct {
	Permission string `json:"permission" validate:"required"`
}

type createLinkRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

func (s *Server) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	list, err := s.CollaboratorService.ListCollaborators(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddCollaborator(w http.ResponseWriter, r *http.Request) {
	var req addCollaboratorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	collab, err := s.CollaboratorService.AddCollaborator(r.Context(), userID(r), chi.URLParam(r, "id"), req.Email, req.Permission)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, collab)
}

func (s *Server) handleUpdateCollaborator(w http.ResponseWriter, r *http.Request) {
	var req updateCollaboratorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	collab, err := s.CollaboratorService.UpdateCollaborator(r.Context(), userID(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "collaboratorID"), req.Permission)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collab)
}

func (s *Server) handleRemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	err := s.CollaboratorService.RemoveCollaborator(r.Context(), userID(r),
		chi.URLParam(r, "id"), chi.URLParam(r, "collaboratorID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.SharingService.ListLinks(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	// The body is optional: no body means a link that never expires.
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			handleError(w, r, err)
			return
		}
	}

	link, err := s.SharingService.CreateLink(r.Context(), userID(r), chi.URLParam(r, "id"), req.ExpiresAt)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (s *Server) handleResolveLink(w http.ResponseWriter, r *http.Request) {
	shared, err := s.SharingService.ResolveLink(r.Context(), userID(r), chi.URLParam(r, "token"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, shared)
}

func (s *Server) handleRevokeLink(w http.ResponseWriter, r *http.Request) {
	if err := s.SharingService.RevokeLink(r.Context(), userID(r), chi.URLParam(r, "token")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

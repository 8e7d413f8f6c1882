package api

import (
	"database/sql"
	"net/http"

	"github.com/vytor/brainyflash/internal/identity"
	"github.com/vytor/brainyflash/internal/services"
)

// Server holds the dependencies shared by every HTTP handler.
type Server struct {
	DB       *sql.DB
	Verifier identity.Verifier

	ProfileService      services.ProfileService
	SetService          services.SetService
	FlashcardService    services.FlashcardService
	CollaboratorService services.CollaboratorService
	SharingService      services.SharingService
	StudyService        services.StudyService
	GenerationService   services.GenerationService
	UploadService       services.UploadService

	CORSAllowedOrigins []string
	MaxUploadBytes     int64
	// FilesDir is served under /files/ when blobs are stored on local disk.
	FilesDir string
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody("NOT_FOUND", "route not found"))
}

package api

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/vytor/brainyflash/internal/errors"
	"github.com/vytor/brainyflash/internal/services"
)

// multipartOverhead leaves room for form boundaries and headers around the file part.
const multipartOverhead = 64 << 10

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, services.UploadImage)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, services.UploadDocument)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, kind services.UploadKind) {
	if s.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			handleError(w, r, errors.NewValidationError("file", "is too large"))
			return
		}
		handleError(w, r, errors.NewBadRequestError("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		contentType = http.DetectContentType(buf[:n])
		if _, err := file.Seek(0, 0); err != nil {
			handleError(w, r, errors.NewInternalError(err))
			return
		}
	}

	result, err := s.UploadService.Upload(r.Context(), userID(r), kind, contentType, header.Size, file)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		handleError(w, r, errors.NewValidationError("url", "is required"))
		return
	}
	if err := s.UploadService.DeleteUpload(r.Context(), userID(r), url); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

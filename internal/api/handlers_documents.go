package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrodesk/app"
	"agrodesk/internal/errors"
)

const maxUploadBytes = 50 << 20

func (s *Server) documentRoutes(r chi.Router) {
	r.Get("/", s.handleListDocuments)
	r.Post("/", s.handleUploadDocument)
	r.Delete("/{id}", s.handleDeleteDocument)
	r.Get("/{id}/url", s.handleDocumentURL)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.services.Documents.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleUploadDocument accepts multipart/form-data with a "file" part and
// name, description and category fields
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		s.writeError(w, r, errors.InvalidInput("invalid multipart upload: "+err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.InvalidInput("missing file part"))
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	var description *string
	if d := r.FormValue("description"); d != "" {
		description = &d
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := s.services.Documents.Upload(r.Context(), session, app.Upload{
		Name:        name,
		Description: description,
		Category:    r.FormValue("category"),
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Documents.Delete(r.Context(), session, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDocumentURL(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	url, err := s.services.Documents.URL(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

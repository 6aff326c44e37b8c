package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agrodesk/domain/core"
	"agrodesk/internal/errors"
	"agrodesk/models"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	maxBodyBytes = 1 << 20
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code. Server-side failures are logged
// and answered with the status text only.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", r.Method, r.URL.Path, err)
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: errors.GetCode(err), Message: message}})
}

func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.InvalidInput(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// sessionFrom reads the caller identity forwarded by the gateway. Missing
// headers yield an anonymous session; malformed ones are an error.
func sessionFrom(r *http.Request) (models.Session, error) {
	raw := strings.TrimSpace(r.Header.Get(headerUserID))
	if raw == "" {
		return models.Session{}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return models.Session{}, errors.Unauthorized("malformed " + headerUserID + " header")
	}
	role, err := models.ParseRole(r.Header.Get(headerUserRole))
	if err != nil {
		return models.Session{}, err
	}
	return models.NewSession(id, role), nil
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	return core.ParseID(chi.URLParam(r, name))
}

func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, core.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

func dateQuery(r *http.Request, name string) (core.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, core.NewValidationError(name, "must be a yyyy-mm-dd date")
	}
	return d, nil
}

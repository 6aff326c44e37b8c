package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agrodesk/domain/core"
	"agrodesk/internal/errors"
	"agrodesk/models"
)

const (
	contentTypeHTML     = "text/html; charset=utf-8"
	contentTypeMarkdown = "text/markdown; charset=utf-8"
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) trialRoutes(r chi.Router) {
	r.Get("/", s.handleListTrials)
	r.Post("/", s.handleCreateTrial)
	r.Get("/latest", s.handleLatestTrials)
	r.Get("/summary", s.handleTrialSummary)
	r.Get("/next-code", s.handleNextTrialCode)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetTrial)
		r.Put("/", s.handleUpdateTrial)
		r.Delete("/", s.handleDeleteTrial)
		r.Get("/details", s.handleTrialDetails)

		r.Post("/treatments", addChild(s, s.services.Trials.AddTreatment))
		r.Post("/plots", addChild(s, s.services.Trials.AddPlot))
		r.Post("/variables", addChild(s, s.services.Trials.AddVariable))
		r.Post("/data", addChild(s, s.services.Trials.AddDataPoint))
		r.Post("/tasks", addChild(s, s.services.Trials.AddTask))
		r.Put("/tasks/{taskID}", s.handleUpdateTask)

		if s.services.TrialStats != nil {
			r.Get("/variables/{variableID}/statistics", s.handleVariableStatistics)
		}
		if s.services.Reports != nil {
			r.Get("/report.html", s.handleTrialReport(contentTypeHTML, s.services.Reports.HTML))
			r.Get("/report.md", s.handleTrialReport(contentTypeMarkdown, s.services.Reports.Markdown))
			r.Get("/report.xlsx", s.handleTrialWorkbook)
		}
	})
}

func (s *Server) handleListTrials(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trials, err := s.services.Trials.List(r.Context(), session, r.URL.Query().Get("mine") == "true")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trials)
}

// handleCreateTrial accepts either a bare trial or a {"trial": ...}
// envelope carrying treatments, plots, variables and tasks
func (s *Server) handleCreateTrial(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		s.writeError(w, r, err)
		return
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		s.writeError(w, r, errors.InvalidInput("trial body must be a JSON object"))
		return
	}

	if _, ok := probe["trial"]; ok {
		var nt models.NewTrial
		if err := json.Unmarshal(raw, &nt); err != nil {
			s.writeError(w, r, errors.InvalidInput(fmt.Sprintf("invalid trial: %v", err)))
			return
		}
		if err := s.services.Trials.CreateWithDetails(r.Context(), &nt); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, nt)
		return
	}

	var trial models.FieldTrial
	if err := json.Unmarshal(raw, &trial); err != nil {
		s.writeError(w, r, errors.InvalidInput(fmt.Sprintf("invalid trial: %v", err)))
		return
	}
	if err := s.services.Trials.Create(r.Context(), &trial); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trial)
}

func (s *Server) handleLatestTrials(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trials, err := s.services.Trials.Latest(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trials)
}

func (s *Server) handleTrialSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.services.Trials.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleNextTrialCode(w http.ResponseWriter, r *http.Request) {
	code, err := s.services.Trials.NextTrialCode(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"trial_code": code})
}

func (s *Server) handleGetTrial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	trial, err := s.services.Trials.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trial)
}

func (s *Server) handleUpdateTrial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var trial models.FieldTrial
	if err := decodeJSON(r, &trial); err != nil {
		s.writeError(w, r, err)
		return
	}
	trial.ID = id
	if err := s.services.Trials.Update(r.Context(), &trial); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trial)
}

func (s *Server) handleDeleteTrial(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Trials.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTrialDetails(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	details, err := s.services.Trials.Details(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// addChild decodes a related row and attaches it to the trial in the path
func addChild[T any](s *Server, add func(context.Context, uuid.UUID, *T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trialID, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var row T
		if err := decodeJSON(r, &row); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := add(r.Context(), trialID, &row); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, &row)
	}
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	trialID, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	taskID, err := idParam(r, "taskID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var task models.TrialTask
	if err := decodeJSON(r, &task); err != nil {
		s.writeError(w, r, err)
		return
	}
	task.ID = taskID
	task.TrialID = trialID
	if err := s.services.Trials.UpdateTask(r.Context(), &task); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleVariableStatistics(w http.ResponseWriter, r *http.Request) {
	trialID, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	variableID, err := idParam(r, "variableID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var alpha float64
	if raw := r.URL.Query().Get("alpha"); raw != "" {
		alpha, err = strconv.ParseFloat(raw, 64)
		if err != nil || alpha <= 0 || alpha >= 1 {
			s.writeError(w, r, core.NewValidationError("alpha", "must be a number in (0, 1)"))
			return
		}
	}
	result, err := s.services.TrialStats.Analyze(r.Context(), trialID, variableID, alpha)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrialReport(contentType string, render func(context.Context, uuid.UUID) ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		body, err := render(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func (s *Server) handleTrialWorkbook(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// Buffered so a failure midway still produces a JSON error
	var buf bytes.Buffer
	if err := s.services.Reports.Workbook(r.Context(), id, &buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trial-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

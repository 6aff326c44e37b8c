package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrodesk/internal/aggregate"
	"agrodesk/models"
)

func (s *Server) pricingRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		prices, err := s.services.Pricing.List(r.Context(), r.URL.Query().Get("active") == "true")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, prices)
	})
	r.Get("/summary", func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.services.Pricing.Summary(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var p models.AnalysisPricing
		if err := decodeJSON(r, &p); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Pricing.Create(r.Context(), &p); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	})
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var p models.AnalysisPricing
		if err := decodeJSON(r, &p); err != nil {
			s.writeError(w, r, err)
			return
		}
		p.ID = id
		if err := s.services.Pricing.Update(r.Context(), &p); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Pricing.Delete(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) analysisRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		analyses, err := s.services.Analyses.List(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, analyses)
	})
	r.Get("/dashboard", s.handleAnalysisDashboard)
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var a models.Analysis
		if err := decodeJSON(r, &a); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Analyses.Create(r.Context(), &a); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	})
	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		a, err := s.services.Analyses.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	})
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var a models.Analysis
		if err := decodeJSON(r, &a); err != nil {
			s.writeError(w, r, err)
			return
		}
		a.ID = id
		if err := s.services.Analyses.Update(r.Context(), &a); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Analyses.Delete(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// handleAnalysisDashboard builds the dashboard for the filtered window.
// ?days=0 disables the date filter.
func (s *Server) handleAnalysisDashboard(w http.ResponseWriter, r *http.Request) {
	if s.services.Dashboard == nil {
		http.NotFound(w, r)
		return
	}
	days, err := intQuery(r, "days", s.opts.DefaultDays)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	dashboard, err := s.services.Dashboard.Analyses(r.Context(), aggregate.AnalysisFilter{
		Consultant: q.Get("consultant"),
		Client:     q.Get("client"),
		Type:       q.Get("type"),
		Status:     q.Get("status"),
		Days:       days,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) eventRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		events, err := s.services.Events.List(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var e models.Event
		if err := decodeJSON(r, &e); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Events.Create(r.Context(), &e); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	})
	// {ref} is an id or a slug
	r.Get("/{ref}", func(w http.ResponseWriter, r *http.Request) {
		e, err := s.services.Events.Get(r.Context(), chi.URLParam(r, "ref"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	})
	r.Put("/{ref}", func(w http.ResponseWriter, r *http.Request) {
		var changes models.Event
		if err := decodeJSON(r, &changes); err != nil {
			s.writeError(w, r, err)
			return
		}
		e, err := s.services.Events.Update(r.Context(), chi.URLParam(r, "ref"), &changes)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	})
	r.Delete("/{ref}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.services.Events.Delete(r.Context(), chi.URLParam(r, "ref")); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

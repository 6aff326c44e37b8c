package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrodesk/models"
)

func (s *Server) costRoutes(r chi.Router) {
	r.Get("/", s.handleListCosts)
	r.Post("/", s.handleCreateCost)
	r.Get("/summary", s.handleCostSummary)
	r.Put("/{id}", s.handleUpdateCost)
	r.Delete("/{id}", s.handleDeleteCost)
}

func costFilter(r *http.Request) (models.CostFilter, error) {
	start, err := dateQuery(r, "start")
	if err != nil {
		return models.CostFilter{}, err
	}
	end, err := dateQuery(r, "end")
	if err != nil {
		return models.CostFilter{}, err
	}
	q := r.URL.Query()
	return models.CostFilter{
		Start:       start,
		End:         end,
		Category:    q.Get("category"),
		ExpenseType: models.ExpenseType(q.Get("expense_type")),
	}, nil
}

func (s *Server) handleListCosts(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter, err := costFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.services.Costs.List(r.Context(), session, filter))
}

func (s *Server) handleCostSummary(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter, err := costFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.services.Costs.Summary(r.Context(), session, filter))
}

func (s *Server) handleCreateCost(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var cost models.Cost
	if err := decodeJSON(r, &cost); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.services.Costs.Create(r.Context(), session, &cost); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cost)
}

func (s *Server) handleUpdateCost(w http.ResponseWriter, r *http.Request) {
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
	var cost models.Cost
	if err := decodeJSON(r, &cost); err != nil {
		s.writeError(w, r, err)
		return
	}
	cost.ID = id
	if err := s.services.Costs.Update(r.Context(), session, &cost); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

func (s *Server) handleDeleteCost(w http.ResponseWriter, r *http.Request) {
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
	if err := s.services.Costs.Delete(r.Context(), session, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

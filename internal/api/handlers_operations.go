package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrodesk/models"
)

const defaultBatchLimit = 10

func (s *Server) handleRecentBatches(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultBatchLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	batches, err := s.services.Operations.RecentBatches(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (s *Server) handleOperationsOverview(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultBatchLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	overview, err := s.services.Dashboard.Operations(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) deliveryRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		deliveries, err := s.services.Operations.Deliveries(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deliveries)
	})
	r.Get("/summary", func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.services.Operations.DeliverySummary(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var d models.FarmDelivery
		if err := decodeJSON(r, &d); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Operations.CreateDelivery(r.Context(), &d); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, d)
	})
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var d models.FarmDelivery
		if err := decodeJSON(r, &d); err != nil {
			s.writeError(w, r, err)
			return
		}
		d.ID = id
		if err := s.services.Operations.UpdateDelivery(r.Context(), &d); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Operations.DeleteDelivery(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (s *Server) nutritionRequestRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		requests, err := s.services.Operations.Requests(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, requests)
	})
	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var req models.NutritionFarmRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Operations.CreateRequest(r.Context(), &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, req)
	})
	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		var req models.NutritionFarmRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		req.ID = id
		if err := s.services.Operations.UpdateRequest(r.Context(), &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	})
	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "id")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.services.Operations.DeleteRequest(r.Context(), id); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

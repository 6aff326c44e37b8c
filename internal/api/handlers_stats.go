package api

import (
	"net/http"

	"agrodesk/domain/core"
	"agrodesk/internal/metrics"
	"agrodesk/internal/statistics"
)

// anovaRequest is the ad-hoc statistics payload: groups by label, an
// optional presentation order and an optional significance level
type anovaRequest struct {
	Groups map[string][]float64 `json:"groups"`
	Order  []string             `json:"order,omitempty"`
	Alpha  *float64             `json:"alpha,omitempty"`
}

func (s *Server) handleANOVA(w http.ResponseWriter, r *http.Request) {
	var req anovaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Groups) == 0 {
		s.writeError(w, r, core.NewMissingFieldError("groups"))
		return
	}
	alpha := s.opts.Alpha
	if req.Alpha != nil {
		alpha = *req.Alpha
		if alpha <= 0 || alpha >= 1 {
			s.writeError(w, r, core.NewValidationError("alpha", "must be a number in (0, 1)"))
			return
		}
	}
	report, err := statistics.Analyze(statistics.GroupsFromMap(req.Groups, req.Order), alpha)
	s.metrics.ObserveAnalysis(metrics.AnalysisOutcome(err))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

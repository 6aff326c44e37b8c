package app

import (
	"context"
	"fmt"

	"agrodesk/domain/core"
	"agrodesk/internal"
	"agrodesk/internal/metrics"
	"agrodesk/internal/statistics"
	"agrodesk/models"

	"github.com/google/uuid"
)

// TrialStatistics is the analysis of one variable across a trial's treatments
type TrialStatistics struct {
	TrialID  uuid.UUID             `json:"trial_id"`
	Variable *models.TrialVariable `json:"variable"`
	// Skipped counts measurements that were not numeric or whose plot has
	// no treatment
	Skipped int                `json:"skipped"`
	Report  *statistics.Report `json:"report"`
}

// TrialStatisticsService runs descriptive statistics, ANOVA and Tukey HSD
// on trial measurements grouped by treatment
type TrialStatisticsService struct {
	trials  *TrialService
	alpha   float64
	logger  *internal.Logger
	metrics *metrics.Metrics
}

// NewTrialStatisticsService creates the service. metrics may be nil.
func NewTrialStatisticsService(trials *TrialService, alpha float64, logger *internal.Logger, m *metrics.Metrics) *TrialStatisticsService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = statistics.DefaultAlpha
	}
	return &TrialStatisticsService{trials: trials, alpha: alpha, logger: logger, metrics: m}
}

// Alpha is the significance level used when callers pass none
func (s *TrialStatisticsService) Alpha() float64 { return s.alpha }

// Analyze loads the trial and analyzes one variable
func (s *TrialStatisticsService) Analyze(ctx context.Context, trialID, variableID uuid.UUID, alpha float64) (*TrialStatistics, error) {
	details, err := s.trials.Details(ctx, trialID)
	if err != nil {
		return nil, err
	}
	var variable *models.TrialVariable
	for _, v := range details.Variables {
		if v.ID == variableID {
			variable = v
			break
		}
	}
	if variable == nil {
		return nil, core.NewNotFoundError("trial variable", variableID.String())
	}
	return s.AnalyzeVariable(details, variable, alpha)
}

// AnalyzeVariable groups the variable's numeric measurements by the
// treatment of their plot. Groups follow the trial's treatment order.
func (s *TrialStatisticsService) AnalyzeVariable(details *models.TrialDetails, variable *models.TrialVariable, alpha float64) (*TrialStatistics, error) {
	if alpha <= 0 || alpha >= 1 {
		alpha = s.alpha
	}
	groups, skipped := GroupMeasurements(details, variable.ID)
	result := &TrialStatistics{TrialID: details.ID, Variable: variable, Skipped: skipped}

	report, err := statistics.Analyze(groups, alpha)
	s.metrics.ObserveAnalysis(metrics.AnalysisOutcome(err))
	if err != nil {
		s.logger.Debug("statistics for %s/%s not computed: %v", details.TrialCode, variable.Name, err)
		return result, fmt.Errorf("%s: %w", variable.Name, err)
	}
	result.Report = report
	return result, nil
}

// GroupMeasurements builds treatment groups for one variable and counts
// the measurements that could not be placed
func GroupMeasurements(details *models.TrialDetails, variableID uuid.UUID) (statistics.Groups, int) {
	treatmentOf := make(map[uuid.UUID]string, len(details.Plots))
	for _, p := range details.Plots {
		if p.Treatment != nil && *p.Treatment != "" {
			treatmentOf[p.ID] = *p.Treatment
		}
	}
	byTreatment := make(map[string][]float64)
	skipped := 0
	for _, d := range details.Data {
		if d.VariableID != variableID {
			continue
		}
		treatment, ok := treatmentOf[d.PlotID]
		if !ok {
			skipped++
			continue
		}
		v, ok := d.Numeric()
		if !ok {
			skipped++
			continue
		}
		byTreatment[treatment] = append(byTreatment[treatment], v)
	}
	order := make([]string, 0, len(details.Treatments))
	for _, t := range details.Treatments {
		order = append(order, t.Name)
	}
	return statistics.GroupsFromMap(byTreatment, order), skipped
}

package app

import (
	"context"
	"io"
	"time"

	"agrodesk/adapters/excel"
	"agrodesk/domain/core"
	"agrodesk/internal/report"

	"github.com/google/uuid"
)

// ReportService assembles trial reports
type ReportService struct {
	trials *TrialService
	stats  *TrialStatisticsService
	now    func() time.Time
}

// NewReportService creates a report service
func NewReportService(trials *TrialService, stats *TrialStatisticsService) *ReportService {
	return &ReportService{trials: trials, stats: stats, now: time.Now}
}

// Build loads the trial and analyzes every variable. Variables whose data
// cannot be analyzed get a section carrying the reason; store failures
// abort the report.
func (s *ReportService) Build(ctx context.Context, trialID uuid.UUID) (*report.TrialReport, error) {
	details, err := s.trials.Details(ctx, trialID)
	if err != nil {
		return nil, err
	}
	r := &report.TrialReport{Trial: details, GeneratedAt: s.now()}
	for _, v := range details.Variables {
		res, err := s.stats.AnalyzeVariable(details, v, 0)
		section := report.VariableSection{Variable: v, Skipped: res.Skipped}
		switch {
		case err == nil:
			section.Result = res.Report
		case core.IsStatisticsError(err):
			section.Error = err.Error()
		default:
			return nil, err
		}
		r.Sections = append(r.Sections, section)
	}
	return r, nil
}

// HTML renders the trial report as an HTML page
func (s *ReportService) HTML(ctx context.Context, trialID uuid.UUID) ([]byte, error) {
	r, err := s.Build(ctx, trialID)
	if err != nil {
		return nil, err
	}
	return report.HTML(r), nil
}

// Markdown renders the trial report as Markdown
func (s *ReportService) Markdown(ctx context.Context, trialID uuid.UUID) ([]byte, error) {
	r, err := s.Build(ctx, trialID)
	if err != nil {
		return nil, err
	}
	return report.Markdown(r), nil
}

// Workbook writes the trial report as an .xlsx workbook
func (s *ReportService) Workbook(ctx context.Context, trialID uuid.UUID, w io.Writer) error {
	r, err := s.Build(ctx, trialID)
	if err != nil {
		return err
	}
	return excel.WriteTrialWorkbook(w, r)
}

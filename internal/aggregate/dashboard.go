package aggregate

import (
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"agrodesk/domain/core"
	"agrodesk/models"
)

const unknownKey = "unknown"

// AnalysisFilter narrows the analyses shown on the dashboard. Empty
// fields and Days <= 0 do not filter.
type AnalysisFilter struct {
	Consultant string `json:"consultant,omitempty"`
	Client     string `json:"client,omitempty"`
	Type       string `json:"type,omitempty"`
	Status     string `json:"status,omitempty"`
	Days       int    `json:"days,omitempty"`
}

func matches(want string, got *string) bool {
	if want == "" {
		return true
	}
	return got != nil && strings.EqualFold(strings.TrimSpace(*got), strings.TrimSpace(want))
}

// Apply returns the analyses passing every filter, in input order
func (f AnalysisFilter) Apply(analyses []*models.Analysis, now time.Time) []*models.Analysis {
	var since time.Time
	if f.Days > 0 {
		since = now.AddDate(0, 0, -f.Days)
	}
	out := make([]*models.Analysis, 0, len(analyses))
	for _, a := range analyses {
		if !matches(f.Consultant, a.Consultant) || !matches(f.Client, a.ClientName) {
			continue
		}
		if !matches(f.Type, &a.AnalysisType) || !matches(f.Status, &a.Status) {
			continue
		}
		if !since.IsZero() && a.CreatedAt.Before(since) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Turnaround is the mean number of days from creation to emailed results
type Turnaround struct {
	Overall *float64 `json:"overall"`
	Soil    *float64 `json:"soil"`
	Leaf    *float64 `json:"leaf"`
	Samples int      `json:"samples"`
}

// AnalysisDashboard is the analyses overview page
type AnalysisDashboard struct {
	Total            int                `json:"total"`
	ThisMonth        int                `json:"this_month"`
	TotalTests       int                `json:"total_tests"`
	TotalRevenue     float64            `json:"total_revenue"`
	AverageRevenue   float64            `json:"average_revenue"`
	ThisMonthRevenue float64            `json:"this_month_revenue"`
	PerMonth         []NamePoint        `json:"per_month"`
	RevenuePerMonth  []NamePoint        `json:"revenue_per_month"`
	TypesPerMonth    []Row              `json:"types_per_month"`
	MonthOfYear      *MonthOfYearResult `json:"month_of_year"`
	ByStatus         []NamePoint        `json:"by_status"`
	ByType           []NamePoint        `json:"by_type"`
	ByCategory       []NamePoint        `json:"by_category"`
	TopClients       []NamePoint        `json:"top_clients"`
	TopConsultants   []NamePoint        `json:"top_consultants"`
	TopCrops         []NamePoint        `json:"top_crops"`
	Turnaround       Turnaround         `json:"turnaround"`
}

func createdAt(a *models.Analysis) time.Time { return a.CreatedAt }

func orUnknown[T any](get func(T) string) KeyFunc[T] {
	return func(item T) (string, bool) {
		if v := strings.TrimSpace(get(item)); v != "" {
			return v, true
		}
		return unknownKey, true
	}
}

// BuildAnalysisDashboard reduces analyses to the dashboard. now selects
// the current month; topN bounds the client/consultant/crop rankings.
func BuildAnalysisDashboard(analyses []*models.Analysis, now time.Time, topN int) *AnalysisDashboard {
	d := &AnalysisDashboard{Total: len(analyses)}
	thisMonth := core.MonthKey(now)

	for _, a := range analyses {
		d.TotalTests += a.Tests()
		d.TotalRevenue += a.Revenue()
		if !a.CreatedAt.IsZero() && core.MonthKey(a.CreatedAt) == thisMonth {
			d.ThisMonth++
			d.ThisMonthRevenue += a.Revenue()
		}
	}
	if d.Total > 0 {
		d.AverageRevenue = d.TotalRevenue / float64(d.Total)
	}

	month := Month(createdAt)
	d.PerMonth = Count(analyses, month).Points()
	d.RevenuePerMonth = Sum(analyses, month, (*models.Analysis).Revenue).Points()
	d.MonthOfYear = MonthOfYear(analyses, createdAt)

	isType := func(kind string) KeyFunc[*models.Analysis] {
		return func(a *models.Analysis) (string, bool) {
			if a.AnalysisType != kind {
				return "", false
			}
			return month(a)
		}
	}
	d.TypesPerMonth = AlignSeries(
		Series{Name: models.AnalysisTypeSoil, Result: Count(analyses, isType(models.AnalysisTypeSoil))},
		Series{Name: models.AnalysisTypeLeaf, Result: Count(analyses, isType(models.AnalysisTypeLeaf))},
	)

	d.ByStatus = Count(analyses, orUnknown(func(a *models.Analysis) string { return a.Status })).Points()
	d.ByType = Count(analyses, orUnknown(func(a *models.Analysis) string { return a.AnalysisType })).Points()
	d.ByCategory = Count(analyses, orUnknown(func(a *models.Analysis) string { return deref(a.Category) })).Points()

	d.TopClients = Count(analyses, OptionalField(func(a *models.Analysis) *string { return a.ClientName })).Top(topN)
	d.TopConsultants = Count(analyses, OptionalField(func(a *models.Analysis) *string { return a.Consultant })).Top(topN)
	d.TopCrops = Count(analyses, OptionalField(func(a *models.Analysis) *string { return a.Crop })).Top(topN)

	d.Turnaround = turnaround(analyses)
	return d
}

func turnaround(analyses []*models.Analysis) Turnaround {
	var all, soil, leaf []float64
	for _, a := range analyses {
		days, ok := a.TurnaroundDays()
		if !ok || days < 0 {
			continue
		}
		all = append(all, days)
		switch a.AnalysisType {
		case models.AnalysisTypeSoil:
			soil = append(soil, days)
		case models.AnalysisTypeLeaf:
			leaf = append(leaf, days)
		}
	}
	return Turnaround{
		Overall: meanOrNil(all),
		Soil:    meanOrNil(soil),
		Leaf:    meanOrNil(leaf),
		Samples: len(all),
	}
}

func meanOrNil(values []float64) *float64 {
	m, err := stats.Mean(values)
	if err != nil {
		return nil
	}
	return &m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

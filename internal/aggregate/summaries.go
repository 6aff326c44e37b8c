package aggregate

import (
	"time"

	"github.com/montanaflynn/stats"

	"agrodesk/models"
)

// CostSummary is the costs analytics panel
type CostSummary struct {
	Count            int         `json:"count"`
	Total            float64     `json:"total"`
	MonthlyRecurring float64     `json:"monthly_recurring"`
	OneTime          float64     `json:"one_time"`
	ByCategory       []NamePoint `json:"by_category"`
	ByExpenseType    []NamePoint `json:"by_expense_type"`
	ByMonth          []NamePoint `json:"by_month"`
}

func costAmount(c *models.Cost) float64 { return c.Amount }

// SummarizeCosts totals costs overall, per category, per type and per month
func SummarizeCosts(costs []*models.Cost) *CostSummary {
	s := &CostSummary{Count: len(costs)}
	byType := Sum(costs, Field(func(c *models.Cost) string { return string(c.ExpenseType) }), costAmount)
	s.Total = byType.Total()
	s.MonthlyRecurring = byType.Get(string(models.ExpenseMonthly))
	s.OneTime = byType.Get(string(models.ExpenseOneTime))
	s.ByExpenseType = byType.Points()
	s.ByCategory = Sum(costs, Field(func(c *models.Cost) string { return c.Category }), costAmount).Top(0)
	s.ByMonth = Sum(costs, Month(func(c *models.Cost) time.Time { return c.Date.Time }), costAmount).Points()
	return s
}

// PricingSummary describes the analysis price list
type PricingSummary struct {
	TotalTypes   int     `json:"total_types"`
	ActiveTypes  int     `json:"active_types"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// SummarizePricing reports counts over all rows and price statistics
// over active rows only
func SummarizePricing(pricing []*models.AnalysisPricing) *PricingSummary {
	s := &PricingSummary{TotalTypes: len(pricing)}
	var prices stats.Float64Data
	for _, p := range pricing {
		if p.IsActive {
			prices = append(prices, p.BasePrice)
		}
	}
	s.ActiveTypes = len(prices)
	if len(prices) == 0 {
		return s
	}
	s.AveragePrice, _ = prices.Mean()
	s.MinPrice, _ = prices.Min()
	s.MaxPrice, _ = prices.Max()
	return s
}

// DeliverySummary is the farm deliveries panel
type DeliverySummary struct {
	Total             int         `json:"total"`
	PerMonth          []NamePoint `json:"per_month"`
	PerFarm           []NamePoint `json:"per_farm"`
	PerProduce        []NamePoint `json:"per_produce"`
	QuantityByProduce []NamePoint `json:"quantity_by_produce"`
}

// SummarizeDeliveries counts deliveries per month, farm and produce
func SummarizeDeliveries(deliveries []*models.FarmDelivery) *DeliverySummary {
	produce := Field(func(d *models.FarmDelivery) string { return d.Produce })
	return &DeliverySummary{
		Total:      len(deliveries),
		PerMonth:   ByMonth(deliveries, func(d *models.FarmDelivery) time.Time { return d.Date.Time }).Points(),
		PerFarm:    Count(deliveries, Field(func(d *models.FarmDelivery) string { return d.Farm })).Top(0),
		PerProduce: Count(deliveries, produce).Top(0),
		QuantityByProduce: Sum(deliveries, produce, func(d *models.FarmDelivery) float64 {
			if d.Quantity == nil {
				return 0
			}
			return *d.Quantity
		}).Top(0),
	}
}

// RequestSummary is the nutrition farm requests panel
type RequestSummary struct {
	Total          int         `json:"total"`
	Pending        int         `json:"pending"`
	ByStatus       []NamePoint `json:"by_status"`
	ByFarm         []NamePoint `json:"by_farm"`
	MaterialTotals []NamePoint `json:"material_totals"`
}

// SummarizeRequests counts requests by status and totals requested
// material quantities by material name
func SummarizeRequests(requests []*models.NutritionFarmRequest) *RequestSummary {
	byStatus := Count(requests, Field(func(r *models.NutritionFarmRequest) string { return string(r.Status) }))

	var materials []models.Material
	for _, r := range requests {
		if r.Status == models.RequestCancelled {
			continue
		}
		materials = append(materials, r.Materials...)
	}
	return &RequestSummary{
		Total:    len(requests),
		Pending:  int(byStatus.Get(string(models.RequestPending))),
		ByStatus: byStatus.Points(),
		ByFarm:   Count(requests, Field(func(r *models.NutritionFarmRequest) string { return r.Farm })).Top(0),
		MaterialTotals: Sum(materials, Field(func(m models.Material) string { return m.Name }),
			func(m models.Material) float64 { return m.Quantity }).Top(0),
	}
}

// TrialSummary is the field trials overview
type TrialSummary struct {
	Total             int         `json:"total"`
	Drafts            int         `json:"drafts"`
	ByStatus          []NamePoint `json:"by_status"`
	ByCrop            []NamePoint `json:"by_crop"`
	StartsPerMonth    []NamePoint `json:"starts_per_month"`
	AverageCompletion float64     `json:"average_completion"`
	TotalBudget       float64     `json:"total_budget"`
	TotalSpent        float64     `json:"total_spent"`
}

// SummarizeTrials counts trials by status and crop and totals budgets
func SummarizeTrials(trials []*models.FieldTrial) *TrialSummary {
	s := &TrialSummary{Total: len(trials)}
	var completion stats.Float64Data
	for _, t := range trials {
		if t.IsDraft {
			s.Drafts++
		}
		if t.Budget != nil {
			s.TotalBudget += *t.Budget
		}
		s.TotalSpent += t.Spent
		completion = append(completion, t.CompletionPercentage)
	}
	if len(completion) > 0 {
		s.AverageCompletion, _ = completion.Mean()
	}
	s.ByStatus = Count(trials, Field(func(t *models.FieldTrial) string { return string(t.Status) })).Points()
	s.ByCrop = Count(trials, Field(func(t *models.FieldTrial) string { return t.Crop })).Top(0)
	s.StartsPerMonth = ByMonth(trials, func(t *models.FieldTrial) time.Time { return t.StartDate.Time }).Points()
	return s
}

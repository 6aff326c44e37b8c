package aggregate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrodesk/domain/core"
	"agrodesk/models"
)

type row struct {
	date     string
	category string
	amount   float64
}

func rowMonth(r row) string { return r.date }

func TestCountAccountsForEveryItem(t *testing.T) {
	rows := []row{
		{date: "2024-01-05", category: "fuel"},
		{date: "2024-01-20T10:00:00Z", category: "fuel"},
		{date: "2024-02-01 08:00:00", category: "seed"},
		{date: "", category: "seed"},
		{date: "garbage", category: "labour"},
	}

	res := Count(rows, MonthString(rowMonth))
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 3, res.Counted())
	assert.Equal(t, float64(len(rows)), res.Total()+float64(res.Skipped))
	assert.Equal(t, []NamePoint{{"2024-01", 2}, {"2024-02", 1}}, res.Points())
}

func TestEmptyInput(t *testing.T) {
	res := ByMonth([]time.Time{}, func(t time.Time) time.Time { return t })
	assert.Equal(t, 0, res.Len())
	assert.Empty(t, res.Points())
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0.0, res.Total())

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"points":[],"skipped":0}`, string(raw))
}

func TestSumMeanTop(t *testing.T) {
	rows := []row{
		{category: "fuel", amount: 10},
		{category: "fuel", amount: 30},
		{category: "seed", amount: 25},
		{category: "labour", amount: 25},
		{category: " ", amount: 99},
	}
	key := Field(func(r row) string { return r.category })
	value := func(r row) float64 { return r.amount }

	sum := Sum(rows, key, value)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 40.0, sum.Get("fuel"))
	assert.Equal(t, 90.0, sum.Total())

	mean := Mean(rows, key, value)
	assert.Equal(t, 20.0, mean.Get("fuel"))
	assert.Equal(t, 25.0, mean.Get("seed"))

	assert.Equal(t, []NamePoint{{"fuel", 40}, {"labour", 25}}, sum.Top(2))
	assert.Len(t, sum.Top(0), 3)
}

func TestByDayAndMonthOfYear(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		{},
	}
	id := func(t time.Time) time.Time { return t }

	days := ByDay(times, id)
	assert.Equal(t, 1, days.Skipped)
	assert.Equal(t, 1.0, days.Get("2024-03-01"))

	moy := MonthOfYear(times, id)
	require.Len(t, moy.Points, 12)
	assert.Equal(t, NamePoint{"Mar", 3}, moy.Points[2])
	assert.Equal(t, NamePoint{"Jan", 0}, moy.Points[0])
	assert.Equal(t, 1, moy.Skipped)
	assert.Equal(t, float64(len(times)), moy.Total()+float64(moy.Skipped))

	out, err := json.Marshal(moy)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"skipped":1`)
	assert.Contains(t, string(out), `{"name":"Mar","value":3}`)
}

func TestAlignSeries(t *testing.T) {
	key := Field(func(s string) string { return s })
	a := Count([]string{"2024-01", "2024-02", "2024-02"}, key)
	b := Count([]string{"2024-03"}, key)

	rows := AlignSeries(Series{Name: "soil", Result: a}, Series{Name: "leaf", Result: b})
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-02", rows[1].Name)
	assert.Equal(t, 2.0, rows[1].Values["soil"])
	assert.Equal(t, 0.0, rows[1].Values["leaf"])

	raw, err := json.Marshal(rows[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"2024-03","soil":0,"leaf":1}`, string(raw))
}

func ptr[T any](v T) *T { return &v }

func analysesFixture(now time.Time) []*models.Analysis {
	lastMonth := now.AddDate(0, -1, 0)
	emailed := now.Add(48 * time.Hour)
	return []*models.Analysis{
		{AnalysisType: "soil", Status: "completed", ClientName: ptr("Acme"), Consultant: ptr("Ruan"), Crop: ptr("maize"),
			TestCount: ptr(3), TotalPrice: ptr(300.0), CreatedAt: now, EmailedDate: &emailed},
		{AnalysisType: "leaf", Status: "pending", ClientName: ptr("Acme"), Consultant: ptr("Lerato"), Crop: ptr("citrus"),
			TotalPrice: ptr(100.0), CreatedAt: now},
		{AnalysisType: "soil", Status: "completed", ClientName: ptr("Bobo Farms"), Consultant: ptr("ruan"),
			CreatedAt: lastMonth},
	}
}

func TestAnalysisDashboard(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	d := BuildAnalysisDashboard(analysesFixture(now), now, 5)

	assert.Equal(t, 3, d.Total)
	assert.Equal(t, 2, d.ThisMonth)
	assert.Equal(t, 5, d.TotalTests)
	assert.Equal(t, 400.0, d.TotalRevenue)
	assert.InDelta(t, 400.0/3, d.AverageRevenue, 1e-9)
	assert.Equal(t, 400.0, d.ThisMonthRevenue)
	assert.Equal(t, []NamePoint{{"2024-05", 1}, {"2024-06", 2}}, d.PerMonth)
	assert.Equal(t, []NamePoint{{"2024-05", 0}, {"2024-06", 400}}, d.RevenuePerMonth)
	assert.Equal(t, []NamePoint{{"Acme", 2}, {"Bobo Farms", 1}}, d.TopClients)
	assert.Equal(t, []NamePoint{{"citrus", 1}, {"maize", 1}}, d.TopCrops)
	assert.Equal(t, []NamePoint{{"completed", 2}, {"pending", 1}}, d.ByStatus)
	assert.Equal(t, []NamePoint{{"unknown", 3}}, d.ByCategory)

	require.Len(t, d.TypesPerMonth, 2)
	assert.Equal(t, 1.0, d.TypesPerMonth[1].Values["soil"])
	assert.Equal(t, 1.0, d.TypesPerMonth[1].Values["leaf"])

	require.NotNil(t, d.Turnaround.Overall)
	assert.Equal(t, 2.0, *d.Turnaround.Overall)
	assert.Equal(t, 2.0, *d.Turnaround.Soil)
	assert.Nil(t, d.Turnaround.Leaf)
	assert.Equal(t, 1, d.Turnaround.Samples)
}

func TestAnalysisDashboardEmpty(t *testing.T) {
	d := BuildAnalysisDashboard(nil, time.Now(), 5)
	assert.Equal(t, 0, d.Total)
	assert.Equal(t, 0.0, d.AverageRevenue)
	assert.Empty(t, d.PerMonth)
	assert.Nil(t, d.Turnaround.Overall)
}

func TestAnalysisFilter(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	all := analysesFixture(now)

	tests := []struct {
		name   string
		filter AnalysisFilter
		want   int
	}{
		{"no filter", AnalysisFilter{}, 3},
		{"consultant case-insensitive", AnalysisFilter{Consultant: "RUAN"}, 2},
		{"client", AnalysisFilter{Client: "Acme"}, 2},
		{"type", AnalysisFilter{Type: "leaf"}, 1},
		{"status and type", AnalysisFilter{Type: "soil", Status: "completed"}, 2},
		{"last 7 days", AnalysisFilter{Days: 7}, 2},
		{"unknown client", AnalysisFilter{Client: "Nobody"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.filter.Apply(all, now), tt.want)
		})
	}
}

func TestSummarizeCosts(t *testing.T) {
	costs := []*models.Cost{
		{Date: core.MustDate("2024-01-10"), Category: "rent", Amount: 1000, ExpenseType: models.ExpenseMonthly},
		{Date: core.MustDate("2024-02-10"), Category: "rent", Amount: 1000, ExpenseType: models.ExpenseMonthly},
		{Date: core.MustDate("2024-02-12"), Category: "equipment", Amount: 2500, ExpenseType: models.ExpenseOneTime},
	}
	s := SummarizeCosts(costs)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 4500.0, s.Total)
	assert.Equal(t, 2000.0, s.MonthlyRecurring)
	assert.Equal(t, 2500.0, s.OneTime)
	assert.Equal(t, []NamePoint{{"equipment", 2500}, {"rent", 2000}}, s.ByCategory)
	assert.Equal(t, []NamePoint{{"2024-01", 1000}, {"2024-02", 3500}}, s.ByMonth)

	empty := SummarizeCosts(nil)
	assert.Equal(t, 0.0, empty.Total)
	assert.Empty(t, empty.ByMonth)
}

func TestSummarizePricing(t *testing.T) {
	s := SummarizePricing([]*models.AnalysisPricing{
		{AnalysisType: "soil", BasePrice: 100, IsActive: true},
		{AnalysisType: "leaf", BasePrice: 300, IsActive: true},
		{AnalysisType: "water", BasePrice: 1000, IsActive: false},
	})
	assert.Equal(t, 3, s.TotalTypes)
	assert.Equal(t, 2, s.ActiveTypes)
	assert.Equal(t, 200.0, s.AveragePrice)
	assert.Equal(t, 100.0, s.MinPrice)
	assert.Equal(t, 300.0, s.MaxPrice)

	none := SummarizePricing(nil)
	assert.Equal(t, 0, none.ActiveTypes)
	assert.Equal(t, 0.0, none.AveragePrice)
}

func TestSummarizeDeliveriesAndRequests(t *testing.T) {
	deliveries := []*models.FarmDelivery{
		{Farm: "North", Produce: "tomatoes", Date: core.MustDate("2024-03-01"), Quantity: ptr(40.0)},
		{Farm: "North", Produce: "peppers", Date: core.MustDate("2024-03-09")},
		{Farm: "South", Produce: "tomatoes", Date: core.MustDate("2024-04-01"), Quantity: ptr(10.0)},
	}
	ds := SummarizeDeliveries(deliveries)
	assert.Equal(t, 3, ds.Total)
	assert.Equal(t, []NamePoint{{"2024-03", 2}, {"2024-04", 1}}, ds.PerMonth)
	assert.Equal(t, NamePoint{"North", 2}, ds.PerFarm[0])
	assert.Equal(t, NamePoint{"tomatoes", 50}, ds.QuantityByProduce[0])

	requests := []*models.NutritionFarmRequest{
		{Farm: "North", Status: models.RequestPending, Materials: models.Materials{{Name: "Urea", Quantity: 50}}},
		{Farm: "South", Status: models.RequestDelivered, Materials: models.Materials{{Name: "Urea", Quantity: 25}, {Name: "KCl", Quantity: 5}}},
		{Farm: "South", Status: models.RequestCancelled, Materials: models.Materials{{Name: "Urea", Quantity: 1000}}},
	}
	rs := SummarizeRequests(requests)
	assert.Equal(t, 3, rs.Total)
	assert.Equal(t, 1, rs.Pending)
	assert.Equal(t, []NamePoint{{"Urea", 75}, {"KCl", 5}}, rs.MaterialTotals)
}

func TestSummarizeTrials(t *testing.T) {
	trials := []*models.FieldTrial{
		{Crop: "maize", Status: models.TrialStatusOngoing, CompletionPercentage: 50, Budget: ptr(1000.0), Spent: 400, StartDate: core.MustDate("2024-01-10")},
		{Crop: "maize", Status: models.TrialStatusPlanned, IsDraft: true},
	}
	s := SummarizeTrials(trials)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Drafts)
	assert.Equal(t, 25.0, s.AverageCompletion)
	assert.Equal(t, 1000.0, s.TotalBudget)
	assert.Equal(t, []NamePoint{{"maize", 2}}, s.ByCrop)
	assert.Equal(t, []NamePoint{{"2024-01", 1}}, s.StartsPerMonth)
}

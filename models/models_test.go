package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrodesk/domain/core"
)

func TestSessionRoles(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		want    Role
		admin   bool
		wantErr bool
	}{
		{"empty defaults to user", "", RoleUser, false, false},
		{"user", "user", RoleUser, false, false},
		{"admin", "Admin", RoleAdmin, true, false},
		{"super admin", "super-admin", RoleSuperAdmin, true, false},
		{"unknown", "owner", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := ParseRole(tt.role)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidEnum)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
			assert.Equal(t, tt.admin, NewSession(uuid.New(), role).IsAdmin())
		})
	}
}

func TestSessionRequire(t *testing.T) {
	assert.ErrorIs(t, Session{}.Require(), core.ErrNoSession)
	assert.NoError(t, NewSession(uuid.New(), RoleUser).Require())
}

func TestNextTrialCode(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"", "TRIAL-0001"},
		{"TRIAL-0001", "TRIAL-0002"},
		{"TRIAL-0041", "TRIAL-0042"},
		{"TRIAL-9999", "TRIAL-10000"},
		{"TRIAL-abc", "TRIAL-0001"},
		{"legacy", "TRIAL-0001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NextTrialCode(tt.last), "last=%q", tt.last)
	}
}

func TestFieldTrialValidate(t *testing.T) {
	valid := func() FieldTrial {
		return FieldTrial{
			Name:          "Maize N rates",
			Crop:          "maize",
			TrialType:     "fertilizer",
			FarmName:      "Rietvlei",
			FieldLocation: "Block 4",
		}
	}

	trial := valid()
	require.NoError(t, trial.Validate())
	assert.Equal(t, TrialStatusPlanned, trial.Status)

	missing := valid()
	missing.Crop = "  "
	err := missing.Validate()
	assert.ErrorIs(t, err, core.ErrMissingField)
	assert.Contains(t, err.Error(), "crop")

	badStatus := valid()
	badStatus.Status = "paused"
	assert.ErrorIs(t, badStatus.Validate(), core.ErrInvalidEnum)

	reversed := valid()
	reversed.StartDate = core.MustDate("2024-06-01")
	reversed.EndDate = core.MustDate("2024-01-01")
	assert.ErrorIs(t, reversed.Validate(), core.ErrInvalidInput)
}

func TestTrialTaskDefaults(t *testing.T) {
	task := TrialTask{Title: "Soil sampling", DueDate: core.MustDate("2024-04-01")}
	require.NoError(t, task.Validate())
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, TaskPriorityMedium, task.Priority)

	task.Priority = "urgent"
	assert.ErrorIs(t, task.Validate(), core.ErrInvalidEnum)
}

func TestDataPointNumeric(t *testing.T) {
	tests := []struct {
		value string
		want  float64
		ok    bool
	}{
		{"12.5", 12.5, true},
		{" 7 ", 7, true},
		{"-1e2", -100, true},
		{"green", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"+Infinity", 0, false},
		{"-inf", 0, false},
	}
	for _, tt := range tests {
		d := TrialDataPoint{Value: tt.value}
		got, ok := d.Numeric()
		assert.Equal(t, tt.ok, ok, tt.value)
		assert.Equal(t, tt.want, got, tt.value)
	}
}

func TestCostValidate(t *testing.T) {
	c := Cost{Date: core.MustDate("2024-05-01"), Category: "fuel", Amount: 120}
	require.NoError(t, c.Validate())
	assert.Equal(t, ExpenseOneTime, c.ExpenseType)

	c.ExpenseType = "weekly"
	assert.ErrorIs(t, c.Validate(), core.ErrInvalidEnum)

	neg := Cost{Date: core.MustDate("2024-05-01"), Category: "fuel", Amount: -1}
	assert.True(t, core.IsValidationError(neg.Validate()))

	noDate := Cost{Category: "fuel"}
	assert.ErrorIs(t, noDate.Validate(), core.ErrMissingField)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "soil_report__final_.pdf", SanitizeFileName("soil report (final).pdf"))
	assert.Equal(t, "a-b_c.txt", SanitizeFileName("a-b_c.txt"))
	assert.Equal(t, "r_sultat.csv", SanitizeFileName("résultat.csv"))

	now := time.UnixMilli(1717000000123)
	assert.Equal(t, "1717000000123_my_file.pdf", DocumentObjectKey(now, "my file.pdf"))
}

func TestMaterialsScanValue(t *testing.T) {
	in := Materials{{Name: "Urea", Quantity: 50, Unit: "kg"}, {Name: "KCl", Quantity: 20}}
	raw, err := in.Value()
	require.NoError(t, err)

	var out Materials
	require.NoError(t, out.Scan(raw))
	assert.Equal(t, in, out)

	var empty Materials
	raw, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), raw)

	assert.Error(t, out.Scan(42))
}

func TestNutritionRequestValidate(t *testing.T) {
	r := NutritionFarmRequest{Farm: "North", Date: core.MustDate("2024-02-02"), Materials: Materials{{Name: "Urea", Quantity: 1}}}
	require.NoError(t, r.Validate())
	assert.Equal(t, RequestPending, r.Status)

	r.Materials = append(r.Materials, Material{Name: "", Quantity: 3})
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "materials[1].name")
}

func TestEventSlug(t *testing.T) {
	e := Event{Title: "Spring Field Day 2024!", Date: core.MustDate("2024-09-10")}
	require.NoError(t, e.Validate())
	assert.Equal(t, "spring-field-day-2024", e.Slug)

	bad := Event{Title: "x", Slug: "Not A Slug", Date: core.MustDate("2024-09-10")}
	assert.True(t, core.IsValidationError(bad.Validate()))

	idLike := Event{Title: "x", Slug: uuid.NewString(), Date: core.MustDate("2024-09-10")}
	assert.True(t, core.IsValidationError(idLike.Validate()))
}

func TestAnalysisDefaults(t *testing.T) {
	a := Analysis{AnalysisType: " Soil "}
	require.NoError(t, a.Validate())
	assert.Equal(t, AnalysisTypeSoil, a.AnalysisType)
	assert.Equal(t, 1, a.Tests())
	assert.Equal(t, 0.0, a.Revenue())

	_, ok := a.TurnaroundDays()
	assert.False(t, ok)

	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	emailed := created.Add(72 * time.Hour)
	a.CreatedAt = created
	a.EmailedDate = &emailed
	days, ok := a.TurnaroundDays()
	assert.True(t, ok)
	assert.Equal(t, 3.0, days)
}

func TestUserValidate(t *testing.T) {
	u := User{Name: "Thandi", Email: " Thandi@Example.COM "}
	require.NoError(t, u.Validate())
	assert.Equal(t, "thandi@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)

	bad := User{Name: "x", Email: "not-an-email"}
	err := bad.Validate()
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

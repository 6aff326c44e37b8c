package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrodesk/app"
	"agrodesk/domain/core"
	"agrodesk/internal/migration"
	"agrodesk/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGroups(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		labels  []string
		alpha   float64
		skipped int
	}{
		{
			name:    "yaml with order",
			file:    "groups.yaml",
			content: "groups:\n  Fungicide: [10, 11, 12]\n  Control: [4, 5, 6]\norder: [Control, Fungicide]\nalpha: 0.01\n",
			labels:  []string{"Control", "Fungicide"},
			alpha:   0.01,
		},
		{
			name:    "json sorted by label",
			file:    "groups.json",
			content: `{"groups": {"b": [1, 2], "a": [3, 4]}}`,
			labels:  []string{"a", "b"},
		},
		{
			name:    "csv columns",
			file:    "groups.csv",
			content: "Control,Bio\n4,7\n5,x\n6,9\n",
			labels:  []string{"Control", "Bio"},
			skipped: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, alpha, skipped, err := loadGroups(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			labels := make([]string, 0, len(groups))
			for _, g := range groups {
				labels = append(labels, g.Label)
			}
			assert.Equal(t, tt.labels, labels)
			assert.InDelta(t, tt.alpha, alpha, 1e-12)
			assert.Equal(t, tt.skipped, skipped)
		})
	}
}

func TestLoadGroupsRejects(t *testing.T) {
	_, _, _, err := loadGroups(writeFile(t, "groups.txt", "a b c"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, _, _, err = loadGroups(writeFile(t, "groups.yaml", "order: [a]\n"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRunANOVAPrintsTables(t *testing.T) {
	anovaFile = writeFile(t, "trial.yaml", "groups:\n  Fungicide: [10, 11, 12]\n  Control: [4, 5, 6]\n  Bio: [7, 8, 9]\n")
	anovaAlpha = 0
	t.Cleanup(func() { anovaFile = "" })

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, runANOVA(cmd, nil))

	assert.Contains(t, out.String(), "## trial.yaml")
	assert.Contains(t, out.String(), "| Between | 2 | 54 | 27 | 27 | 0.0010 |")
	assert.Contains(t, out.String(), "Treatment effect is **significant** at alpha = 0.05.")
}

func TestRunANOVADegenerate(t *testing.T) {
	anovaFile = writeFile(t, "one.json", `{"groups": {"only": [1, 2, 3]}}`)
	t.Cleanup(func() { anovaFile = "" })

	err := runANOVA(&cobra.Command{}, nil)
	assert.ErrorIs(t, err, core.ErrDegenerateInput)
}

func TestLoadSeed(t *testing.T) {
	path := writeFile(t, "seed.yaml", `pricing:
  - analysis_type: " Soil "
    base_price: 35
    is_active: true
  - analysis_type: leaf
    base_price: 42.5
events:
  - title: Spring Field Day
    date: 2025-04-12
    location: Research farm
  - title: Harvest Workshop
    slug: harvest-2025
    date: "2025-10-01"
`)
	pricing, events, err := loadSeed(path)
	require.NoError(t, err)

	require.Len(t, pricing, 2)
	assert.Equal(t, "soil", pricing[0].AnalysisType)
	assert.True(t, pricing[0].IsActive)
	assert.InDelta(t, 42.5, pricing[1].BasePrice, 1e-12)

	require.Len(t, events, 2)
	assert.Equal(t, "spring-field-day", events[0].Slug)
	assert.Equal(t, "2025-04-12", events[0].Date.String())
	require.NotNil(t, events[0].Location)
	assert.Equal(t, "Research farm", *events[0].Location)
	assert.Equal(t, "harvest-2025", events[1].Slug)
}

func TestLoadSeedValidates(t *testing.T) {
	_, _, err := loadSeed(writeFile(t, "seed.yaml", "events:\n  - title: No date\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events[0]")

	_, _, err = loadSeed(writeFile(t, "seed.yaml", "pricing:\n  - base_price: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pricing[0]")
}

type seedRepo struct {
	rows map[string]*models.Event
}

func (r *seedRepo) List(context.Context) ([]*models.Event, error) { return nil, nil }

func (r *seedRepo) GetByIDOrSlug(_ context.Context, ref string) (*models.Event, error) {
	if e, ok := r.rows[ref]; ok {
		return e, nil
	}
	return nil, core.NewNotFoundError("event", ref)
}

func (r *seedRepo) Create(_ context.Context, e *models.Event) error {
	e.ID = uuid.New()
	r.rows[e.Slug] = e
	return nil
}

func (r *seedRepo) Update(context.Context, *models.Event) error { return nil }
func (r *seedRepo) Delete(context.Context, uuid.UUID) error { return nil }

func TestSeedEventsSkipsExistingSlugs(t *testing.T) {
	repo := &seedRepo{rows: map[string]*models.Event{
		"spring-field-day": {Slug: "spring-field-day"},
	}}
	events := []*models.Event{
		{Title: "Spring Field Day", Slug: "spring-field-day", Date: core.MustDate("2025-04-12")},
		{Title: "Harvest Workshop", Slug: "harvest-workshop", Date: core.MustDate("2025-10-01")},
	}
	created, err := seedEvents(context.Background(), app.NewEventService(repo), events)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Contains(t, repo.rows, "harvest-workshop")
}

func TestPrintSchema(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	failed := printSchema(cmd, []migration.TableStatus{
		{Name: "costs", Exists: true, Columns: []string{"id", "amount"}},
		{Name: "events", Exists: true, Columns: []string{"id"}, Missing: []string{"slug"}},
		{Name: "users"},
	})
	assert.Equal(t, 2, failed)
	assert.Contains(t, out.String(), "incomplete")
	assert.Contains(t, out.String(), "absent")
	assert.Contains(t, out.String(), "slug")
}

func TestCommandTree(t *testing.T) {
	want := [][]string{
		{"schema", "check"},
		{"migrate"},
		{"users", "list"},
		{"users", "add"},
		{"users", "promote"},
		{"trials", "latest"},
		{"anova"},
		{"seed"},
	}
	for _, path := range want {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

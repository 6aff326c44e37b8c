//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"agrodesk/adapters/postgres"
	"agrodesk/domain/core"
	"agrodesk/internal/migration"
	"agrodesk/models"
)

// startPostgres runs a throwaway Postgres and applies the schema
func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_USER":     "testuser",
				"POSTGRES_DB":       "agrodesk",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/agrodesk?sslmode=disable", host, port.Port())
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	runner := migration.NewRunner(nil)
	require.NoError(t, runner.Run(ctx, db))
	// second run must be a no-op
	require.NoError(t, runner.Run(ctx, db))

	status, err := migration.CheckSchema(ctx, db)
	require.NoError(t, err)
	for _, s := range status {
		assert.True(t, s.OK(), "table %s missing %v", s.Name, s.Missing)
	}
	return db
}

func TestRepositories(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	users := postgres.NewUserRepository(db)
	alice := &models.User{Name: "Alice", Email: "alice@farm.test"}
	bob := &models.User{Name: "Bob", Email: "bob@farm.test"}
	admin := &models.User{Name: "Root", Email: "root@farm.test", Role: models.RoleAdmin}
	for _, u := range []*models.User{alice, bob, admin} {
		require.NoError(t, u.Validate())
		require.NoError(t, users.CreateUser(ctx, u))
	}

	t.Run("users", func(t *testing.T) {
		got, err := users.GetUserByEmail(ctx, "ALICE@farm.test")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		dup := &models.User{Name: "Alice 2", Email: "alice@farm.test", Role: models.RoleUser}
		assert.True(t, core.IsValidationError(users.CreateUser(ctx, dup)))

		require.NoError(t, users.SetRole(ctx, bob.ID, models.RoleAdmin))
		require.NoError(t, users.SetRole(ctx, bob.ID, models.RoleUser))
		assert.ErrorIs(t, users.SetRole(ctx, uuid.New(), models.RoleAdmin), core.ErrNotFound)
	})

	t.Run("costs are scoped to their owner", func(t *testing.T) {
		costs := postgres.NewCostRepository(db)
		mine := &models.Cost{UserID: alice.ID, Date: core.MustDate("2024-02-10"), Category: "fuel", Amount: 120, ExpenseType: models.ExpenseOneTime}
		theirs := &models.Cost{UserID: bob.ID, Date: core.MustDate("2024-02-11"), Category: "rent", Amount: 900, ExpenseType: models.ExpenseMonthly}
		require.NoError(t, costs.Create(ctx, mine))
		require.NoError(t, costs.Create(ctx, theirs))

		list, err := costs.List(ctx, alice.Session(), models.CostFilter{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, mine.ID, list[0].ID)

		all, err := costs.List(ctx, admin.Session(), models.CostFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		total, err := costs.Total(ctx, admin.Session(), models.CostFilter{ExpenseType: models.ExpenseMonthly})
		require.NoError(t, err)
		assert.InDelta(t, 900, total, 1e-9)

		_, err = costs.Get(ctx, alice.Session(), theirs.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, costs.Delete(ctx, alice.Session(), theirs.ID), core.ErrNotFound)

		mine.Amount = 150
		require.NoError(t, costs.Update(ctx, alice.Session(), mine))
		got, err := costs.Get(ctx, alice.Session(), mine.ID)
		require.NoError(t, err)
		assert.InDelta(t, 150, got.Amount, 1e-9)
	})

	t.Run("trial with details", func(t *testing.T) {
		trials := postgres.NewTrialRepository(db)
		code, err := trials.LastCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "", code)

		treatment := "Biostimulant"
		nt := &models.NewTrial{
			Trial: models.FieldTrial{
				Name: "Maize biostimulant", TrialCode: models.NextTrialCode(code), Crop: "maize",
				TrialType: "efficacy", FarmName: "North", FieldLocation: "Block 4",
				StartDate: core.MustDate("2024-10-01"), EndDate: core.MustDate("2025-03-01"),
				ResponsibleAgronomistIDs: []string{alice.ID.String()},
			},
			Treatments: []*models.TrialTreatment{{Name: "Control"}, {Name: treatment}},
			Plots:      []*models.TrialPlot{{PlotNumber: "P1", Treatment: &treatment}},
			Variables:  []*models.TrialVariable{{Name: "Yield"}},
			Tasks:      []*models.TrialTask{{Title: "Plant", DueDate: core.MustDate("2024-10-02")}},
		}
		require.NoError(t, nt.Trial.Validate())
		require.NoError(t, nt.Tasks[0].Validate())
		require.NoError(t, trials.CreateWithDetails(ctx, nt))

		code, err = trials.LastCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "TRIAL-0001", code)

		treatments, err := trials.Treatments(ctx, nt.Trial.ID)
		require.NoError(t, err)
		assert.Len(t, treatments, 2)

		point := &models.TrialDataPoint{
			TrialID: nt.Trial.ID, PlotID: nt.Plots[0].ID, VariableID: nt.Variables[0].ID,
			Value: "8.4", MeasurementDate: core.MustDate("2025-02-20"), RecordedBy: "alice",
		}
		require.NoError(t, trials.AddDataPoint(ctx, point))
		data, err := trials.Data(ctx, nt.Trial.ID)
		require.NoError(t, err)
		require.Len(t, data, 1)

		mine, err := trials.List(ctx, &alice.ID)
		require.NoError(t, err)
		assert.Len(t, mine, 1)
		none, err := trials.List(ctx, &bob.ID)
		require.NoError(t, err)
		assert.Empty(t, none)

		require.NoError(t, trials.Delete(ctx, nt.Trial.ID))
		_, err = trials.Get(ctx, nt.Trial.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
		plots, err := trials.Plots(ctx, nt.Trial.ID)
		require.NoError(t, err)
		assert.Empty(t, plots)
	})

	t.Run("events by id or slug", func(t *testing.T) {
		events := postgres.NewEventRepository(db)
		e := &models.Event{Title: "Spring Field Day", Date: core.MustDate("2025-04-12")}
		require.NoError(t, e.Validate())
		require.NoError(t, events.Create(ctx, e))

		bySlug, err := events.GetByIDOrSlug(ctx, "spring-field-day")
		require.NoError(t, err)
		byID, err := events.GetByIDOrSlug(ctx, e.ID.String())
		require.NoError(t, err)
		assert.Equal(t, bySlug.ID, byID.ID)

		dup := &models.Event{Title: "Spring field day", Date: core.MustDate("2025-04-13")}
		require.NoError(t, dup.Validate())
		assert.True(t, core.IsValidationError(events.Create(ctx, dup)))

		_, err = events.GetByIDOrSlug(ctx, "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

package main

import (
	"context"
	"fmt"
	"os"

	"agrodesk/adapters/postgres"
	"agrodesk/app"
	"agrodesk/domain/core"
	"agrodesk/models"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	seedFile    string
	seedMigrate bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load analysis pricing and events from a YAML file",
	Long: `Load analysis pricing and events from a YAML file.

  pricing:
    - analysis_type: soil
      base_price: 35
      is_active: true
  events:
    - title: Spring Field Day
      date: 2025-04-12
      location: Research farm

Events whose slug already exists are skipped.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file")
	seedCmd.Flags().BoolVar(&seedMigrate, "migrate", false, "run migrations first")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}

type seedEvent struct {
	models.Event `yaml:",inline"`
	Date         string `yaml:"date"`
}

type seedData struct {
	Pricing []*models.AnalysisPricing `yaml:"pricing"`
	Events  []seedEvent               `yaml:"events"`
}

// loadSeed parses and validates a seed file without touching the database
func loadSeed(path string) ([]*models.AnalysisPricing, []*models.Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var data seedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidInput, path, err)
	}

	for i, p := range data.Pricing {
		if err := p.Validate(); err != nil {
			return nil, nil, fmt.Errorf("pricing[%d]: %w", i, err)
		}
	}
	events := make([]*models.Event, 0, len(data.Events))
	for i, se := range data.Events {
		e := se.Event
		if se.Date != "" {
			d, err := core.ParseDate(se.Date)
			if err != nil {
				return nil, nil, fmt.Errorf("events[%d]: %w", i, err)
			}
			e.Date = d
		}
		if err := e.Validate(); err != nil {
			return nil, nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		events = append(events, &e)
	}
	return data.Pricing, events, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	pricing, events, err := loadSeed(seedFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if seedMigrate {
		if err := migrateDB(ctx, db); err != nil {
			return err
		}
	}

	prices := app.NewPricingService(postgres.NewPricingRepository(db))
	for _, p := range pricing {
		if err := prices.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed pricing %s: %w", p.AnalysisType, err)
		}
	}

	created, err := seedEvents(ctx, app.NewEventService(postgres.NewEventRepository(db)), events)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d pricing rows and %d events (%d already present)\n",
		len(pricing), created, len(events)-created)
	return nil
}

// seedEvents creates events whose slug is not taken yet
func seedEvents(ctx context.Context, svc *app.EventService, events []*models.Event) (int, error) {
	created := 0
	for _, e := range events {
		if _, err := svc.Get(ctx, e.Slug); err == nil {
			logger.Debug("event %s already present", e.Slug)
			continue
		} else if !core.IsNotFoundError(err) {
			return created, err
		}
		if err := svc.Create(ctx, e); err != nil {
			return created, fmt.Errorf("failed to seed event %s: %w", e.Slug, err)
		}
		created++
	}
	return created, nil
}

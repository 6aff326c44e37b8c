package migration

import (
	"context"
	"sort"

	"agrodesk/internal"
	"agrodesk/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	logger  *internal.Logger
}

// NewRunner creates a new migration runner
func NewRunner(logger *internal.Logger) *MigrationRunner {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &MigrationRunner{
		version: "2.0.0",
		logger:  logger,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

type step struct {
	name string
	sql  string
}

// Run executes all database migrations in the correct order. Every
// statement is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.DatabaseError("failed to "+s.name, err)
		}
		r.logger.Debug("migration step %q applied", s.name)
	}

	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			// Indexes are advisory
			r.logger.Warn("failed to create index: %v", err)
		}
	}

	r.logger.Info("database schema at version %s", r.version)
	return nil
}

var steps = []step{
	{"create users table", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create costs table", `
		CREATE TABLE IF NOT EXISTS costs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL,
			date DATE NOT NULL,
			category VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			expense_type VARCHAR(20) NOT NULL DEFAULT 'one_time',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create documents table", `
		CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			description TEXT,
			category VARCHAR(100) NOT NULL,
			file_type VARCHAR(100) NOT NULL DEFAULT '',
			file_path TEXT NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			uploaded_by TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create products table", `
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create product_batches table", `
		CREATE TABLE IF NOT EXISTS product_batches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			product_id UUID REFERENCES products(id) ON DELETE SET NULL,
			production_date DATE NOT NULL,
			batch_no VARCHAR(100) NOT NULL,
			work_order VARCHAR(100),
			ph NUMERIC,
			conductivity_ms NUMERIC,
			sg NUMERIC,
			volume NUMERIC,
			note TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create farm_deliveries table", `
		CREATE TABLE IF NOT EXISTS farm_deliveries (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			farm VARCHAR(255) NOT NULL,
			date DATE NOT NULL,
			delivered_by VARCHAR(255) NOT NULL DEFAULT '',
			received_by VARCHAR(255),
			produce VARCHAR(255) NOT NULL,
			quantity NUMERIC,
			notes TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create nutrition_farm_requests table", `
		CREATE TABLE IF NOT EXISTS nutrition_farm_requests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			farm VARCHAR(255) NOT NULL,
			manager VARCHAR(255) NOT NULL DEFAULT '',
			date DATE NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			materials JSONB NOT NULL DEFAULT '[]',
			notes TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create analyses table", `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			analysis_type VARCHAR(50) NOT NULL,
			category VARCHAR(100),
			status VARCHAR(50) NOT NULL DEFAULT 'pending',
			consultant VARCHAR(255),
			client_name VARCHAR(255),
			crop VARCHAR(100),
			test_count INTEGER,
			total_price NUMERIC(12,2),
			notes TEXT,
			emailed_date TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create analysis_pricing table", `
		CREATE TABLE IF NOT EXISTS analysis_pricing (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			analysis_type VARCHAR(50) NOT NULL,
			category VARCHAR(100),
			base_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			description TEXT,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create events table", `
		CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			slug VARCHAR(255) UNIQUE NOT NULL,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			date DATE NOT NULL,
			location VARCHAR(255),
			cost NUMERIC(12,2),
			featured BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create field_trials table", `
		CREATE TABLE IF NOT EXISTS field_trials (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(255) NOT NULL,
			trial_code VARCHAR(50) UNIQUE,
			crop VARCHAR(100) NOT NULL,
			variety_hybrid VARCHAR(255),
			trial_type VARCHAR(100) NOT NULL,
			season VARCHAR(50) NOT NULL DEFAULT '',
			start_date DATE,
			end_date DATE,
			status VARCHAR(20) NOT NULL DEFAULT 'planned',
			objective TEXT NOT NULL DEFAULT '',
			farm_name VARCHAR(255) NOT NULL,
			field_location VARCHAR(255) NOT NULL,
			gps_coordinates VARCHAR(100),
			trial_area NUMERIC,
			responsible_agronomist_ids TEXT[] NOT NULL DEFAULT '{}',
			tags TEXT[] NOT NULL DEFAULT '{}',
			trial_category VARCHAR(100),
			budget NUMERIC(12,2),
			spent NUMERIC(12,2) NOT NULL DEFAULT 0,
			completion_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
			notifications_enabled BOOLEAN NOT NULL DEFAULT true,
			is_draft BOOLEAN NOT NULL DEFAULT false,
			design_type VARCHAR(100),
			replications INTEGER,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create field_trial_treatments table", `
		CREATE TABLE IF NOT EXISTS field_trial_treatments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trial_id UUID NOT NULL REFERENCES field_trials(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			application_method VARCHAR(255),
			rate VARCHAR(100),
			timing VARCHAR(100),
			color VARCHAR(20),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create field_trial_plots table", `
		CREATE TABLE IF NOT EXISTS field_trial_plots (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trial_id UUID NOT NULL REFERENCES field_trials(id) ON DELETE CASCADE,
			plot_number VARCHAR(50) NOT NULL,
			treatment VARCHAR(255),
			repetition VARCHAR(50),
			area NUMERIC,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create field_trial_variables table", `
		CREATE TABLE IF NOT EXISTS field_trial_variables (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trial_id UUID NOT NULL REFERENCES field_trials(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			unit VARCHAR(50),
			frequency VARCHAR(50),
			description TEXT,
			data_type VARCHAR(50),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create field_trial_data table", `
		CREATE TABLE IF NOT EXISTS field_trial_data (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trial_id UUID NOT NULL REFERENCES field_trials(id) ON DELETE CASCADE,
			plot_id UUID NOT NULL REFERENCES field_trial_plots(id) ON DELETE CASCADE,
			variable_id UUID NOT NULL REFERENCES field_trial_variables(id) ON DELETE CASCADE,
			value TEXT NOT NULL,
			measurement_date DATE,
			recorded_by VARCHAR(255) NOT NULL DEFAULT '',
			notes TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create field_trial_tasks table", `
		CREATE TABLE IF NOT EXISTS field_trial_tasks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			trial_id UUID NOT NULL REFERENCES field_trials(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			due_date DATE NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			responsible_person_id UUID,
			priority VARCHAR(10) NOT NULL DEFAULT 'medium',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_costs_user_date ON costs(user_id, date DESC)",
	"CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_batches_production_date ON product_batches(production_date DESC)",
	"CREATE INDEX IF NOT EXISTS idx_deliveries_date ON farm_deliveries(date DESC)",
	"CREATE INDEX IF NOT EXISTS idx_requests_date ON nutrition_farm_requests(date DESC)",
	"CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_pricing_type_active ON analysis_pricing(analysis_type, is_active)",
	"CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)",
	"CREATE INDEX IF NOT EXISTS idx_trials_created_at ON field_trials(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_trials_agronomists ON field_trials USING GIN (responsible_agronomist_ids)",
	"CREATE INDEX IF NOT EXISTS idx_trial_data_trial ON field_trial_data(trial_id, variable_id)",
	"CREATE INDEX IF NOT EXISTS idx_trial_tasks_trial ON field_trial_tasks(trial_id, due_date)",
}

// ExpectedColumns lists every table the application reads and the
// columns it selects
var ExpectedColumns = map[string][]string{
	"users":                   {"id", "name", "email", "role", "is_active", "created_at", "updated_at"},
	"costs":                   {"id", "user_id", "date", "category", "description", "amount", "expense_type", "created_at", "updated_at"},
	"documents":               {"id", "name", "description", "category", "file_type", "file_path", "file_size", "uploaded_by", "created_at", "updated_at"},
	"products":                {"id", "name"},
	"product_batches":         {"id", "product_id", "production_date", "batch_no", "work_order", "ph", "conductivity_ms", "sg", "volume", "note", "created_at"},
	"farm_deliveries":         {"id", "farm", "date", "delivered_by", "received_by", "produce", "quantity", "notes", "created_at", "updated_at"},
	"nutrition_farm_requests": {"id", "farm", "manager", "date", "status", "materials", "notes", "created_at", "updated_at"},
	"analyses":                {"id", "analysis_type", "category", "status", "consultant", "client_name", "crop", "test_count", "total_price", "notes", "emailed_date", "created_at", "updated_at"},
	"analysis_pricing":        {"id", "analysis_type", "category", "base_price", "description", "is_active", "created_at", "updated_at"},
	"events":                  {"id", "slug", "title", "description", "date", "location", "cost", "featured", "created_at", "updated_at"},
	"field_trials":            {"id", "name", "trial_code", "crop", "trial_type", "status", "farm_name", "field_location", "responsible_agronomist_ids", "tags", "created_at", "updated_at"},
	"field_trial_treatments":  {"id", "trial_id", "name"},
	"field_trial_plots":       {"id", "trial_id", "plot_number", "treatment"},
	"field_trial_variables":   {"id", "trial_id", "name", "unit"},
	"field_trial_data":        {"id", "trial_id", "plot_id", "variable_id", "value", "measurement_date"},
	"field_trial_tasks":       {"id", "trial_id", "title", "due_date", "status", "priority"},
}

// TableStatus reports how a live table compares with ExpectedColumns
type TableStatus struct {
	Name    string   `json:"name"`
	Exists  bool     `json:"exists"`
	Columns []string `json:"columns"`
	Missing []string `json:"missing,omitempty"`
}

// OK is true when the table exists with every expected column
func (s TableStatus) OK() bool {
	return s.Exists && len(s.Missing) == 0
}

// CheckSchema inspects information_schema for every expected table
func CheckSchema(ctx context.Context, db *sqlx.DB) ([]TableStatus, error) {
	var rows []struct {
		Table  string `db:"table_name"`
		Column string `db:"column_name"`
	}
	err := db.SelectContext(ctx, &rows, `
		SELECT table_name, column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		ORDER BY table_name, ordinal_position
	`)
	if err != nil {
		return nil, errors.DatabaseError("failed to read information_schema", err)
	}

	live := make(map[string][]string)
	for _, r := range rows {
		live[r.Table] = append(live[r.Table], r.Column)
	}
	return compareSchema(live), nil
}

func compareSchema(live map[string][]string) []TableStatus {
	names := make([]string, 0, len(ExpectedColumns))
	for name := range ExpectedColumns {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TableStatus, 0, len(names))
	for _, name := range names {
		cols, exists := live[name]
		status := TableStatus{Name: name, Exists: exists, Columns: cols}
		have := make(map[string]bool, len(cols))
		for _, c := range cols {
			have[c] = true
		}
		for _, want := range ExpectedColumns[name] {
			if !have[want] {
				status.Missing = append(status.Missing, want)
			}
		}
		out = append(out, status)
	}
	return out
}

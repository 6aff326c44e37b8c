package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// Analysis types with dedicated dashboard series
const (
	AnalysisTypeSoil = "soil"
	AnalysisTypeLeaf = "leaf"
)

// Analysis is a row of analyses: one laboratory job for a client
type Analysis struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	AnalysisType string     `json:"analysis_type" db:"analysis_type"`
	Category     *string    `json:"category,omitempty" db:"category"`
	Status       string     `json:"status" db:"status"`
	Consultant   *string    `json:"consultant,omitempty" db:"consultant"`
	ClientName   *string    `json:"client_name,omitempty" db:"client_name"`
	Crop         *string    `json:"crop,omitempty" db:"crop"`
	TestCount    *int       `json:"test_count,omitempty" db:"test_count"`
	TotalPrice   *float64   `json:"total_price,omitempty" db:"total_price"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`
	EmailedDate  *time.Time `json:"emailed_date,omitempty" db:"emailed_date"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Validate checks required analysis fields
func (a *Analysis) Validate() error {
	a.AnalysisType = strings.ToLower(strings.TrimSpace(a.AnalysisType))
	if a.AnalysisType == "" {
		return core.NewMissingFieldError("analysis_type")
	}
	if a.Status == "" {
		a.Status = "pending"
	}
	if a.TestCount != nil && *a.TestCount < 0 {
		return core.NewValidationError("test_count", "must not be negative")
	}
	if a.TotalPrice != nil && *a.TotalPrice < 0 {
		return core.NewValidationError("total_price", "must not be negative")
	}
	return nil
}

// Tests is the number of tests in the job; missing counts as one
func (a *Analysis) Tests() int {
	if a.TestCount == nil {
		return 1
	}
	return *a.TestCount
}

// Revenue is the billed price, zero when unpriced
func (a *Analysis) Revenue() float64 {
	if a.TotalPrice == nil {
		return 0
	}
	return *a.TotalPrice
}

// TurnaroundDays is the time from creation to the results email
func (a *Analysis) TurnaroundDays() (float64, bool) {
	if a.EmailedDate == nil || a.CreatedAt.IsZero() {
		return 0, false
	}
	return core.DaysBetween(a.CreatedAt, *a.EmailedDate), true
}

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// AnalysisPricing is a row of analysis_pricing
type AnalysisPricing struct {
	ID           uuid.UUID `json:"id" db:"id" yaml:"-"`
	AnalysisType string    `json:"analysis_type" db:"analysis_type" yaml:"analysis_type"`
	Category     *string   `json:"category,omitempty" db:"category" yaml:"category,omitempty"`
	BasePrice    float64   `json:"base_price" db:"base_price" yaml:"base_price"`
	Description  *string   `json:"description,omitempty" db:"description" yaml:"description,omitempty"`
	IsActive     bool      `json:"is_active" db:"is_active" yaml:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at" yaml:"-"`
}

// Validate checks required pricing fields
func (p *AnalysisPricing) Validate() error {
	p.AnalysisType = strings.ToLower(strings.TrimSpace(p.AnalysisType))
	if p.AnalysisType == "" {
		return core.NewMissingFieldError("analysis_type")
	}
	if p.BasePrice < 0 {
		return core.NewValidationError("base_price", "must not be negative")
	}
	return nil
}

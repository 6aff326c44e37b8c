package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// Event is a row of events (field days, workshops)
type Event struct {
	ID          uuid.UUID `json:"id" db:"id" yaml:"-"`
	Slug        string    `json:"slug" db:"slug" yaml:"slug"`
	Title       string    `json:"title" db:"title" yaml:"title"`
	Description *string   `json:"description,omitempty" db:"description" yaml:"description,omitempty"`
	Date        core.Date `json:"date" db:"date" yaml:"-"`
	Location    *string   `json:"location,omitempty" db:"location" yaml:"location,omitempty"`
	Cost        *float64  `json:"cost,omitempty" db:"cost" yaml:"cost,omitempty"`
	Featured    bool      `json:"featured" db:"featured" yaml:"featured"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" yaml:"-"`
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and joins alphanumeric runs with '-'
func Slugify(s string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Validate checks required fields and derives the slug from the title
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return core.NewMissingFieldError("title")
	}
	if e.Date.IsZero() {
		return core.NewMissingFieldError("date")
	}
	if e.Slug == "" {
		e.Slug = Slugify(e.Title)
	}
	if e.Slug != Slugify(e.Slug) || e.Slug == "" {
		return core.NewValidationError("slug", "must be lowercase words joined by '-'")
	}
	if core.IsID(e.Slug) {
		return core.NewValidationError("slug", "must not look like an id")
	}
	return nil
}

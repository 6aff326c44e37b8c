package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// FarmDelivery is a row of farm_deliveries
type FarmDelivery struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Farm        string    `json:"farm" db:"farm"`
	Date        core.Date `json:"date" db:"date"`
	DeliveredBy string    `json:"delivered_by" db:"delivered_by"`
	ReceivedBy  *string   `json:"received_by,omitempty" db:"received_by"`
	Produce     string    `json:"produce" db:"produce"`
	Quantity    *float64  `json:"quantity,omitempty" db:"quantity"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks required delivery fields
func (d *FarmDelivery) Validate() error {
	if strings.TrimSpace(d.Farm) == "" {
		return core.NewMissingFieldError("farm")
	}
	if d.Date.IsZero() {
		return core.NewMissingFieldError("date")
	}
	if strings.TrimSpace(d.Produce) == "" {
		return core.NewMissingFieldError("produce")
	}
	return nil
}

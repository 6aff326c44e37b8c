package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// RequestStatus is the fulfilment state of a nutrition farm request
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestDelivered RequestStatus = "delivered"
	RequestCancelled RequestStatus = "cancelled"
)

// Material is one requested input
type Material struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// Materials is stored as a JSONB array
type Materials []Material

// Value implements driver.Valuer
func (m Materials) Value() (driver.Value, error) {
	if m == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *Materials) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("cannot scan %T into Materials", src)
}

// NutritionFarmRequest is a row of nutrition_farm_requests
type NutritionFarmRequest struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Farm      string        `json:"farm" db:"farm"`
	Manager   string        `json:"manager" db:"manager"`
	Date      core.Date     `json:"date" db:"date"`
	Status    RequestStatus `json:"status" db:"status"`
	Materials Materials     `json:"materials" db:"materials"`
	Notes     *string       `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// Validate checks required request fields and material rows
func (r *NutritionFarmRequest) Validate() error {
	if strings.TrimSpace(r.Farm) == "" {
		return core.NewMissingFieldError("farm")
	}
	if r.Date.IsZero() {
		return core.NewMissingFieldError("date")
	}
	if r.Status == "" {
		r.Status = RequestPending
	}
	switch r.Status {
	case RequestPending, RequestApproved, RequestDelivered, RequestCancelled:
	default:
		return core.NewEnumError("status", string(r.Status), "pending", "approved", "delivered", "cancelled")
	}
	for i, m := range r.Materials {
		if strings.TrimSpace(m.Name) == "" {
			return core.NewMissingFieldError(fmt.Sprintf("materials[%d].name", i))
		}
		if m.Quantity < 0 {
			return core.NewValidationError(fmt.Sprintf("materials[%d].quantity", i), "must not be negative")
		}
	}
	return nil
}

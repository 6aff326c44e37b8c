package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// ExpenseType separates recurring from one-off costs
type ExpenseType string

const (
	ExpenseMonthly ExpenseType = "monthly"
	ExpenseOneTime ExpenseType = "one_time"
)

// Cost is a row of costs, owned by the user who recorded it
type Cost struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Date        core.Date   `json:"date" db:"date"`
	Category    string      `json:"category" db:"category"`
	Description string      `json:"description" db:"description"`
	Amount      float64     `json:"amount" db:"amount"`
	ExpenseType ExpenseType `json:"expense_type" db:"expense_type"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// Validate checks required cost fields
func (c *Cost) Validate() error {
	if c.Date.IsZero() {
		return core.NewMissingFieldError("date")
	}
	if strings.TrimSpace(c.Category) == "" {
		return core.NewMissingFieldError("category")
	}
	if c.Amount < 0 {
		return core.NewValidationError("amount", "must not be negative")
	}
	if c.ExpenseType == "" {
		c.ExpenseType = ExpenseOneTime
	}
	switch c.ExpenseType {
	case ExpenseMonthly, ExpenseOneTime:
	default:
		return core.NewEnumError("expense_type", string(c.ExpenseType), string(ExpenseMonthly), string(ExpenseOneTime))
	}
	return nil
}

// CostFilter narrows cost listings. Zero values do not filter.
type CostFilter struct {
	Start       core.Date
	End         core.Date
	Category    string
	ExpenseType ExpenseType
}

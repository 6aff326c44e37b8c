package models

import (
	"time"

	"github.com/google/uuid"

	"agrodesk/domain/core"
)

// UnknownProduct labels batches whose product row is missing
const UnknownProduct = "Unknown Product"

// Batch is a row of product_batches joined with products.name
type Batch struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ProductID      *uuid.UUID `json:"product_id,omitempty" db:"product_id"`
	ProductName    string     `json:"product_name" db:"product_name"`
	ProductionDate core.Date  `json:"production_date" db:"production_date"`
	BatchNo        string     `json:"batch_no" db:"batch_no"`
	WorkOrder      *string    `json:"work_order,omitempty" db:"work_order"`
	PH             *float64   `json:"ph,omitempty" db:"ph"`
	ConductivityMS *float64   `json:"conductivity_ms,omitempty" db:"conductivity_ms"`
	SG             *float64   `json:"sg,omitempty" db:"sg"`
	Volume         *float64   `json:"volume,omitempty" db:"volume"`
	Note           *string    `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

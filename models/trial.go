package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agrodesk/domain/core"
)

// TrialStatus is the lifecycle state of a field trial
type TrialStatus string

const (
	TrialStatusPlanned   TrialStatus = "planned"
	TrialStatusOngoing   TrialStatus = "ongoing"
	TrialStatusCompleted TrialStatus = "completed"
	TrialStatusCancelled TrialStatus = "cancelled"
)

// Valid reports whether the status is one of the known values
func (s TrialStatus) Valid() bool {
	switch s {
	case TrialStatusPlanned, TrialStatusOngoing, TrialStatusCompleted, TrialStatusCancelled:
		return true
	}
	return false
}

// TrialCodePrefix prefixes generated trial codes (TRIAL-0001)
const TrialCodePrefix = "TRIAL"

// FieldTrial is a row of field_trials
type FieldTrial struct {
	ID                       uuid.UUID      `json:"id" db:"id"`
	Name                     string         `json:"name" db:"name"`
	TrialCode                string         `json:"trial_code" db:"trial_code"`
	Crop                     string         `json:"crop" db:"crop"`
	VarietyHybrid            *string        `json:"variety_hybrid,omitempty" db:"variety_hybrid"`
	TrialType                string         `json:"trial_type" db:"trial_type"`
	Season                   string         `json:"season" db:"season"`
	StartDate                core.Date      `json:"start_date" db:"start_date"`
	EndDate                  core.Date      `json:"end_date" db:"end_date"`
	Status                   TrialStatus    `json:"status" db:"status"`
	Objective                string         `json:"objective" db:"objective"`
	FarmName                 string         `json:"farm_name" db:"farm_name"`
	FieldLocation            string         `json:"field_location" db:"field_location"`
	GPSCoordinates           *string        `json:"gps_coordinates,omitempty" db:"gps_coordinates"`
	TrialArea                *float64       `json:"trial_area,omitempty" db:"trial_area"`
	ResponsibleAgronomistIDs pq.StringArray `json:"responsible_agronomist_ids" db:"responsible_agronomist_ids"`
	Tags                     pq.StringArray `json:"tags" db:"tags"`
	TrialCategory            *string        `json:"trial_category,omitempty" db:"trial_category"`
	Budget                   *float64       `json:"budget,omitempty" db:"budget"`
	Spent                    float64        `json:"spent" db:"spent"`
	CompletionPercentage     float64        `json:"completion_percentage" db:"completion_percentage"`
	NotificationsEnabled     bool           `json:"notifications_enabled" db:"notifications_enabled"`
	IsDraft                  bool           `json:"is_draft" db:"is_draft"`
	DesignType               *string        `json:"design_type,omitempty" db:"design_type"`
	Replications             *int           `json:"replications,omitempty" db:"replications"`
	CreatedAt                time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time      `json:"updated_at" db:"updated_at"`
}

// Validate checks the fields the trial form requires
func (t *FieldTrial) Validate() error {
	required := map[string]string{
		"name":           t.Name,
		"crop":           t.Crop,
		"trial_type":     t.TrialType,
		"farm_name":      t.FarmName,
		"field_location": t.FieldLocation,
	}
	for _, field := range []string{"name", "crop", "trial_type", "farm_name", "field_location"} {
		if strings.TrimSpace(required[field]) == "" {
			return core.NewMissingFieldError(field)
		}
	}
	if t.Status == "" {
		t.Status = TrialStatusPlanned
	}
	if !t.Status.Valid() {
		return core.NewEnumError("status", string(t.Status), "planned", "ongoing", "completed", "cancelled")
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate.Time) {
		return core.NewValidationError("end_date", "is before start_date")
	}
	if t.CompletionPercentage < 0 || t.CompletionPercentage > 100 {
		return core.NewValidationError("completion_percentage", "must be within 0..100")
	}
	return nil
}

// NextTrialCode returns the code following lastCode (TRIAL-0041 -> TRIAL-0042).
// Codes that do not follow the PREFIX-NUMBER shape restart the sequence.
func NextTrialCode(lastCode string) string {
	parts := strings.SplitN(lastCode, "-", 2)
	if len(parts) < 2 {
		return fmt.Sprintf("%s-%04d", TrialCodePrefix, 1)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		n = 0
	}
	return fmt.Sprintf("%s-%04d", TrialCodePrefix, n+1)
}

// TrialTreatment is a row of field_trial_treatments
type TrialTreatment struct {
	ID                uuid.UUID `json:"id" db:"id"`
	TrialID           uuid.UUID `json:"trial_id" db:"trial_id"`
	Name              string    `json:"name" db:"name"`
	Description       *string   `json:"description,omitempty" db:"description"`
	ApplicationMethod *string   `json:"application_method,omitempty" db:"application_method"`
	Rate              *string   `json:"rate,omitempty" db:"rate"`
	Timing            *string   `json:"timing,omitempty" db:"timing"`
	Color             *string   `json:"color,omitempty" db:"color"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks required treatment fields
func (t *TrialTreatment) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return core.NewMissingFieldError("name")
	}
	return nil
}

// TrialPlot is a row of field_trial_plots. Treatment holds the treatment
// name the plot received.
type TrialPlot struct {
	ID         uuid.UUID `json:"id" db:"id"`
	TrialID    uuid.UUID `json:"trial_id" db:"trial_id"`
	PlotNumber string    `json:"plot_number" db:"plot_number"`
	Treatment  *string   `json:"treatment,omitempty" db:"treatment"`
	Repetition *string   `json:"repetition,omitempty" db:"repetition"`
	Area       *float64  `json:"area,omitempty" db:"area"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Validate checks required plot fields
func (p *TrialPlot) Validate() error {
	if strings.TrimSpace(p.PlotNumber) == "" {
		return core.NewMissingFieldError("plot_number")
	}
	return nil
}

// TrialVariable is a row of field_trial_variables (a measured quantity)
type TrialVariable struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TrialID     uuid.UUID `json:"trial_id" db:"trial_id"`
	Name        string    `json:"name" db:"name"`
	Unit        *string   `json:"unit,omitempty" db:"unit"`
	Frequency   *string   `json:"frequency,omitempty" db:"frequency"`
	Description *string   `json:"description,omitempty" db:"description"`
	DataType    *string   `json:"data_type,omitempty" db:"data_type"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks required variable fields
func (v *TrialVariable) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return core.NewMissingFieldError("name")
	}
	return nil
}

// TrialDataPoint is a row of field_trial_data. Value is stored as text
// because variables may be categorical.
type TrialDataPoint struct {
	ID              uuid.UUID `json:"id" db:"id"`
	TrialID         uuid.UUID `json:"trial_id" db:"trial_id"`
	PlotID          uuid.UUID `json:"plot_id" db:"plot_id"`
	VariableID      uuid.UUID `json:"variable_id" db:"variable_id"`
	Value           string    `json:"value" db:"value"`
	MeasurementDate core.Date `json:"measurement_date" db:"measurement_date"`
	RecordedBy      string    `json:"recorded_by" db:"recorded_by"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks required data point fields
func (d *TrialDataPoint) Validate() error {
	if d.PlotID == uuid.Nil {
		return core.NewMissingFieldError("plot_id")
	}
	if d.VariableID == uuid.Nil {
		return core.NewMissingFieldError("variable_id")
	}
	if strings.TrimSpace(d.Value) == "" {
		return core.NewMissingFieldError("value")
	}
	return nil
}

// Numeric parses the value as a finite number. NaN and infinities count
// as non-numeric.
func (d *TrialDataPoint) Numeric() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(d.Value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// TaskStatus is the state of a trial task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority ranks trial tasks
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// TrialTask is a row of field_trial_tasks
type TrialTask struct {
	ID                  uuid.UUID    `json:"id" db:"id"`
	TrialID             uuid.UUID    `json:"trial_id" db:"trial_id"`
	Title               string       `json:"title" db:"title"`
	Description         *string      `json:"description,omitempty" db:"description"`
	DueDate             core.Date    `json:"due_date" db:"due_date"`
	Status              TaskStatus   `json:"status" db:"status"`
	ResponsiblePersonID *uuid.UUID   `json:"responsible_person_id,omitempty" db:"responsible_person_id"`
	Priority            TaskPriority `json:"priority" db:"priority"`
	CreatedAt           time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time    `json:"updated_at" db:"updated_at"`
}

// Validate checks required task fields and fills defaults
func (t *TrialTask) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return core.NewMissingFieldError("title")
	}
	if t.DueDate.IsZero() {
		return core.NewMissingFieldError("due_date")
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	switch t.Status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
	default:
		return core.NewEnumError("status", string(t.Status), "pending", "in_progress", "completed")
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	switch t.Priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
	default:
		return core.NewEnumError("priority", string(t.Priority), "low", "medium", "high")
	}
	return nil
}

// TrialDetails is a trial with all of its related rows
type TrialDetails struct {
	FieldTrial
	Treatments []*TrialTreatment `json:"treatments"`
	Plots      []*TrialPlot      `json:"plots"`
	Variables  []*TrialVariable  `json:"variables"`
	Data       []*TrialDataPoint `json:"data"`
	Tasks      []*TrialTask      `json:"tasks"`
}

// NewTrial bundles a trial with the related rows created alongside it
type NewTrial struct {
	Trial      FieldTrial        `json:"trial"`
	Treatments []*TrialTreatment `json:"treatments"`
	Plots      []*TrialPlot      `json:"plots"`
	Variables  []*TrialVariable  `json:"variables"`
	Tasks      []*TrialTask      `json:"tasks"`
}

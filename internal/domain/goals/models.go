package goals

import (
	"time"

	"github.com/shopspring/decimal"
)

type Goal struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Type            Type            `json:"type"`
	Category        string          `json:"category,omitempty"`
	Weight          decimal.Decimal `json:"weight"`
	TargetValue     string          `json:"targetValue,omitempty"`
	MeasurementUnit string          `json:"measurementUnit,omitempty"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Status          Status          `json:"status"`
	ProgressPercent decimal.Decimal `json:"progressPercent"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	UpdatedBy       string          `json:"updatedBy,omitempty"`
}

// Year is the budget year a goal's weight counts against.
func (g Goal) Year() int {
	return g.StartDate.Year()
}

type Filter struct {
	EmployeeID string
	Type       Type
	Status     Status
	Year       int
}

// Draft carries the caller-editable fields for create and update. Every
// update replaces all of them wholesale.
type Draft struct {
	EmployeeID      string
	Title           string
	Description     string
	Type            Type
	Category        string
	Weight          decimal.Decimal
	TargetValue     string
	MeasurementUnit string
	StartDate       time.Time
	EndDate         time.Time
}

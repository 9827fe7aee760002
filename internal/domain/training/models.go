package training

import (
	"time"

	"github.com/shopspring/decimal"
)

// Result is a completed (or enrolled) training course for an employee. The
// completion score feeds the evaluation cycle's training impact.
type Result struct {
	ID           string           `json:"id"`
	EmployeeID   string           `json:"employeeId"`
	CourseName   string           `json:"courseName"`
	Provider     string           `json:"provider,omitempty"`
	Score        *decimal.Decimal `json:"score,omitempty"`
	CompletedAt  *time.Time       `json:"completedAt,omitempty"`
	CertificateURL string         `json:"certificateUrl,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	CreatedBy    string           `json:"createdBy,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	UpdatedBy    string           `json:"updatedBy,omitempty"`
}

type Draft struct {
	EmployeeID     string
	CourseName     string
	Provider       string
	Score          *decimal.Decimal
	CompletedAt    *time.Time
	CertificateURL string
}

type Filter struct {
	EmployeeID string
	Year       int
	Completed  bool
}

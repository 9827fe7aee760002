package evaluations

import (
	"time"

	"github.com/shopspring/decimal"
)

type Evaluation struct {
	ID               string           `json:"id"`
	EmployeeID       string           `json:"employeeId"`
	Period           string           `json:"period"`
	Type             Type             `json:"evaluationType"`
	GoalsScore       *decimal.Decimal `json:"goalsScore,omitempty"`
	BehaviorScore    *decimal.Decimal `json:"behaviorScore,omitempty"`
	InitiativesScore *decimal.Decimal `json:"initiativesScore,omitempty"`
	TrainingImpact   decimal.Decimal  `json:"trainingImpact"`
	FinalScore       *decimal.Decimal `json:"finalScore,omitempty"`
	FinalRating      Rating           `json:"finalRating,omitempty"`
	Status           Status           `json:"status"`
	ManagerNotes     string           `json:"managerNotes,omitempty"`
	EmployeeNotes    string           `json:"employeeNotes,omitempty"`
	EvaluatedAt      *time.Time       `json:"evaluatedAt,omitempty"`
	EvaluatedBy      string           `json:"evaluatedBy,omitempty"`
	ApprovedAt       *time.Time       `json:"approvedAt,omitempty"`
	ApprovedBy       string           `json:"approvedBy,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	CreatedBy        string           `json:"createdBy,omitempty"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	UpdatedBy        string           `json:"updatedBy,omitempty"`
	Items            []Item           `json:"items,omitempty"`
}

// Item is an itemized evidence entry owned by an evaluation.
type Item struct {
	ID           string           `json:"id"`
	EvaluationID string           `json:"evaluationId"`
	ItemType     string           `json:"itemType"`
	RefID        string           `json:"refId,omitempty"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	Weight       *decimal.Decimal `json:"weight,omitempty"`
	Score        decimal.Decimal  `json:"score"`
	Notes        string           `json:"notes,omitempty"`
	EvidenceURL  string           `json:"evidenceUrl,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Draft carries the fields a caller supplies when opening an evaluation.
type Draft struct {
	EmployeeID string
	Period     string
	Type       Type
}

// ItemDraft carries the caller-supplied fields of a new evaluation item.
type ItemDraft struct {
	ItemType    string
	RefID       string
	Title       string
	Description string
	Weight      *decimal.Decimal
	Score       decimal.Decimal
	Notes       string
	EvidenceURL string
}

// ScoreUpdate replaces the three sub-scores and manager notes wholesale:
// a nil field clears the stored value rather than keeping it.
type ScoreUpdate struct {
	GoalsScore       *decimal.Decimal
	BehaviorScore    *decimal.Decimal
	InitiativesScore *decimal.Decimal
	ManagerNotes     string
}

type FinalizeResult struct {
	FinalScore  decimal.Decimal `json:"finalScore"`
	FinalRating Rating          `json:"finalRating"`
	PIPCreated  bool            `json:"pipCreated"`
	PIPID       string          `json:"pipId,omitempty"`
}

type Objection struct {
	ID           string     `json:"id"`
	EvaluationID string     `json:"evaluationId"`
	EmployeeID   string     `json:"employeeId"`
	Reason       string     `json:"reason"`
	Status       string     `json:"status"`
	Resolution   string     `json:"resolution,omitempty"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy   string     `json:"resolvedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CreatedBy    string     `json:"createdBy,omitempty"`
}

type Filter struct {
	EmployeeID string
	Period     string
	Type       Type
	Status     Status
}

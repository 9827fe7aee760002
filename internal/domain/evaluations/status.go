package evaluations

import "fmt"

type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusFinalized  Status = "finalized"
	StatusApproved   Status = "approved"
)

type Type string

const (
	TypeAnnual    Type = "annual"
	TypeMidYear   Type = "mid_year"
	TypeQuarterly Type = "quarterly"
)

type Rating string

const (
	RatingExcellent     Rating = "excellent"
	RatingAboveExpected Rating = "above_expected"
	RatingSatisfactory  Rating = "satisfactory"
	RatingBelowExpected Rating = "below_expected"
	RatingPoor          Rating = "poor"
)

const (
	ObjectionOpen     = "open"
	ObjectionAccepted = "accepted"
	ObjectionRejected = "rejected"
	ObjectionAdjusted = "adjusted"
)

func ParseType(value string) (Type, error) {
	switch Type(value) {
	case TypeAnnual, TypeMidYear, TypeQuarterly:
		return Type(value), nil
	}
	return "", fmt.Errorf("unknown evaluation type %q", value)
}

func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusDraft, StatusInProgress, StatusFinalized, StatusApproved:
		return Status(value), nil
	}
	return "", fmt.Errorf("unknown evaluation status %q", value)
}

// Legal source states per operation. Scores and items share the same gate.

var scorableStates = map[Status]bool{
	StatusDraft:      true,
	StatusInProgress: true,
}

var finalizedStates = map[Status]bool{
	StatusFinalized: true,
	StatusApproved:  true,
}

var approvableStates = map[Status]bool{
	StatusFinalized: true,
}

var objectableStates = map[Status]bool{
	StatusFinalized: true,
	StatusApproved:  true,
}

func (s Status) Scorable() bool   { return scorableStates[s] }
func (s Status) Finalized() bool  { return finalizedStates[s] }
func (s Status) Approvable() bool { return approvableStates[s] }
func (s Status) Objectable() bool { return objectableStates[s] }

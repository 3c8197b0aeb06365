package model

import (
	"time"
)

type StepStatus string

const (
	StepStatusLocked      StepStatus = "locked"
	StepStatusAvailable   StepStatus = "available"
	StepStatusInProgress  StepStatus = "inprogress"
	StepStatusCompleted   StepStatus = "completed"
	StepStatusSkipped     StepStatus = "skipped"
	StepStatusAlternative StepStatus = "alternative"
)

var stepStatuses = map[StepStatus]bool{
	StepStatusLocked:      true,
	StepStatusAvailable:   true,
	StepStatusInProgress:  true,
	StepStatusCompleted:   true,
	StepStatusSkipped:     true,
	StepStatusAlternative: true,
}

func (s StepStatus) Valid() bool {
	return stepStatuses[s]
}

type PathType string

const (
	PathTypeMain        PathType = "main"
	PathTypeAlternative PathType = "alternative"
	PathTypeCompleted   PathType = "completed"
)

func (p PathType) Valid() bool {
	return p == PathTypeMain || p == PathTypeAlternative || p == PathTypeCompleted
}

// DefaultEstimatedDays is used when a generated step carries no estimate.
const DefaultEstimatedDays = 14

type GoalStep struct {
	ID              string      `db:"id" json:"id"`
	JourneyID       string      `db:"journey_id" json:"journey_id"`
	Title           string      `db:"title" json:"title"`
	Description     string      `db:"description" json:"description"`
	CustomTitle     *string     `db:"custom_title" json:"custom_title"`
	OrderIndex      int         `db:"order_index" json:"order_index"`
	Status          StepStatus  `db:"status" json:"status"`
	Prerequisites   StringList  `db:"prerequisites" json:"prerequisites"`
	Alternatives    StringList  `db:"alternatives" json:"alternatives"`
	PathType        PathType    `db:"path_type" json:"path_type"`
	Position        MapPosition `db:"position" json:"position"`
	EstimatedDays   int         `db:"estimated_days" json:"estimated_days"`
	ActualDaysSpent *int        `db:"actual_days_spent" json:"actual_days_spent"`
	StartedAt       *time.Time  `db:"started_at" json:"started_at"`
	CompletedAt     *time.Time  `db:"completed_at" json:"completed_at"`
	Notes           StringList  `db:"notes" json:"notes"`
	Metadata        Metadata    `db:"metadata" json:"metadata"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

// DisplayTitle returns the user's custom title when set, otherwise the original title.
func (s *GoalStep) DisplayTitle() string {
	if s.CustomTitle != nil && *s.CustomTitle != "" {
		return *s.CustomTitle
	}
	return s.Title
}

func (s *GoalStep) IsUnlocked() bool {
	return s.Status != StepStatusLocked && s.Status != StepStatusAlternative
}

func (s *GoalStep) IsOnMainPath() bool {
	return s.PathType == PathTypeMain || s.PathType == PathTypeCompleted
}

// IsTerminal reports whether the step no longer counts as remaining work.
func (s *GoalStep) IsTerminal() bool {
	return s.Status == StepStatusCompleted || s.Status == StepStatusSkipped
}

// PaceDays is the number of days the step counts for when measuring pace:
// the actual duration once known, the estimate otherwise.
func (s *GoalStep) PaceDays() int {
	if s.ActualDaysSpent != nil {
		return *s.ActualDaysSpent
	}
	return s.EstimatedDays
}

package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Default canvas size of the journey map.
const (
	DefaultMapWidth  = 1000.0
	DefaultMapHeight = 2000.0
)

var ErrInvalidJourney = errors.New("invalid journey")

type GoalJourney struct {
	ID               string      `db:"id" json:"id"`
	UserID           string      `db:"user_id" json:"user_id"`
	GoalID           *string     `db:"goal_id" json:"goal_id"`
	GoalContent      string      `db:"goal_content" json:"goal_content"`
	GoalReason       *string     `db:"goal_reason" json:"goal_reason"`
	Steps            []*GoalStep `db:"-" json:"steps"`
	CurrentStepIndex int         `db:"current_step_index" json:"current_step_index"`
	OverallProgress  float64     `db:"overall_progress" json:"overall_progress"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        *time.Time  `db:"updated_at" json:"updated_at"`
	JourneyStartedAt time.Time   `db:"journey_started_at" json:"journey_started_at"`
	IsAIGenerated    bool        `db:"is_ai_generated" json:"is_ai_generated"`
	AINotes          *string     `db:"ai_notes" json:"ai_notes"`
	MapWidth         float64     `db:"map_width" json:"map_width"`
	MapHeight        float64     `db:"map_height" json:"map_height"`
}

// MainPath returns the steps on the chosen route ordered by OrderIndex.
func (j *GoalJourney) MainPath() []*GoalStep {
	main := make([]*GoalStep, 0, len(j.Steps))
	for _, s := range j.Steps {
		if s.IsOnMainPath() {
			main = append(main, s)
		}
	}
	sort.SliceStable(main, func(a, b int) bool {
		return main[a].OrderIndex < main[b].OrderIndex
	})
	return main
}

func (j *GoalJourney) CompletedSteps() []*GoalStep {
	var out []*GoalStep
	for _, s := range j.MainPath() {
		if s.Status == StepStatusCompleted {
			out = append(out, s)
		}
	}
	return out
}

// RemainingSteps returns main path steps that are neither completed nor skipped.
func (j *GoalJourney) RemainingSteps() []*GoalStep {
	var out []*GoalStep
	for _, s := range j.MainPath() {
		if !s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}

func (j *GoalJourney) StepsToDestination() int {
	return len(j.RemainingSteps())
}

// Progress is the fraction of main path steps completed. Skipped steps count
// toward the denominator only.
func (j *GoalJourney) Progress() float64 {
	main := j.MainPath()
	if len(main) == 0 {
		return 0
	}
	completed := 0
	for _, s := range main {
		if s.Status == StepStatusCompleted {
			completed++
		}
	}
	p := float64(completed) / float64(len(main))
	if p > 1 {
		return 1
	}
	return p
}

func (j *GoalJourney) IsComplete() bool {
	return j.OverallProgress >= 1.0 || len(j.RemainingSteps()) == 0
}

// Step returns the step with the given id, or nil.
func (j *GoalJourney) Step(id string) *GoalStep {
	for _, s := range j.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Validate checks the structural invariants of a journey snapshot.
func (j *GoalJourney) Validate() error {
	if j.GoalContent == "" {
		return fmt.Errorf("%w: goal content is required", ErrInvalidJourney)
	}

	ids := make(map[string]bool, len(j.Steps))
	orders := make(map[int]string, len(j.Steps))
	for _, s := range j.Steps {
		if s.ID == "" {
			return fmt.Errorf("%w: step without id", ErrInvalidJourney)
		}
		if ids[s.ID] {
			return fmt.Errorf("%w: duplicate step id %s", ErrInvalidJourney, s.ID)
		}
		ids[s.ID] = true

		if other, ok := orders[s.OrderIndex]; ok {
			return fmt.Errorf("%w: steps %s and %s share order %d", ErrInvalidJourney, other, s.ID, s.OrderIndex)
		}
		orders[s.OrderIndex] = s.ID

		if s.JourneyID != j.ID {
			return fmt.Errorf("%w: step %s belongs to journey %s", ErrInvalidJourney, s.ID, s.JourneyID)
		}
		if s.Title == "" {
			return fmt.Errorf("%w: step %s has no title", ErrInvalidJourney, s.ID)
		}
		if !s.Status.Valid() {
			return fmt.Errorf("%w: step %s has unknown status %q", ErrInvalidJourney, s.ID, s.Status)
		}
		if !s.PathType.Valid() {
			return fmt.Errorf("%w: step %s has unknown path type %q", ErrInvalidJourney, s.ID, s.PathType)
		}
		if s.EstimatedDays < 1 {
			return fmt.Errorf("%w: step %s estimated days must be positive", ErrInvalidJourney, s.ID)
		}
		if s.ActualDaysSpent != nil && *s.ActualDaysSpent < 0 {
			return fmt.Errorf("%w: step %s actual days must not be negative", ErrInvalidJourney, s.ID)
		}
		if !s.Position.InBounds() {
			return fmt.Errorf("%w: step %s is outside the map", ErrInvalidJourney, s.ID)
		}
		if s.StartedAt != nil && s.CompletedAt != nil && s.CompletedAt.Before(*s.StartedAt) {
			return fmt.Errorf("%w: step %s completed before it started", ErrInvalidJourney, s.ID)
		}
	}

	for _, s := range j.Steps {
		for _, ref := range s.Prerequisites {
			if !ids[ref] {
				return fmt.Errorf("%w: step %s has unknown prerequisite %s", ErrInvalidJourney, s.ID, ref)
			}
		}
		for _, ref := range s.Alternatives {
			if !ids[ref] {
				return fmt.Errorf("%w: step %s has unknown alternative %s", ErrInvalidJourney, s.ID, ref)
			}
		}
	}

	if j.OverallProgress < 0 || j.OverallProgress > 1 {
		return fmt.Errorf("%w: progress %.2f out of range", ErrInvalidJourney, j.OverallProgress)
	}

	return nil
}

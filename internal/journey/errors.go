package journey

import (
	"errors"
	"fmt"

	"github.com/probuddy/api/internal/model"
)

var (
	ErrInvalidTransition    = errors.New("invalid step transition")
	ErrStepNotFound         = errors.New("step not found")
	ErrNoSteps              = errors.New("journey has no steps on its main path")
	ErrNoCurrentStep        = errors.New("journey has no current step")
	ErrPrerequisitesPending = errors.New("step prerequisites are not completed")
	ErrNotDecisionPoint     = errors.New("step does not have multiple paths to choose from")
	ErrInvalidOption        = errors.New("chosen step is not an option for this decision point")
	ErrPathLocked           = errors.New("cannot change paths after a branch step was started")
	ErrInvalidNote          = errors.New("note must not be empty")
	ErrInvalidTitle         = errors.New("title must not be empty")
	ErrInvalidDuration      = errors.New("actual days spent must not be negative")
)

// TransitionError describes an illegal status change on a step.
type TransitionError struct {
	StepID string
	Action string
	From   model.StepStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s step %s: status is %s", e.Action, e.StepID, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

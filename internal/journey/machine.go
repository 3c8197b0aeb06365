// Package journey implements the goal journey state machine and the pure
// progress, ETA and milestone calculations over a journey snapshot.
//
// A Machine owns one journey for the duration of an edit. Every successful
// transition recalculates OverallProgress and CurrentStepIndex before it
// returns; a rejected transition leaves the journey untouched.
package journey

import (
	"strings"
	"time"

	"github.com/probuddy/api/internal/model"
)

type Machine struct {
	j   *model.GoalJourney
	now func() time.Time
}

type Option func(*Machine)

// WithClock replaces time.Now as the source of transition timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

func New(j *model.GoalJourney, opts ...Option) *Machine {
	m := &Machine{j: j, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Journey() *model.GoalJourney {
	return m.j
}

func (m *Machine) find(id string) (*model.GoalStep, error) {
	s := m.j.Step(id)
	if s == nil {
		return nil, ErrStepNotFound
	}
	return s, nil
}

func (m *Machine) touch() {
	now := m.now().UTC()
	m.j.UpdatedAt = &now
}

// StartStep moves an available step to in progress.
func (m *Machine) StartStep(id string) error {
	s, err := m.find(id)
	if err != nil {
		return err
	}
	if s.Status != model.StepStatusAvailable {
		return &TransitionError{StepID: id, Action: "start", From: s.Status}
	}
	if !newGraph(m.j.Steps).prerequisitesMet(s) {
		return ErrPrerequisitesPending
	}

	now := m.now().UTC()
	s.Status = model.StepStatusInProgress
	s.StartedAt = &now

	m.touch()
	m.Recalculate()
	return nil
}

// CompleteStep finishes an in-progress step. When actualDays is nil the
// duration is the number of whole days between start and completion.
func (m *Machine) CompleteStep(id string, actualDays *int) error {
	s, err := m.find(id)
	if err != nil {
		return err
	}
	if s.Status != model.StepStatusInProgress {
		return &TransitionError{StepID: id, Action: "complete", From: s.Status}
	}
	if actualDays != nil && *actualDays < 0 {
		return ErrInvalidDuration
	}

	completedAt := m.now().UTC()
	if s.StartedAt != nil && completedAt.Before(*s.StartedAt) {
		completedAt = *s.StartedAt
	}

	days := 0
	switch {
	case actualDays != nil:
		days = *actualDays
	case s.StartedAt != nil:
		days = int(completedAt.Sub(*s.StartedAt).Hours() / 24)
	}

	s.Status = model.StepStatusCompleted
	s.CompletedAt = &completedAt
	s.ActualDaysSpent = &days

	m.unlockNext(s)
	m.touch()
	m.Recalculate()
	return nil
}

// SkipStep marks an available or in-progress step as skipped. Skipped steps
// stay in the progress denominator.
func (m *Machine) SkipStep(id string) error {
	s, err := m.find(id)
	if err != nil {
		return err
	}
	if s.Status != model.StepStatusAvailable && s.Status != model.StepStatusInProgress {
		return &TransitionError{StepID: id, Action: "skip", From: s.Status}
	}

	s.Status = model.StepStatusSkipped

	m.unlockNext(s)
	m.touch()
	m.Recalculate()
	return nil
}

func (m *Machine) AddNote(id, note string) error {
	s, err := m.find(id)
	if err != nil {
		return err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrInvalidNote
	}

	s.Notes = append(s.Notes, note)
	m.touch()
	return nil
}

// RenameStep sets the user's custom title. The original title is kept.
func (m *Machine) RenameStep(id, title string) error {
	s, err := m.find(id)
	if err != nil {
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}

	s.CustomTitle = &title
	m.touch()
	return nil
}

// ChoosePath selects one branch at a decision step. Steps reachable from the
// chosen option join the main path; the sibling branches become alternatives.
func (m *Machine) ChoosePath(decisionID, chosenID string) error {
	g := newGraph(m.j.Steps)

	decision := g.step(decisionID)
	if decision == nil {
		return ErrStepNotFound
	}
	if g.step(chosenID) == nil {
		return ErrStepNotFound
	}

	options := g.options(decision)
	if len(options) < 2 {
		return ErrNotDecisionPoint
	}
	valid := false
	for _, id := range options {
		if id == chosenID {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidOption
	}

	chosenBranch := g.reachable(chosenID)
	affected := map[string]bool{}
	for _, id := range options {
		for sid := range g.reachable(id) {
			affected[sid] = true
		}
	}

	for sid := range affected {
		st := g.step(sid).Status
		if st == model.StepStatusInProgress || st == model.StepStatusCompleted {
			return ErrPathLocked
		}
	}

	for _, sid := range g.order {
		if !affected[sid] || sid == decisionID {
			continue
		}
		s := g.step(sid)
		if chosenBranch[sid] {
			s.PathType = model.PathTypeMain
			if s.Status == model.StepStatusAlternative {
				s.Status = model.StepStatusLocked
			}
			continue
		}
		s.PathType = model.PathTypeAlternative
		s.Status = model.StepStatusAlternative
	}

	if decision.Metadata == nil {
		decision.Metadata = model.Metadata{}
	}
	decision.Metadata[model.MetadataSelectedPath] = chosenID

	if decision.Status == model.StepStatusCompleted {
		chosen := g.step(chosenID)
		if chosen.Status == model.StepStatusLocked || chosen.Status == model.StepStatusAlternative {
			chosen.Status = model.StepStatusAvailable
		}
	}

	m.touch()
	m.Recalculate()
	return nil
}

// unlockNext makes the main path step after s available when it is locked
// and its prerequisites are met.
func (m *Machine) unlockNext(s *model.GoalStep) {
	main := m.j.MainPath()
	for i, step := range main {
		if step.ID != s.ID {
			continue
		}
		if i+1 >= len(main) {
			return
		}
		next := main[i+1]
		if next.Status == model.StepStatusLocked && newGraph(m.j.Steps).prerequisitesMet(next) {
			next.Status = model.StepStatusAvailable
		}
		return
	}
}

// Recalculate recomputes OverallProgress and CurrentStepIndex from the steps.
// It is idempotent.
func (m *Machine) Recalculate() {
	m.j.OverallProgress = m.j.Progress()
	m.j.CurrentStepIndex = currentIndex(m.j.MainPath())
}

func currentIndex(main []*model.GoalStep) int {
	if len(main) == 0 {
		return 0
	}
	idx := 0
	for i, s := range main {
		if s.Status == model.StepStatusInProgress || s.Status == model.StepStatusAvailable {
			idx = i
			break
		}
		if s.IsTerminal() {
			idx = i + 1
		}
	}
	if idx > len(main)-1 {
		idx = len(main) - 1
	}
	return idx
}

// CurrentStep resolves the step the user is working on. It returns
// ErrNoSteps when the main path is empty and ErrNoCurrentStep when every
// main path step is completed or skipped.
func (m *Machine) CurrentStep() (*model.GoalStep, error) {
	return CurrentStep(m.j)
}

func CurrentStep(j *model.GoalJourney) (*model.GoalStep, error) {
	main := j.MainPath()
	if len(main) == 0 {
		return nil, ErrNoSteps
	}

	if j.CurrentStepIndex >= 0 && j.CurrentStepIndex < len(main) {
		if s := main[j.CurrentStepIndex]; !s.IsTerminal() {
			return s, nil
		}
	}
	for _, s := range main {
		if s.Status == model.StepStatusInProgress {
			return s, nil
		}
	}
	for _, s := range main {
		if s.Status == model.StepStatusAvailable {
			return s, nil
		}
	}
	for _, s := range main {
		if !s.IsTerminal() {
			return s, nil
		}
	}
	return nil, ErrNoCurrentStep
}

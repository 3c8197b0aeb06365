package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/probuddy/api/internal/generator"
	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/model"
	"github.com/probuddy/api/internal/repository"
	"github.com/probuddy/api/internal/storage"
	"github.com/probuddy/api/internal/validation"
)

var (
	ErrUnsupportedStatus = errors.New("status cannot be set directly")
)

const defaultCreatedMessage = "Your journey has been created! Let's get started."

type GenerateInput struct {
	GoalID      *string  `json:"goal_id"`
	GoalContent string   `json:"goal_content"`
	GoalReason  *string  `json:"goal_reason"`
	Identity    string   `json:"identity"`
	Challenges  []string `json:"challenges"`
}

type StatusUpdate struct {
	Status          model.StepStatus `json:"status"`
	Notes           *string          `json:"notes"`
	ActualDaysSpent *int             `json:"actual_days_spent"`
}

// StepResult is the journey after an edit, with a fresh ETA. Celebration is
// set when the edit carried progress across a milestone.
type StepResult struct {
	Step        *model.GoalStep      `json:"step,omitempty"`
	Journey     *model.GoalJourney   `json:"journey"`
	ETA         journey.ETAData      `json:"eta"`
	Message     string               `json:"motivational_message"`
	Celebration *journey.Celebration `json:"celebration,omitempty"`
	ChangesMade []string             `json:"changes_made,omitempty"`
	AIMessage   string               `json:"ai_message,omitempty"`
}

type ETAReport struct {
	journey.ETAData
	JourneyID          string          `json:"journey_id"`
	OverallProgress    float64         `json:"overall_progress"`
	StepsToDestination int             `json:"steps_to_destination"`
	CurrentStep        *model.GoalStep `json:"current_step"`
	Message            string          `json:"motivational_message"`
}

// JourneyService loads, edits and stores journeys. Edits to one journey are
// serialized; every edit is persisted in a single transaction.
type JourneyService struct {
	repo      repository.JourneyRepository
	goals     repository.GoalRepository
	generator generator.Generator
	archive   storage.Storage
	notifier  Notifier
	locks     *keyedMutex
	now       func() time.Time
}

// NewJourneyService wires the service. archive and notifier may be nil.
func NewJourneyService(
	repo repository.JourneyRepository,
	goals repository.GoalRepository,
	gen generator.Generator,
	archive storage.Storage,
	notifier Notifier,
) *JourneyService {
	return &JourneyService{
		repo:      repo,
		goals:     goals,
		generator: gen,
		archive:   archive,
		notifier:  notifier,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// Generate drafts a journey for a goal and stores it. When GoalID is set the
// stored goal fills in missing content and reason.
func (s *JourneyService) Generate(ctx context.Context, user *model.User, in GenerateInput) (*model.GoalJourney, string, error) {
	if in.GoalID != nil && *in.GoalID != "" {
		goal, err := s.goals.ByID(user.ID, *in.GoalID)
		if err != nil {
			return nil, "", err
		}
		if strings.TrimSpace(in.GoalContent) == "" {
			in.GoalContent = goal.Content
		}
		if in.GoalReason == nil {
			in.GoalReason = goal.Reason
		}
	} else {
		in.GoalID = nil
	}

	in.GoalContent = strings.TrimSpace(in.GoalContent)
	err := validation.ValidateGoalContent(in.GoalContent)
	if err != nil {
		return nil, "", err
	}
	err = validation.ValidateReason(in.GoalReason)
	if err != nil {
		return nil, "", err
	}

	j, err := s.generator.Generate(ctx, generator.Request{
		UserID:      user.ID,
		GoalID:      in.GoalID,
		GoalContent: in.GoalContent,
		GoalReason:  in.GoalReason,
		Identity:    strings.TrimSpace(in.Identity),
		Challenges:  in.Challenges,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate journey: %w", err)
	}

	journey.New(j, journey.WithClock(s.now)).Recalculate()
	err = j.Validate()
	if err != nil {
		return nil, "", fmt.Errorf("generated journey is invalid: %w", err)
	}

	err = s.repo.Create(j)
	if err != nil {
		return nil, "", fmt.Errorf("failed to save journey: %w", err)
	}

	slog.Info("journey generated",
		"journey_id", j.ID,
		"user_id", user.ID,
		"steps", len(j.Steps),
		"ai_generated", j.IsAIGenerated,
	)

	message := defaultCreatedMessage
	if j.AINotes != nil && *j.AINotes != "" {
		message = *j.AINotes
	}
	return j, message, nil
}

// Current returns the user's most recently updated journey, or nil when the
// user has none.
func (s *JourneyService) Current(userID string) (*model.GoalJourney, error) {
	j, err := s.repo.Current(userID)
	if errors.Is(err, repository.ErrJourneyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	journey.New(j).Recalculate()
	return j, nil
}

func (s *JourneyService) ByID(userID, journeyID string) (*model.GoalJourney, error) {
	j, err := s.repo.ByID(userID, journeyID)
	if err != nil {
		return nil, err
	}
	journey.New(j).Recalculate()
	return j, nil
}

func (s *JourneyService) Journeys(userID string) ([]*model.GoalJourney, error) {
	return s.repo.Journeys(userID)
}

// Delete removes a journey. With an archive configured the snapshot is
// stored first; a failed upload keeps the journey.
func (s *JourneyService) Delete(ctx context.Context, userID, journeyID string) error {
	unlock := s.locks.Lock(journeyID)
	defer unlock()

	j, err := s.repo.ByID(userID, journeyID)
	if err != nil {
		return err
	}

	if s.archive != nil {
		snapshot, err := json.Marshal(j)
		if err != nil {
			return fmt.Errorf("failed to encode journey: %w", err)
		}
		err = s.archive.Save(ctx, storage.JourneyKey(userID, journeyID), snapshot)
		if err != nil {
			return fmt.Errorf("failed to archive journey: %w", err)
		}
	}

	err = s.repo.Delete(userID, journeyID)
	if err != nil {
		return err
	}

	slog.Info("journey deleted", "journey_id", journeyID, "user_id", userID, "archived", s.archive != nil)
	return nil
}

func (s *JourneyService) ETA(userID, journeyID string) (*ETAReport, error) {
	j, err := s.ByID(userID, journeyID)
	if err != nil {
		return nil, err
	}

	eta := journey.Calculate(j, s.now())
	report := &ETAReport{
		ETAData:            eta,
		JourneyID:          j.ID,
		OverallProgress:    j.OverallProgress,
		StepsToDestination: j.StepsToDestination(),
		Message:            journey.MotivationalMessage(j, eta.VelocityScore),
	}
	if step, err := journey.CurrentStep(j); err == nil {
		report.CurrentStep = step
	}
	return report, nil
}

// Recalculate recomputes and stores progress and the current step.
func (s *JourneyService) Recalculate(ctx context.Context, user *model.User, journeyID string) (*StepResult, error) {
	return s.mutate(ctx, user, journeyID, func(m *journey.Machine) error {
		return nil
	})
}

func (s *JourneyService) UpdateStepStatus(ctx context.Context, user *model.User, stepID string, u StatusUpdate) (*StepResult, error) {
	if u.Notes != nil && strings.TrimSpace(*u.Notes) != "" {
		err := validation.ValidateNote(*u.Notes)
		if err != nil {
			return nil, err
		}
	}

	return s.mutateStep(ctx, user, stepID, func(m *journey.Machine) error {
		var err error
		switch u.Status {
		case model.StepStatusInProgress:
			err = m.StartStep(stepID)
		case model.StepStatusCompleted:
			err = m.CompleteStep(stepID, u.ActualDaysSpent)
		case model.StepStatusSkipped:
			err = m.SkipStep(stepID)
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedStatus, u.Status)
		}
		if err != nil {
			return err
		}
		if u.Notes != nil && strings.TrimSpace(*u.Notes) != "" {
			return m.AddNote(stepID, *u.Notes)
		}
		return nil
	})
}

func (s *JourneyService) StartStep(ctx context.Context, user *model.User, stepID string) (*StepResult, error) {
	return s.UpdateStepStatus(ctx, user, stepID, StatusUpdate{Status: model.StepStatusInProgress})
}

func (s *JourneyService) CompleteStep(ctx context.Context, user *model.User, stepID string, actualDays *int) (*StepResult, error) {
	return s.UpdateStepStatus(ctx, user, stepID, StatusUpdate{Status: model.StepStatusCompleted, ActualDaysSpent: actualDays})
}

func (s *JourneyService) SkipStep(ctx context.Context, user *model.User, stepID string) (*StepResult, error) {
	return s.UpdateStepStatus(ctx, user, stepID, StatusUpdate{Status: model.StepStatusSkipped})
}

func (s *JourneyService) RenameStep(ctx context.Context, user *model.User, stepID, title string) (*StepResult, error) {
	err := validation.ValidateStepTitle(title)
	if err != nil {
		return nil, err
	}
	return s.mutateStep(ctx, user, stepID, func(m *journey.Machine) error {
		return m.RenameStep(stepID, title)
	})
}

func (s *JourneyService) AddNote(ctx context.Context, user *model.User, stepID, note string) (*StepResult, error) {
	err := validation.ValidateNote(note)
	if err != nil {
		return nil, err
	}
	return s.mutateStep(ctx, user, stepID, func(m *journey.Machine) error {
		return m.AddNote(stepID, note)
	})
}

func (s *JourneyService) ChoosePath(ctx context.Context, user *model.User, decisionID, chosenID string) (*StepResult, error) {
	return s.mutateStep(ctx, user, decisionID, func(m *journey.Machine) error {
		return m.ChoosePath(decisionID, chosenID)
	})
}

// Adjust asks the generator how the journey should change given what the
// user reports doing and applies the suggestions that are legal transitions.
func (s *JourneyService) Adjust(ctx context.Context, user *model.User, journeyID, activity, extra string) (*StepResult, error) {
	err := validation.ValidateActivity(activity)
	if err != nil {
		return nil, err
	}

	var changes []string
	var message string
	res, err := s.mutate(ctx, user, journeyID, func(m *journey.Machine) error {
		adj, err := s.generator.Adjust(ctx, m.Journey(), activity, extra)
		if err != nil {
			return err
		}
		changes = generator.Apply(m, adj)
		message = adj.Message
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.ChangesMade = changes
	res.AIMessage = message
	slog.Info("journey adjusted", "journey_id", journeyID, "user_id", user.ID, "changes", len(changes))
	return res, nil
}

func (s *JourneyService) mutateStep(ctx context.Context, user *model.User, stepID string, fn func(*journey.Machine) error) (*StepResult, error) {
	owner, err := s.repo.ByStepID(user.ID, stepID)
	if errors.Is(err, repository.ErrJourneyNotFound) {
		return nil, journey.ErrStepNotFound
	}
	if err != nil {
		return nil, err
	}

	res, err := s.mutate(ctx, user, owner.ID, fn)
	if err != nil {
		return nil, err
	}
	res.Step = res.Journey.Step(stepID)
	return res, nil
}

// mutate runs fn on a freshly loaded journey while holding its lock and
// stores the result. A failed fn leaves the stored journey untouched.
func (s *JourneyService) mutate(ctx context.Context, user *model.User, journeyID string, fn func(*journey.Machine) error) (*StepResult, error) {
	unlock := s.locks.Lock(journeyID)
	defer unlock()

	j, err := s.repo.ByID(user.ID, journeyID)
	if err != nil {
		return nil, err
	}

	m := journey.New(j, journey.WithClock(s.now))
	m.Recalculate()
	prev := j.OverallProgress

	err = fn(m)
	if err != nil {
		return nil, err
	}
	m.Recalculate()

	err = s.repo.Save(j)
	if err != nil {
		return nil, fmt.Errorf("failed to save journey: %w", err)
	}

	eta := journey.Calculate(j, s.now())
	res := &StepResult{
		Journey: j,
		ETA:     eta,
		Message: journey.MotivationalMessage(j, eta.VelocityScore),
	}

	if c, ok := journey.CheckMilestone(prev, j.OverallProgress); ok {
		res.Celebration = &c
		slog.Info("milestone reached", "journey_id", j.ID, "user_id", user.ID, "milestone", c.Kind)
		s.notify(ctx, user, j, c)
	}

	return res, nil
}

func (s *JourneyService) notify(ctx context.Context, user *model.User, j *model.GoalJourney, c journey.Celebration) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.MilestoneReached(ctx, user, j, c)
	if err != nil {
		slog.Error("failed to send milestone notification", "error", err, "journey_id", j.ID, "user_id", user.ID)
	}
}

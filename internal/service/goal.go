package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/probuddy/api/internal/model"
	"github.com/probuddy/api/internal/repository"
	"github.com/probuddy/api/internal/validation"
)

type GoalInput struct {
	Content  string  `json:"content"`
	Reason   *string `json:"reason"`
	Timeline *string `json:"timeline"`
}

type GoalService struct {
	repo repository.GoalRepository
}

func NewGoalService(repo repository.GoalRepository) *GoalService {
	return &GoalService{repo: repo}
}

func validateGoal(in GoalInput) error {
	err := validation.ValidateGoalContent(in.Content)
	if err != nil {
		return err
	}
	return validation.ValidateReason(in.Reason)
}

func (s *GoalService) Create(userID string, in GoalInput) (*model.Goal, error) {
	err := validateGoal(in)
	if err != nil {
		return nil, err
	}

	goal := &model.Goal{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   strings.TrimSpace(in.Content),
		Reason:    in.Reason,
		Timeline:  in.Timeline,
		CreatedAt: time.Now().UTC(),
	}

	err = s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) ByID(userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(userID, goalID)
}

func (s *GoalService) Goals(userID string) ([]*model.Goal, error) {
	return s.repo.Goals(userID)
}

func (s *GoalService) Update(userID, goalID string, in GoalInput) (*model.Goal, error) {
	err := validateGoal(in)
	if err != nil {
		return nil, err
	}

	// Verify ownership
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	goal.Content = strings.TrimSpace(in.Content)
	goal.Reason = in.Reason
	goal.Timeline = in.Timeline

	err = s.repo.Update(goal)
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes the goal. Journeys planned from it keep their copy of the
// goal text.
func (s *GoalService) Delete(userID, goalID string) error {
	return s.repo.Delete(userID, goalID)
}

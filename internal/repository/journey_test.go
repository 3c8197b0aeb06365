package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/probuddy/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newJourney(userID string, days ...int) *model.GoalJourney {
	j := &model.GoalJourney{
		ID:               uuid.New().String(),
		UserID:           userID,
		GoalContent:      "Learn to play the guitar",
		CreatedAt:        base,
		JourneyStartedAt: base,
		IsAIGenerated:    true,
		MapWidth:         model.DefaultMapWidth,
		MapHeight:        model.DefaultMapHeight,
	}
	for i, d := range days {
		s := &model.GoalStep{
			ID:            uuid.New().String(),
			JourneyID:     j.ID,
			Title:         fmt.Sprintf("Step %d", i+1),
			Description:   "practice",
			OrderIndex:    i,
			Status:        model.StepStatusLocked,
			PathType:      model.PathTypeMain,
			Position:      model.MapPosition{X: 0.5, Y: float64(i) / float64(len(days)), Layer: i},
			EstimatedDays: d,
			Prerequisites: model.StringList{},
			Alternatives:  model.StringList{},
			Notes:         model.StringList{},
			Metadata:      model.Metadata{},
			CreatedAt:     base,
		}
		if i == 0 {
			s.Status = model.StepStatusAvailable
		} else {
			s.Prerequisites = model.StringList{j.Steps[i-1].ID}
		}
		j.Steps = append(j.Steps, s)
	}
	return j
}

func TestJourneyRepository_RoundTrip(t *testing.T) {
	repo := NewJourneyRepository(testDB(t))

	j := newJourney("user-1", 7, 21, 30)
	started := base.Add(24 * time.Hour)
	completed := base.Add(6 * 24 * time.Hour)
	actual := 5
	custom := "Learn the chords"

	first := j.Steps[0]
	first.Status = model.StepStatusCompleted
	first.StartedAt = &started
	first.CompletedAt = &completed
	first.ActualDaysSpent = &actual
	first.CustomTitle = &custom
	first.Notes = model.StringList{"bought a guitar"}
	first.Metadata = model.Metadata{"tips": []any{"start slow"}}
	j.Steps[1].Status = model.StepStatusInProgress
	j.Steps[1].StartedAt = &completed
	j.OverallProgress = 1.0 / 3
	j.CurrentStepIndex = 1

	require.NoError(t, repo.Create(j))

	got, err := repo.ByID("user-1", j.ID)
	require.NoError(t, err)

	assert.Equal(t, j.GoalContent, got.GoalContent)
	assert.InDelta(t, 1.0/3, got.OverallProgress, 1e-9)
	assert.Equal(t, 1, got.CurrentStepIndex)
	assert.True(t, got.IsAIGenerated)
	assert.Equal(t, model.DefaultMapHeight, got.MapHeight)
	assert.Nil(t, got.GoalID)
	assert.WithinDuration(t, base, got.JourneyStartedAt, time.Second)

	require.Len(t, got.Steps, 3)
	for i, s := range got.Steps {
		want := j.Steps[i]
		assert.Equal(t, want.ID, s.ID)
		assert.Equal(t, want.OrderIndex, s.OrderIndex)
		assert.Equal(t, want.Status, s.Status)
		assert.Equal(t, want.EstimatedDays, s.EstimatedDays)
		assert.Equal(t, want.PathType, s.PathType)
		assert.Equal(t, want.Position, s.Position)
		assert.Equal(t, want.Prerequisites, s.Prerequisites)
	}

	s := got.Steps[0]
	require.NotNil(t, s.ActualDaysSpent)
	assert.Equal(t, 5, *s.ActualDaysSpent)
	require.NotNil(t, s.CompletedAt)
	assert.WithinDuration(t, completed, *s.CompletedAt, time.Second)
	assert.Equal(t, "Learn the chords", s.DisplayTitle())
	assert.Equal(t, model.StringList{"bought a guitar"}, s.Notes)
	assert.Equal(t, []any{"start slow"}, s.Metadata["tips"])
	assert.Nil(t, got.Steps[2].ActualDaysSpent)
	assert.Nil(t, got.Steps[2].StartedAt)

	assert.NoError(t, got.Validate())
}

func TestJourneyRepository_NotFound(t *testing.T) {
	repo := NewJourneyRepository(testDB(t))

	j := newJourney("user-1", 7)
	require.NoError(t, repo.Create(j))

	_, err := repo.ByID("user-2", j.ID)
	assert.ErrorIs(t, err, ErrJourneyNotFound)

	_, err = repo.Current("user-2")
	assert.ErrorIs(t, err, ErrJourneyNotFound)

	_, err = repo.ByStepID("user-2", j.Steps[0].ID)
	assert.ErrorIs(t, err, ErrJourneyNotFound)

	assert.ErrorIs(t, repo.Delete("user-2", j.ID), ErrJourneyNotFound)

	other := newJourney("user-2", 7)
	other.ID = j.ID
	assert.ErrorIs(t, repo.Save(other), ErrJourneyNotFound)
}

func TestJourneyRepository_Current(t *testing.T) {
	repo := NewJourneyRepository(testDB(t))

	older := newJourney("user-1", 7)
	newer := newJourney("user-1", 14)
	newer.CreatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))

	got, err := repo.Current("user-1")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.ID)

	// Touching the older journey makes it current again.
	updated := base.Add(2 * time.Hour)
	older.UpdatedAt = &updated
	require.NoError(t, repo.Save(older))

	got, err = repo.Current("user-1")
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.ID)

	list, err := repo.Journeys("user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.Empty(t, list[0].Steps)
}

func TestJourneyRepository_ByStepID(t *testing.T) {
	repo := NewJourneyRepository(testDB(t))

	j := newJourney("user-1", 7, 14)
	require.NoError(t, repo.Create(j))

	got, err := repo.ByStepID("user-1", j.Steps[1].ID)
	require.NoError(t, err)
	assert.Equal(t, j.ID, got.ID)
	assert.Len(t, got.Steps, 2)
}

func TestJourneyRepository_SaveReplacesSteps(t *testing.T) {
	repo := NewJourneyRepository(testDB(t))

	j := newJourney("user-1", 7, 14, 21)
	require.NoError(t, repo.Create(j))

	actual := 9
	j.Steps[0].Status = model.StepStatusCompleted
	j.Steps[0].ActualDaysSpent = &actual
	j.Steps[1].Status = model.StepStatusAvailable
	j.Steps[2].PathType = model.PathTypeAlternative
	j.Steps[2].Status = model.StepStatusAlternative
	j.OverallProgress = 0.5
	notes := "adjusted after week one"
	j.AINotes = &notes
	require.NoError(t, repo.Save(j))

	got, err := repo.ByID("user-1", j.ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 3)
	assert.Equal(t, model.StepStatusCompleted, got.Steps[0].Status)
	assert.Equal(t, 9, *got.Steps[0].ActualDaysSpent)
	assert.Equal(t, model.StepStatusAvailable, got.Steps[1].Status)
	assert.Equal(t, model.PathTypeAlternative, got.Steps[2].PathType)
	assert.Equal(t, 0.5, got.OverallProgress)
	require.NotNil(t, got.AINotes)
	assert.Equal(t, notes, *got.AINotes)
}

func TestJourneyRepository_Delete(t *testing.T) {
	database := testDB(t)
	repo := NewJourneyRepository(database)

	j := newJourney("user-1", 7, 14)
	require.NoError(t, repo.Create(j))
	require.NoError(t, repo.Delete("user-1", j.ID))

	_, err := repo.ByID("user-1", j.ID)
	assert.ErrorIs(t, err, ErrJourneyNotFound)

	var count int
	require.NoError(t, database.Get(&count, `SELECT COUNT(*) FROM goal_steps WHERE journey_id = $1`, j.ID))
	assert.Zero(t, count)
}

func TestJourneyRepository_GoalReference(t *testing.T) {
	database := testDB(t)
	goals := NewGoalRepository(database)
	journeys := NewJourneyRepository(database)

	g := newGoal("user-1", "Learn to play the guitar", base)
	require.NoError(t, goals.Create(g))

	j := newJourney("user-1", 7)
	j.GoalID = &g.ID
	require.NoError(t, journeys.Create(j))

	require.NoError(t, goals.Delete("user-1", g.ID))

	got, err := journeys.ByID("user-1", j.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GoalID)
}

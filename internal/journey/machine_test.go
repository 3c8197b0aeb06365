package journey

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/probuddy/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// testClock returns a clock that can be moved forward by the test.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func (c *testClock) AdvanceDays(days int) { c.Advance(time.Duration(days) * 24 * time.Hour) }

// newJourney builds a linear journey whose first step is available.
func newJourney(estimates ...int) *model.GoalJourney {
	j := &model.GoalJourney{
		ID:               "journey-1",
		UserID:           "user-1",
		GoalContent:      "Run a half marathon",
		JourneyStartedAt: baseTime,
		CreatedAt:        baseTime,
		MapWidth:         model.DefaultMapWidth,
		MapHeight:        model.DefaultMapHeight,
	}
	for i, days := range estimates {
		status := model.StepStatusLocked
		if i == 0 {
			status = model.StepStatusAvailable
		}
		var prereqs model.StringList
		if i > 0 {
			prereqs = model.StringList{fmt.Sprintf("step-%d", i-1)}
		}
		j.Steps = append(j.Steps, &model.GoalStep{
			ID:            fmt.Sprintf("step-%d", i),
			JourneyID:     j.ID,
			Title:         fmt.Sprintf("Step %d", i+1),
			OrderIndex:    i,
			Status:        status,
			Prerequisites: prereqs,
			PathType:      model.PathTypeMain,
			Position:      model.MapPosition{X: 0.5, Y: float64(i+1) / float64(len(estimates)+2), Layer: i},
			EstimatedDays: days,
			CreatedAt:     baseTime,
		})
	}
	return j
}

func assertProgressInvariant(t *testing.T, j *model.GoalJourney) {
	t.Helper()
	main := j.MainPath()
	if len(main) == 0 {
		assert.Equal(t, 0.0, j.OverallProgress)
		return
	}
	assert.InDelta(t, float64(len(j.CompletedSteps()))/float64(len(main)), j.OverallProgress, 1e-9)
}

func TestStartStep(t *testing.T) {
	clock := &testClock{now: baseTime}
	j := newJourney(10, 10)
	m := New(j, WithClock(clock.Now))

	require.NoError(t, m.StartStep("step-0"))

	s := j.Step("step-0")
	assert.Equal(t, model.StepStatusInProgress, s.Status)
	require.NotNil(t, s.StartedAt)
	assert.Equal(t, baseTime, *s.StartedAt)
	assert.Equal(t, 0, j.CurrentStepIndex)
}

func TestStartStep_RejectsNonAvailable(t *testing.T) {
	j := newJourney(10, 10)
	m := New(j)

	err := m.StartStep("step-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "start", te.Action)
	assert.Equal(t, model.StepStatusLocked, te.From)
	assert.Equal(t, model.StepStatusLocked, j.Step("step-1").Status)

	require.NoError(t, m.StartStep("step-0"))
	assert.ErrorIs(t, m.StartStep("step-0"), ErrInvalidTransition)
}

func TestStartStep_UnknownStep(t *testing.T) {
	m := New(newJourney(5))
	assert.ErrorIs(t, m.StartStep("nope"), ErrStepNotFound)
}

func TestStartStep_PrerequisitesPending(t *testing.T) {
	j := newJourney(5, 5)
	// Make the second step available without finishing the first.
	j.Step("step-1").Status = model.StepStatusAvailable
	m := New(j)

	assert.ErrorIs(t, m.StartStep("step-1"), ErrPrerequisitesPending)
	assert.Equal(t, model.StepStatusAvailable, j.Step("step-1").Status)
	assert.Nil(t, j.Step("step-1").StartedAt)
}

func TestCompleteStep(t *testing.T) {
	clock := &testClock{now: baseTime}
	j := newJourney(10, 10, 10, 10)
	m := New(j, WithClock(clock.Now))

	require.NoError(t, m.StartStep("step-0"))
	clock.AdvanceDays(6)
	clock.Advance(5 * time.Hour)
	require.NoError(t, m.CompleteStep("step-0", nil))

	s := j.Step("step-0")
	assert.Equal(t, model.StepStatusCompleted, s.Status)
	require.NotNil(t, s.ActualDaysSpent)
	assert.Equal(t, 6, *s.ActualDaysSpent)
	require.NotNil(t, s.CompletedAt)
	assert.False(t, s.CompletedAt.Before(*s.StartedAt))

	assert.Equal(t, model.StepStatusAvailable, j.Step("step-1").Status)
	assert.Equal(t, model.StepStatusLocked, j.Step("step-2").Status)
	assert.Equal(t, 1, j.CurrentStepIndex)
	assert.InDelta(t, 0.25, j.OverallProgress, 1e-9)
	assertProgressInvariant(t, j)
}

func TestCompleteStep_SameDayIsZeroDays(t *testing.T) {
	clock := &testClock{now: baseTime}
	j := newJourney(3)
	m := New(j, WithClock(clock.Now))

	require.NoError(t, m.StartStep("step-0"))
	clock.Advance(2 * time.Hour)
	require.NoError(t, m.CompleteStep("step-0", nil))

	assert.Equal(t, 0, *j.Step("step-0").ActualDaysSpent)
	assert.Equal(t, 1.0, j.OverallProgress)
	assert.True(t, j.IsComplete())
}

func TestCompleteStep_Override(t *testing.T) {
	j := newJourney(10, 10)
	m := New(j)

	require.NoError(t, m.StartStep("step-0"))
	days := 12
	require.NoError(t, m.CompleteStep("step-0", &days))
	assert.Equal(t, 12, *j.Step("step-0").ActualDaysSpent)
}

func TestCompleteStep_NegativeOverride(t *testing.T) {
	j := newJourney(10, 10)
	m := New(j)

	require.NoError(t, m.StartStep("step-0"))
	days := -1
	assert.ErrorIs(t, m.CompleteStep("step-0", &days), ErrInvalidDuration)
	assert.Equal(t, model.StepStatusInProgress, j.Step("step-0").Status)
}

func TestCompleteStep_OnlyFromInProgress(t *testing.T) {
	for _, status := range []model.StepStatus{
		model.StepStatusLocked,
		model.StepStatusAvailable,
		model.StepStatusCompleted,
		model.StepStatusSkipped,
		model.StepStatusAlternative,
	} {
		j := newJourney(10, 10)
		j.Step("step-0").Status = status
		m := New(j)
		m.Recalculate()
		before := j.OverallProgress

		err := m.CompleteStep("step-0", nil)
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)
		assert.Equal(t, status, j.Step("step-0").Status)
		assert.Equal(t, before, j.OverallProgress, "status %s", status)
	}
}

func TestSkipStep(t *testing.T) {
	j := newJourney(5, 5, 5)
	m := New(j)

	require.NoError(t, m.SkipStep("step-0"))
	assert.Equal(t, model.StepStatusSkipped, j.Step("step-0").Status)
	assert.Equal(t, model.StepStatusAvailable, j.Step("step-1").Status)
	assert.Equal(t, 0.0, j.OverallProgress)
	assert.Equal(t, 1, j.CurrentStepIndex)
	assert.Len(t, j.RemainingSteps(), 2)

	require.NoError(t, m.StartStep("step-1"))
	require.NoError(t, m.SkipStep("step-1"))
	assert.Len(t, j.RemainingSteps(), 1)

	assert.ErrorIs(t, m.SkipStep("step-0"), ErrInvalidTransition)
}

func TestSkipStep_Locked(t *testing.T) {
	j := newJourney(5, 5)
	m := New(j)
	assert.ErrorIs(t, m.SkipStep("step-1"), ErrInvalidTransition)
}

func TestAddNote(t *testing.T) {
	j := newJourney(5)
	m := New(j)

	require.NoError(t, m.AddNote("step-0", "  bought running shoes "))
	require.NoError(t, m.AddNote("step-0", "first 5k done"))
	assert.Equal(t, model.StringList{"bought running shoes", "first 5k done"}, j.Step("step-0").Notes)
	assert.Equal(t, model.StepStatusAvailable, j.Step("step-0").Status)

	assert.ErrorIs(t, m.AddNote("step-0", "   "), ErrInvalidNote)
	assert.ErrorIs(t, m.AddNote("missing", "x"), ErrStepNotFound)
}

func TestRenameStep(t *testing.T) {
	j := newJourney(5)
	m := New(j)

	require.NoError(t, m.RenameStep("step-0", "Couch to 5k"))
	s := j.Step("step-0")
	assert.Equal(t, "Couch to 5k", s.DisplayTitle())
	assert.Equal(t, "Step 1", s.Title)

	assert.ErrorIs(t, m.RenameStep("step-0", ""), ErrInvalidTitle)
}

func TestProgressInvariantAcrossTransitions(t *testing.T) {
	clock := &testClock{now: baseTime}
	j := newJourney(7, 14, 21, 7, 3)
	m := New(j, WithClock(clock.Now))

	for i := range 5 {
		id := fmt.Sprintf("step-%d", i)
		if i == 2 {
			require.NoError(t, m.SkipStep(id))
			assertProgressInvariant(t, j)
			continue
		}
		require.NoError(t, m.StartStep(id))
		assertProgressInvariant(t, j)
		clock.AdvanceDays(i + 1)
		require.NoError(t, m.CompleteStep(id, nil))
		assertProgressInvariant(t, j)
	}

	assert.InDelta(t, 0.8, j.OverallProgress, 1e-9)
	assert.True(t, j.IsComplete())
	assert.Equal(t, 4, j.CurrentStepIndex)
}

func TestRecalculateIdempotent(t *testing.T) {
	j := newJourney(5, 5, 5)
	m := New(j)
	require.NoError(t, m.StartStep("step-0"))
	require.NoError(t, m.CompleteStep("step-0", nil))

	m.Recalculate()
	first := *j
	m.Recalculate()
	assert.Equal(t, first.OverallProgress, j.OverallProgress)
	assert.Equal(t, first.CurrentStepIndex, j.CurrentStepIndex)
}

func TestRecalculate_EmptyJourney(t *testing.T) {
	j := newJourney()
	j.OverallProgress = 0.5
	m := New(j)
	m.Recalculate()
	assert.Equal(t, 0.0, j.OverallProgress)
	assert.Equal(t, 0, j.CurrentStepIndex)
}

func TestCurrentStep(t *testing.T) {
	t.Run("at index", func(t *testing.T) {
		j := newJourney(5, 5)
		s, err := CurrentStep(j)
		require.NoError(t, err)
		assert.Equal(t, "step-0", s.ID)
	})

	t.Run("index out of range falls back to in progress", func(t *testing.T) {
		j := newJourney(5, 5, 5)
		j.Step("step-0").Status = model.StepStatusCompleted
		j.Step("step-1").Status = model.StepStatusInProgress
		j.CurrentStepIndex = 9
		s, err := CurrentStep(j)
		require.NoError(t, err)
		assert.Equal(t, "step-1", s.ID)
	})

	t.Run("falls back to available", func(t *testing.T) {
		j := newJourney(5, 5, 5)
		j.Step("step-0").Status = model.StepStatusCompleted
		j.Step("step-2").Status = model.StepStatusAvailable
		j.Step("step-1").Status = model.StepStatusSkipped
		j.CurrentStepIndex = 0
		s, err := CurrentStep(j)
		require.NoError(t, err)
		assert.Equal(t, "step-2", s.ID)
	})

	t.Run("falls back to first remaining", func(t *testing.T) {
		j := newJourney(5, 5)
		j.Step("step-0").Status = model.StepStatusSkipped
		j.CurrentStepIndex = 0
		s, err := CurrentStep(j)
		require.NoError(t, err)
		assert.Equal(t, "step-1", s.ID)
	})

	t.Run("all skipped", func(t *testing.T) {
		j := newJourney(5, 5)
		j.Step("step-0").Status = model.StepStatusSkipped
		j.Step("step-1").Status = model.StepStatusSkipped
		_, err := CurrentStep(j)
		assert.ErrorIs(t, err, ErrNoCurrentStep)
	})

	t.Run("no steps", func(t *testing.T) {
		_, err := New(newJourney()).CurrentStep()
		assert.ErrorIs(t, err, ErrNoSteps)
	})
}

// branchingJourney: step-0 is a decision with two branches (a1 -> a2, b1),
// followed by the shared step-3.
func branchingJourney() *model.GoalJourney {
	j := newJourney(5)
	add := func(id string, order int, prereqs ...string) {
		j.Steps = append(j.Steps, &model.GoalStep{
			ID:            id,
			JourneyID:     j.ID,
			Title:         id,
			OrderIndex:    order,
			Status:        model.StepStatusLocked,
			Prerequisites: prereqs,
			PathType:      model.PathTypeMain,
			Position:      model.MapPosition{X: 0.5, Y: 0.5, Layer: order},
			EstimatedDays: 7,
		})
	}
	add("a1", 1, "step-0")
	add("a2", 2, "a1")
	add("b1", 3, "step-0")
	j.Step("b1").PathType = model.PathTypeAlternative
	j.Step("b1").Status = model.StepStatusAlternative
	return j
}

func TestChoosePath(t *testing.T) {
	j := branchingJourney()
	m := New(j)

	require.NoError(t, m.ChoosePath("step-0", "b1"))

	assert.Equal(t, model.PathTypeMain, j.Step("b1").PathType)
	assert.Equal(t, model.StepStatusLocked, j.Step("b1").Status)
	for _, id := range []string{"a1", "a2"} {
		assert.Equal(t, model.PathTypeAlternative, j.Step(id).PathType, id)
		assert.Equal(t, model.StepStatusAlternative, j.Step(id).Status, id)
	}
	assert.Equal(t, "b1", j.Step("step-0").Metadata[model.MetadataSelectedPath])

	ids := []string{}
	for _, s := range j.MainPath() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"step-0", "b1"}, ids)
	assertProgressInvariant(t, j)
}

func TestChoosePath_AfterDecisionCompleted(t *testing.T) {
	j := branchingJourney()
	m := New(j)
	require.NoError(t, m.StartStep("step-0"))
	require.NoError(t, m.CompleteStep("step-0", nil))

	require.NoError(t, m.ChoosePath("step-0", "b1"))
	assert.Equal(t, model.StepStatusAvailable, j.Step("b1").Status)
	assert.Equal(t, 1, j.CurrentStepIndex)
	assert.InDelta(t, 0.5, j.OverallProgress, 1e-9)
}

func TestChoosePath_ExplicitAlternatives(t *testing.T) {
	j := branchingJourney()
	j.Step("step-0").Alternatives = model.StringList{"a1", "b1", "b1", "step-0", "ghost"}
	m := New(j)

	require.NoError(t, m.ChoosePath("step-0", "a1"))
	assert.Equal(t, model.PathTypeMain, j.Step("a1").PathType)
	assert.Equal(t, model.PathTypeMain, j.Step("a2").PathType)
	assert.Equal(t, model.PathTypeAlternative, j.Step("b1").PathType)
}

func TestChoosePath_Errors(t *testing.T) {
	t.Run("not a decision point", func(t *testing.T) {
		j := newJourney(5, 5)
		assert.ErrorIs(t, New(j).ChoosePath("step-0", "step-1"), ErrNotDecisionPoint)
	})

	t.Run("invalid option", func(t *testing.T) {
		j := branchingJourney()
		assert.ErrorIs(t, New(j).ChoosePath("step-0", "a2"), ErrInvalidOption)
	})

	t.Run("unknown steps", func(t *testing.T) {
		j := branchingJourney()
		assert.ErrorIs(t, New(j).ChoosePath("ghost", "a1"), ErrStepNotFound)
		assert.ErrorIs(t, New(j).ChoosePath("step-0", "ghost"), ErrStepNotFound)
	})

	t.Run("branch already started", func(t *testing.T) {
		j := branchingJourney()
		j.Step("a1").Status = model.StepStatusInProgress
		err := New(j).ChoosePath("step-0", "b1")
		assert.ErrorIs(t, err, ErrPathLocked)
		assert.Equal(t, model.PathTypeAlternative, j.Step("b1").PathType)
		assert.Nil(t, j.Step("step-0").Metadata)
	})
}

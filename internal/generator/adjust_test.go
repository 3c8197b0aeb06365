package generator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/llm"
	"github.com/probuddy/api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallbackJourney(t *testing.T) *model.GoalJourney {
	t.Helper()
	j, err := newGenerator(nil).Generate(context.Background(), goalRequest())
	require.NoError(t, err)
	return j
}

func TestAdjust(t *testing.T) {
	j := fallbackJourney(t)
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{
		"changes": [
			{"type": "update_title", "step_index": 0, "new_title": "Read three running guides"},
			{"type": "complete_step", "step_index": 0, "description": "You already finished your research"}
		],
		"ai_message": "Nice work!",
		"new_current_step_index": 1
	}`)})

	adj, err := newGenerator(mock).Adjust(context.Background(), j, "I read three guides", "weekends only")
	require.NoError(t, err)
	assert.Equal(t, "Nice work!", adj.Message)
	require.Len(t, adj.Changes, 2)
	assert.Equal(t, ChangeUpdateTitle, adj.Changes[0].Type)

	prompt := mock.Calls[0].Prompt
	assert.Contains(t, prompt, "I read three guides")
	assert.Contains(t, prompt, "ADDITIONAL CONTEXT: weekends only")
	assert.Contains(t, prompt, "CURRENT STEP: Research and planning (index: 0)")
	assert.Contains(t, prompt, "- Step 4: Final push (locked)")
}

func TestAdjust_Failure(t *testing.T) {
	j := fallbackJourney(t)
	g := newGenerator(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"changes": [{"type": "rewrite"}]}`)}))

	adj, err := g.Adjust(context.Background(), j, "running", "")
	require.NoError(t, err)
	assert.Empty(t, adj.Changes)
	assert.Equal(t, adjustFailedText, adj.Message)
}

func TestAdjust_DefaultMessage(t *testing.T) {
	j := fallbackJourney(t)
	g := newGenerator(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"changes": []}`)}))

	adj, err := g.Adjust(context.Background(), j, "running", "")
	require.NoError(t, err)
	assert.Equal(t, adjustedText, adj.Message)
}

func TestApply(t *testing.T) {
	j := fallbackJourney(t)
	m := journey.New(j, journey.WithClock(func() time.Time { return fixedNow.Add(48 * time.Hour) }))
	main := j.MainPath()

	applied := Apply(m, &Adjustment{Changes: []Change{
		{Type: ChangeUpdateTitle, StepIndex: 0, NewTitle: "Read running guides"},
		{Type: ChangeCompleteStep, StepIndex: 0},
		{Type: ChangeUpdateStatus, StepIndex: 1, NewStatus: "inprogress"},
		{Type: ChangeSkipStep, StepIndex: 3},
		{Type: ChangeCompleteStep, StepIndex: 9},
		{Type: "rewrite", StepIndex: 0},
		{Type: ChangeUpdateStatus, StepIndex: 2, NewStatus: "locked"},
	}})

	assert.Equal(t, []string{
		`Renamed step to "Read running guides"`,
		`Completed "Read running guides"`,
		`Marked "Build foundational skills" as inprogress`,
	}, applied)

	assert.Equal(t, model.StepStatusCompleted, main[0].Status)
	require.NotNil(t, main[0].ActualDaysSpent)
	assert.Equal(t, 0, *main[0].ActualDaysSpent)
	assert.Equal(t, model.StepStatusInProgress, main[1].Status)
	assert.Equal(t, model.StepStatusLocked, main[3].Status)

	assert.Equal(t, 0.2, j.OverallProgress)
	assert.Equal(t, 1, j.CurrentStepIndex)
}

package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/llm"
	"github.com/probuddy/api/internal/model"
)

const (
	ChangeUpdateTitle  = "update_title"
	ChangeCompleteStep = "complete_step"
	ChangeSkipStep     = "skip_step"
	ChangeUpdateStatus = "update_status"
)

// Change is one edit suggested by the model. StepIndex is the position on the
// main path.
type Change struct {
	Type        string `json:"type"`
	StepIndex   int    `json:"step_index"`
	NewTitle    string `json:"new_title,omitempty"`
	NewStatus   string `json:"new_status,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description,omitempty"`
}

type Adjustment struct {
	Changes []Change `json:"changes"`
	Message string   `json:"ai_message"`
}

// Adjust asks the model how the journey should change given what the user
// reports doing. A failed request yields an empty adjustment with an apology.
func (g *AIGenerator) Adjust(ctx context.Context, j *model.GoalJourney, activity, extra string) (*Adjustment, error) {
	if g.provider == nil {
		return &Adjustment{Message: adjustFailedText}, nil
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		Prompt:    adjustmentPrompt(j, activity, extra),
		Schema:    adjustmentSchema,
		MaxTokens: maxAdjustTokens,
	})
	if err == nil {
		adj := &Adjustment{}
		err = json.Unmarshal(resp.Content, adj)
		if err == nil {
			if adj.Message == "" {
				adj.Message = adjustedText
			}
			return adj, nil
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	slog.Error("failed to adjust journey", "error", err, "journey_id", j.ID)
	return &Adjustment{Message: adjustFailedText}, nil
}

// Apply runs the adjustment's changes through the state machine and returns a
// description of each change that took effect. Changes that name an unknown
// step or an illegal transition are skipped.
func Apply(m *journey.Machine, adj *Adjustment) []string {
	main := m.Journey().MainPath()
	applied := []string{}

	for _, c := range adj.Changes {
		if c.StepIndex < 0 || c.StepIndex >= len(main) {
			slog.Debug("adjustment skipped: step index out of range", "type", c.Type, "step_index", c.StepIndex)
			continue
		}
		step := main[c.StepIndex]

		err := applyChange(m, step, c)
		if err != nil {
			slog.Debug("adjustment skipped", "type", c.Type, "step_id", step.ID, "error", err)
			continue
		}
		applied = append(applied, describe(step, c))
	}
	return applied
}

func applyChange(m *journey.Machine, step *model.GoalStep, c Change) error {
	switch c.Type {
	case ChangeUpdateTitle:
		return m.RenameStep(step.ID, c.NewTitle)
	case ChangeCompleteStep:
		return complete(m, step)
	case ChangeSkipStep:
		return m.SkipStep(step.ID)
	case ChangeUpdateStatus:
		switch model.StepStatus(c.NewStatus) {
		case model.StepStatusInProgress:
			return m.StartStep(step.ID)
		case model.StepStatusCompleted:
			return complete(m, step)
		case model.StepStatusSkipped:
			return m.SkipStep(step.ID)
		}
		return fmt.Errorf("unsupported status %q", c.NewStatus)
	}
	return fmt.Errorf("unknown change type %q", c.Type)
}

// complete finishes a step the user reports as done, starting it first when
// it was only available.
func complete(m *journey.Machine, step *model.GoalStep) error {
	if step.Status == model.StepStatusAvailable {
		err := m.StartStep(step.ID)
		if err != nil {
			return err
		}
	}
	return m.CompleteStep(step.ID, nil)
}

func describe(step *model.GoalStep, c Change) string {
	if c.Description != "" {
		return c.Description
	}
	switch c.Type {
	case ChangeUpdateTitle:
		return fmt.Sprintf("Renamed step to %q", step.DisplayTitle())
	case ChangeCompleteStep:
		return fmt.Sprintf("Completed %q", step.DisplayTitle())
	case ChangeSkipStep:
		return fmt.Sprintf("Skipped %q", step.DisplayTitle())
	default:
		return fmt.Sprintf("Marked %q as %s", step.DisplayTitle(), step.Status)
	}
}

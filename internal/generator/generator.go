// Package generator drafts goal journeys with a language model and turns the
// model's suggestions into journey edits. When the model is unavailable it
// falls back to a generic five step plan so a user is never left without a
// journey.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/probuddy/api/internal/llm"
	"github.com/probuddy/api/internal/model"
)

const (
	stepHeight       = 300.0
	fallbackAINotes  = "Let's take this step by step. Here's a general path to get you started!"
	adjustFailedText = "I couldn't adjust your journey right now. Please try again."
	adjustedText     = "Your journey has been updated!"
	maxPlanTokens    = 4096
	maxAdjustTokens  = 2048
)

var ErrEmptyPlan = errors.New("generated plan has no steps")

// Request describes the goal a journey is drafted for.
type Request struct {
	UserID      string
	GoalID      *string
	GoalContent string
	GoalReason  *string
	Identity    string
	Challenges  []string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (*model.GoalJourney, error)
	Adjust(ctx context.Context, j *model.GoalJourney, activity, extra string) (*Adjustment, error)
}

type AIGenerator struct {
	provider llm.Provider
	now      func() time.Time
}

func New(provider llm.Provider) *AIGenerator {
	return &AIGenerator{provider: provider, now: time.Now}
}

type planStep struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	EstimatedDays int      `json:"estimated_days"`
	PathType      string   `json:"path_type"`
	Prerequisites []string `json:"prerequisites"`
	Tips          []string `json:"tips"`
}

type plan struct {
	AINotes string     `json:"ai_notes"`
	Steps   []planStep `json:"steps"`
}

// Generate drafts a journey for the goal. Model failures are logged and
// answered with the fallback plan; only a canceled context is returned as an
// error.
func (g *AIGenerator) Generate(ctx context.Context, req Request) (*model.GoalJourney, error) {
	if g.provider == nil {
		return g.Fallback(req), nil
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		Prompt:      generationPrompt(req),
		Schema:      planSchema,
		MaxTokens:   maxPlanTokens,
		Temperature: 0.7,
	})
	if err == nil {
		var p plan
		err = json.Unmarshal(resp.Content, &p)
		if err == nil {
			j := g.newJourney(req)
			j.Steps = parseSteps(j.ID, p.Steps, j.CreatedAt)
			if len(j.Steps) > 0 {
				if p.AINotes != "" {
					j.AINotes = &p.AINotes
				}
				j.MapHeight = max(model.DefaultMapHeight, float64(len(j.Steps))*stepHeight)
				return j, nil
			}
			err = ErrEmptyPlan
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	slog.Error("failed to generate journey, using fallback plan", "error", err, "user_id", req.UserID)
	return g.Fallback(req), nil
}

func (g *AIGenerator) newJourney(req Request) *model.GoalJourney {
	now := g.now().UTC()
	return &model.GoalJourney{
		ID:               uuid.New().String(),
		UserID:           req.UserID,
		GoalID:           req.GoalID,
		GoalContent:      req.GoalContent,
		GoalReason:       req.GoalReason,
		CreatedAt:        now,
		JourneyStartedAt: now,
		IsAIGenerated:    true,
		MapWidth:         model.DefaultMapWidth,
		MapHeight:        model.DefaultMapHeight,
	}
}

// parseSteps converts the model's steps into journey steps. Prerequisites
// refer to earlier steps as "step_N"; forward or malformed references are
// dropped. The first main path step starts available.
func parseSteps(journeyID string, data []planStep, now time.Time) []*model.GoalStep {
	totalMain := 0
	for _, d := range data {
		if pathTypeOf(d) == model.PathTypeMain {
			totalMain++
		}
	}

	steps := make([]*model.GoalStep, 0, len(data))
	mainSeen := 0
	firstMain := true
	for i, d := range data {
		pathType := pathTypeOf(d)

		var x, row float64
		if pathType == model.PathTypeMain {
			x, row = 0.5, float64(mainSeen)
			mainSeen++
		} else {
			x, row = 0.7, float64(i)
			if i%2 == 0 {
				x = 0.3
			}
		}
		y := min((row+1)/float64(totalMain+2), 1)

		title := strings.TrimSpace(d.Title)
		if title == "" {
			title = fmt.Sprintf("Step %d", i+1)
		}
		days := d.EstimatedDays
		if days == 0 {
			days = model.DefaultEstimatedDays
		}
		days = max(days, 1)

		prereqs := model.StringList{}
		for _, ref := range d.Prerequisites {
			idx, ok := stepRef(ref)
			if ok && idx < len(steps) && !prereqs.Contains(steps[idx].ID) {
				prereqs = append(prereqs, steps[idx].ID)
			}
		}

		tips := d.Tips
		if tips == nil {
			tips = []string{}
		}

		status := model.StepStatusLocked
		switch {
		case pathType == model.PathTypeAlternative:
			status = model.StepStatusAlternative
		case firstMain:
			status = model.StepStatusAvailable
			firstMain = false
		}

		steps = append(steps, &model.GoalStep{
			ID:            uuid.New().String(),
			JourneyID:     journeyID,
			Title:         title,
			Description:   strings.TrimSpace(d.Description),
			OrderIndex:    i,
			Status:        status,
			Prerequisites: prereqs,
			Alternatives:  model.StringList{},
			PathType:      pathType,
			Position:      model.MapPosition{X: x, Y: y, Layer: i},
			EstimatedDays: days,
			Notes:         model.StringList{},
			Metadata:      model.Metadata{"tips": tips},
			CreatedAt:     now,
		})
	}
	return steps
}

func pathTypeOf(d planStep) model.PathType {
	if d.PathType == string(model.PathTypeAlternative) {
		return model.PathTypeAlternative
	}
	return model.PathTypeMain
}

func stepRef(ref string) (int, bool) {
	n, ok := strings.CutPrefix(strings.TrimSpace(ref), "step_")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(n)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

type fallbackStep struct {
	title, description string
	days               int
}

var fallbackSteps = []fallbackStep{
	{"Research and planning", "Research what's needed to achieve your goal and create a plan.", 7},
	{"Build foundational skills", "Develop the core skills and knowledge needed for this goal.", 21},
	{"Practice and apply", "Put your learning into practice with real applications.", 30},
	{"Refine and improve", "Refine your approach based on what you've learned.", 21},
	{"Final push", "Make the final effort to achieve your goal.", 14},
}

// Fallback builds the generic linear plan used when the model cannot help.
func (g *AIGenerator) Fallback(req Request) *model.GoalJourney {
	j := g.newJourney(req)
	j.IsAIGenerated = false
	notes := fallbackAINotes
	j.AINotes = &notes

	for i, f := range fallbackSteps {
		status := model.StepStatusLocked
		prereqs := model.StringList{}
		if i == 0 {
			status = model.StepStatusAvailable
		} else {
			prereqs = append(prereqs, j.Steps[i-1].ID)
		}
		j.Steps = append(j.Steps, &model.GoalStep{
			ID:            uuid.New().String(),
			JourneyID:     j.ID,
			Title:         f.title,
			Description:   f.description,
			OrderIndex:    i,
			Status:        status,
			Prerequisites: prereqs,
			Alternatives:  model.StringList{},
			PathType:      model.PathTypeMain,
			Position:      model.MapPosition{X: 0.5, Y: float64(i+1) / float64(len(fallbackSteps)+1), Layer: i},
			EstimatedDays: f.days,
			Notes:         model.StringList{},
			Metadata:      model.Metadata{},
			CreatedAt:     j.CreatedAt,
		})
	}
	return j
}

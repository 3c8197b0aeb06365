package generator

import (
	"fmt"
	"strings"

	"github.com/probuddy/api/internal/journey"
	"github.com/probuddy/api/internal/model"
)

func generationPrompt(req Request) string {
	var context []string
	if req.Identity != "" {
		context = append(context, "User identifies as: "+req.Identity)
	}
	if len(req.Challenges) > 0 {
		context = append(context, "User's challenges: "+strings.Join(req.Challenges, ", "))
	}
	contextText := "No additional context provided."
	if len(context) > 0 {
		contextText = strings.Join(context, "\n")
	}

	reason := "Not specified"
	if req.GoalReason != nil && *req.GoalReason != "" {
		reason = *req.GoalReason
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a goal-planning assistant helping create a structured journey.\n\n")
	fmt.Fprintf(&b, "USER'S GOAL: %s\nWHY IT MATTERS: %s\n\nCONTEXT:\n%s\n\n", req.GoalContent, reason, contextText)
	b.WriteString(`Create a journey with 5-8 actionable steps to achieve this goal. Each step should:
1. Be specific and actionable
2. Build logically on previous steps
3. Have a realistic time estimate in days (7-30 typically)
4. Progress toward the final goal

Include 1-2 alternative branches at key decision points with path_type "alternative".
The final destination is the goal itself, do not include it as a step.

Steps are numbered from step_0 in the order you return them. Prerequisites refer
to earlier steps by that name, e.g. ["step_0"]. Keep the main path to 5-7 steps.
Give each step a short actionable title, a 2-3 sentence description and a few tips.
Also return ai_notes: a brief encouraging overview of the journey (1-2 sentences).
`)
	return b.String()
}

func adjustmentPrompt(j *model.GoalJourney, activity, extra string) string {
	var b strings.Builder
	b.WriteString("You are helping adjust a user's goal journey based on their current activities.\n\n")
	fmt.Fprintf(&b, "GOAL: %s\n", j.GoalContent)

	current := "Unknown"
	if s, err := journey.CurrentStep(j); err == nil {
		current = s.DisplayTitle()
	}
	fmt.Fprintf(&b, "CURRENT STEP: %s (index: %d)\n\nALL STEPS:\n", current, j.CurrentStepIndex)
	for i, s := range j.MainPath() {
		fmt.Fprintf(&b, "- Step %d: %s (%s)\n", i, s.DisplayTitle(), s.Status)
	}

	fmt.Fprintf(&b, "\nUSER SAYS THEY'RE DOING: %s\n", activity)
	if extra != "" {
		fmt.Fprintf(&b, "ADDITIONAL CONTEXT: %s\n", extra)
	}

	b.WriteString(`
Decide whether:
1. The activity matches the current step: update its title to match better
2. The user is ahead: complete steps
3. The user is on a different track: skip steps that no longer apply

step_index refers to the step numbers listed above. Change types are
update_title (with new_title), complete_step, skip_step and update_status
(with new_status: inprogress, completed or skipped). Describe every change in
one short sentence and add an encouraging ai_message.
Be conservative: only make changes that clearly match the user's activity.
`)
	return b.String()
}

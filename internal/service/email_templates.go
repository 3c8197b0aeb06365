package service

import (
	"fmt"

	"github.com/probuddy/api/internal/journey"
)

func milestoneEmailTemplate(name, goal string, c journey.Celebration, journeyURL, appName string) (string, string) {
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("%s %s", c.Banner, goal)
	if c.Kind == journey.CelebrationComplete {
		subject = fmt.Sprintf("You reached your goal: %s", goal)
	}

	body := fmt.Sprintf(`Hi %s,

%s

Your goal: %s

See your journey and what comes next:
%s

Keep going,
The %s Team`, name, c.Banner, goal, journeyURL, appName)

	return subject, body
}

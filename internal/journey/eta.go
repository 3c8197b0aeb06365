package journey

import (
	"fmt"
	"math"
	"time"

	"github.com/probuddy/api/internal/model"
)

// FallbackDaysPerStep is the pace assumed when there is nothing to average.
const FallbackDaysPerStep = 14.0

// OnTrackVelocity is the lowest velocity still considered on schedule.
const OnTrackVelocity = 0.9

type ETAData struct {
	EstimatedCompletionDate time.Time `json:"estimated_completion_date"`
	TotalEstimatedDays      int       `json:"total_estimated_days"`
	DaysElapsed             int       `json:"days_elapsed"`
	DaysRemaining           int       `json:"days_remaining"`
	StepsCompleted          int       `json:"steps_completed"`
	StepsRemaining          int       `json:"steps_remaining"`
	AverageDaysPerStep      float64   `json:"average_days_per_step"`
	VelocityScore           float64   `json:"velocity_score"`
	Pace                    Pace      `json:"pace"`
	DisplayText             string    `json:"display_text"`
}

type Pace string

const (
	PaceAhead   Pace = "ahead"
	PaceOnTrack Pace = "on_track"
	PaceBehind  Pace = "behind"
	PaceSlow    Pace = "slow"
)

type paceTier struct {
	minVelocity float64
	pace        Pace
	icon        string
	label       string
}

// paceTiers is ordered from fastest to slowest.
var paceTiers = []paceTier{
	{1.3, PaceAhead, "🚀", "Ahead of schedule"},
	{OnTrackVelocity, PaceOnTrack, "✅", "On track"},
	{0.7, PaceBehind, "🐢", "A bit behind"},
	{math.Inf(-1), PaceSlow, "💪", "Let's pick up the pace"},
}

func tierFor(velocity float64) paceTier {
	for _, t := range paceTiers {
		if velocity >= t.minVelocity {
			return t
		}
	}
	return paceTiers[len(paceTiers)-1]
}

// PaceFor classifies a velocity score.
func PaceFor(velocity float64) Pace {
	return tierFor(velocity).pace
}

// Calculate projects the journey's completion from the pace of the steps
// completed so far. It is a pure function of the snapshot and now.
func Calculate(j *model.GoalJourney, now time.Time) ETAData {
	main := j.MainPath()

	var completed, remaining []*model.GoalStep
	totalEstimated := 0
	for _, s := range main {
		totalEstimated += s.EstimatedDays
		switch {
		case s.Status == model.StepStatusCompleted:
			completed = append(completed, s)
		case !s.IsTerminal():
			remaining = append(remaining, s)
		}
	}

	avg := averageDaysPerStep(completed, remaining)
	velocity := velocityScore(completed)

	var daysRemaining int
	switch {
	case len(remaining) == 0:
		daysRemaining = 0
	case len(completed) == 0:
		for _, s := range remaining {
			daysRemaining += s.EstimatedDays
		}
	default:
		daysRemaining = int(math.Round(float64(len(remaining)) * avg / velocity))
	}

	daysElapsed := 0
	if !j.JourneyStartedAt.IsZero() && now.After(j.JourneyStartedAt) {
		daysElapsed = int(now.Sub(j.JourneyStartedAt).Hours() / 24)
	}

	return ETAData{
		EstimatedCompletionDate: now.AddDate(0, 0, daysRemaining),
		TotalEstimatedDays:      totalEstimated,
		DaysElapsed:             daysElapsed,
		DaysRemaining:           daysRemaining,
		StepsCompleted:          len(completed),
		StepsRemaining:          len(remaining),
		AverageDaysPerStep:      avg,
		VelocityScore:           velocity,
		Pace:                    PaceFor(velocity),
		DisplayText:             DisplayText(daysRemaining, velocity),
	}
}

func averageDaysPerStep(completed, remaining []*model.GoalStep) float64 {
	if len(completed) == 0 {
		if len(remaining) == 0 {
			return FallbackDaysPerStep
		}
		sum := 0
		for _, s := range remaining {
			sum += s.EstimatedDays
		}
		return float64(sum) / float64(len(remaining))
	}

	sum := 0
	for _, s := range completed {
		sum += s.PaceDays()
	}
	return float64(sum) / float64(len(completed))
}

// velocityScore is the ratio of estimated to actual days over the completed
// steps: above 1 the user is faster than planned, below 1 slower.
func velocityScore(completed []*model.GoalStep) float64 {
	estimated, actual := 0, 0
	for _, s := range completed {
		estimated += s.EstimatedDays
		actual += s.PaceDays()
	}
	if len(completed) == 0 || actual <= 0 {
		return 1.0
	}
	return float64(estimated) / float64(actual)
}

// DisplayText renders the remaining time followed by the pace qualifier,
// e.g. "~3 weeks to go · ✅ On track".
func DisplayText(daysRemaining int, velocity float64) string {
	t := tierFor(velocity)
	return fmt.Sprintf("%s · %s %s", timePhrase(daysRemaining), t.icon, t.label)
}

func timePhrase(days int) string {
	switch {
	case days <= 0:
		return "Almost there!"
	case days <= 7:
		return approx(days, "day")
	case days <= 30:
		return approx(roundDiv(days, 7), "week")
	case days <= 365:
		return approx(roundDiv(days, 30), "month")
	default:
		return approx(roundDiv(days, 365), "year")
	}
}

func roundDiv(days, per int) int {
	return int(math.Round(float64(days) / float64(per)))
}

func approx(n int, unit string) string {
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("~%d %s to go", n, unit)
}

package journey

import "github.com/probuddy/api/internal/model"

type progressBand int

const (
	bandNotStarted progressBand = iota
	bandStarting
	bandBuilding
	bandPastHalf
	bandFinishing
)

func bandFor(progress float64) progressBand {
	switch {
	case progress <= 0:
		return bandNotStarted
	case progress < 0.25:
		return bandStarting
	case progress < 0.50:
		return bandBuilding
	case progress < 0.75:
		return bandPastHalf
	default:
		return bandFinishing
	}
}

const completeMessage = "You did it! Every step of this journey is behind you. Take a moment to celebrate 🎉"

// messages is indexed by progress band, then by whether the user keeps pace.
var messages = map[progressBand][2]string{
	bandNotStarted: {
		"Every journey starts with a single step. Pick one and begin today.",
		"Every journey starts with a single step. Pick one and begin today.",
	},
	bandStarting: {
		"You've started, and that's the hardest part. Small steps add up.",
		"Great start! You're moving faster than planned.",
	},
	bandBuilding: {
		"You're building momentum. A little focus this week will go a long way.",
		"Solid progress and right on pace. Keep the rhythm going.",
	},
	bandPastHalf: {
		"Past the halfway mark! Steady effort will carry you the rest of the way.",
		"More than halfway there and keeping pace. Impressive consistency.",
	},
	bandFinishing: {
		"The finish line is close. One push at a time.",
		"So close! You're flying through the final steps.",
	},
}

// MotivationalMessage picks an encouragement for the journey's progress and
// the user's velocity.
func MotivationalMessage(j *model.GoalJourney, velocity float64) string {
	if j.IsComplete() && len(j.MainPath()) > 0 {
		return completeMessage
	}
	onPace := 0
	if velocity >= OnTrackVelocity {
		onPace = 1
	}
	return messages[bandFor(j.OverallProgress)][onPace]
}

package journey

import "time"

type CelebrationKind string

const (
	CelebrationQuarter       CelebrationKind = "quarter"
	CelebrationHalfway       CelebrationKind = "halfway"
	CelebrationThreeQuarters CelebrationKind = "three_quarters"
	CelebrationComplete      CelebrationKind = "complete"
)

// Celebration is the fixed presentation of a milestone.
type Celebration struct {
	Kind          CelebrationKind `json:"kind"`
	Threshold     float64         `json:"threshold"`
	ParticleCount int             `json:"particle_count"`
	Duration      time.Duration   `json:"duration"`
	Banner        string          `json:"banner"`
	PlaySound     bool            `json:"play_sound"`
}

// milestones is ordered by ascending threshold.
var milestones = [...]Celebration{
	{CelebrationQuarter, 0.25, 40, 2 * time.Second, "25% of the way there!", false},
	{CelebrationHalfway, 0.50, 80, 3 * time.Second, "Halfway to your goal!", true},
	{CelebrationThreeQuarters, 0.75, 120, 3 * time.Second, "75% done, the finish line is in sight!", true},
	{CelebrationComplete, 1.00, 250, 5 * time.Second, "Goal achieved!", true},
}

// Milestones returns the celebration table.
func Milestones() []Celebration {
	out := make([]Celebration, len(milestones))
	copy(out, milestones[:])
	return out
}

// CheckMilestone reports the milestone crossed when progress moves from prev
// to next, i.e. prev < threshold <= next. When a single change crosses several
// thresholds the highest one is returned.
func CheckMilestone(prev, next float64) (Celebration, bool) {
	var hit Celebration
	found := false
	for _, m := range milestones {
		if prev < m.Threshold && m.Threshold <= next {
			hit = m
			found = true
		}
	}
	return hit, found
}

package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalid wraps every validation failure so callers can map it to a
// client error.
var ErrInvalid = errors.New("invalid input")

const (
	MinGoalLength     = 10
	MaxGoalLength     = 1000
	MaxReasonLength   = 1000
	MaxTitleLength    = 200
	MaxNoteLength     = 2000
	MaxActivityLength = 1000
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func length(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// ValidateGoalContent validates the goal a journey is planned for
func ValidateGoalContent(content string) error {
	n := length(content)
	if n == 0 {
		return invalid("goal is required")
	}
	if n < MinGoalLength {
		return invalid("goal is too short (min %d characters)", MinGoalLength)
	}
	if n > MaxGoalLength {
		return invalid("goal is too long (max %d characters)", MaxGoalLength)
	}
	return nil
}

func ValidateReason(reason *string) error {
	if reason != nil && length(*reason) > MaxReasonLength {
		return invalid("reason is too long (max %d characters)", MaxReasonLength)
	}
	return nil
}

func ValidateStepTitle(title string) error {
	n := length(title)
	if n == 0 {
		return invalid("title is required")
	}
	if n > MaxTitleLength {
		return invalid("title is too long (max %d characters)", MaxTitleLength)
	}
	return nil
}

func ValidateNote(note string) error {
	n := length(note)
	if n == 0 {
		return invalid("note is required")
	}
	if n > MaxNoteLength {
		return invalid("note is too long (max %d characters)", MaxNoteLength)
	}
	return nil
}

// ValidateActivity validates what the user reports doing when asking for a
// journey adjustment
func ValidateActivity(activity string) error {
	n := length(activity)
	if n == 0 {
		return invalid("current activity is required")
	}
	if n > MaxActivityLength {
		return invalid("current activity is too long (max %d characters)", MaxActivityLength)
	}
	return nil
}

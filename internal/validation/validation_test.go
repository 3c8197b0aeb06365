package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGoalContent(t *testing.T) {
	assert.NoError(t, ValidateGoalContent("Run a marathon next spring"))

	for _, bad := range []string{"", "   ", "Run", strings.Repeat("a", MaxGoalLength+1)} {
		assert.ErrorIs(t, ValidateGoalContent(bad), ErrInvalid, bad)
	}
}

func TestValidateReason(t *testing.T) {
	assert.NoError(t, ValidateReason(nil))
	ok := "for my health"
	assert.NoError(t, ValidateReason(&ok))
	long := strings.Repeat("b", MaxReasonLength+1)
	assert.ErrorIs(t, ValidateReason(&long), ErrInvalid)
}

func TestValidateStepTitleAndNote(t *testing.T) {
	assert.NoError(t, ValidateStepTitle("Buy running shoes"))
	assert.ErrorIs(t, ValidateStepTitle(" "), ErrInvalid)
	assert.ErrorIs(t, ValidateStepTitle(strings.Repeat("t", MaxTitleLength+1)), ErrInvalid)

	assert.NoError(t, ValidateNote("felt great"))
	assert.ErrorIs(t, ValidateNote(""), ErrInvalid)
	assert.ErrorIs(t, ValidateNote(strings.Repeat("n", MaxNoteLength+1)), ErrInvalid)

	assert.NoError(t, ValidateActivity("practicing scales"))
	assert.ErrorIs(t, ValidateActivity(""), ErrInvalid)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.ErrorIs(t, ValidateEmail(""), ErrInvalid)
	assert.ErrorIs(t, ValidateEmail("not an email"), ErrInvalid)
	assert.Contains(t, ValidateEmail("").Error(), "email address is required")
}

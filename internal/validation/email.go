package validation

import (
	"net/mail"
)

// ValidateEmail checks that a notification address is deliverable in form.
// Uses net/mail, which follows RFC 5322.
func ValidateEmail(email string) error {
	if email == "" {
		return invalid("email address is required")
	}
	if len(email) > 254 {
		return invalid("email address is too long (max 254 characters)")
	}

	_, err := mail.ParseAddress(email)
	if err != nil {
		return invalid("invalid email address format")
	}
	return nil
}

package domain

import (
	"fmt"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePositiveChips checks that a chip amount is positive.
func ValidatePositiveChips(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("chip amount must be positive, got %d", amount)
	}
	return nil
}

// ValidateNonNegativeChips checks that a chip amount is zero or positive.
// Cash-outs and initial buy-ins may legitimately be zero.
func ValidateNonNegativeChips(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("chip amount must not be negative, got %d", amount)
	}
	return nil
}

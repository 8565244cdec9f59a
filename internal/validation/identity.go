// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
)

var handleRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)

// ValidateHandle checks handle format.
func ValidateHandle(handle string) error {
	if !handleRegex.MatchString(handle) {
		return fmt.Errorf("handle must be 3-30 characters and contain only letters, numbers, hyphens, and underscores")
	}
	return nil
}

// ValidatePassword checks if a password meets minimum requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

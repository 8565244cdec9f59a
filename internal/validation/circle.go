package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxCircleNameLen = 120

// ValidateCircleName validates a circle name.
func ValidateCircleName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("circle name is required")
	}
	if trimmed != name {
		return fmt.Errorf("circle name cannot start or end with whitespace")
	}
	if utf8.RuneCountInString(name) > maxCircleNameLen {
		return fmt.Errorf("circle name must not exceed %d characters", maxCircleNameLen)
	}
	return nil
}

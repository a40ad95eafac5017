package timer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid timer")

// Validate checks a creation request. It runs at the UI boundary; the
// reducer assumes valid input.
func Validate(name, category string, duration, alertAt int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if duration <= 0 {
		return fmt.Errorf("%w: duration must be a positive number of seconds", ErrInvalid)
	}
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalid)
	}
	if alertAt < 0 || (alertAt > 0 && alertAt >= duration) {
		return fmt.Errorf("%w: alert must be between 1 and %d seconds remaining", ErrInvalid, duration-1)
	}
	return nil
}

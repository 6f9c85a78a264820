package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

func secondsToDuration(sec int64) time.Duration {
	return time.Duration(sec) * time.Second
}

// parseTimeOfDay places an HH:MM clock time on date.
func parseTimeOfDay(date time.Time, field, v string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: --%s %q must be HH:MM", domain.ErrValidation, field, v)
	}
	return date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use HH:MM")
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

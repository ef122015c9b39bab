package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Venue represents a physical venue with a fixed admission capacity
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Capacity    int       `json:"capacity"`
	OpeningTime TimeOfDay `json:"opening_time"`
	ClosingTime TimeOfDay `json:"closing_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TimeOfDay is a local wall-clock time stored as minutes since midnight
type TimeOfDay int

// EndOfDay is the latest representable TimeOfDay (23:59)
const EndOfDay TimeOfDay = 23*60 + 59

// ParseTimeOfDay parses a 24-hour "HH:mm" string. "24:00" is accepted as
// an end-of-day closing time and normalised to 23:59.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if s == "24:00" {
		return EndOfDay, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, NewValidationError("time %q must be in HH:mm format", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, NewValidationError("time %q has an invalid hour", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, NewValidationError("time %q has an invalid minute", s)
	}

	return TimeOfDay(hour*60 + minute), nil
}

// String formats the time as "HH:mm"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Validate validates the venue fields
func (v *Venue) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return NewValidationError("venue name is required")
	}
	if v.Capacity <= 0 {
		return NewValidationError("venue capacity must be positive")
	}
	if v.OpeningTime >= v.ClosingTime {
		return NewValidationError("venue opening time must be before closing time")
	}
	return nil
}

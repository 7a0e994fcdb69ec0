// Package timeofday provides a civil wall-clock time with minute precision.
// Doctor schedules and appointment times are doctor-local times of day; no
// timezone conversion is ever applied to them.
package timeofday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a time of day expressed as minutes since midnight, in the
// range [0, 1440). It is stored in the database as an integer column and
// rendered as "HH:MM" in JSON.
type TimeOfDay int

const (
	// MinutesPerDay is the exclusive upper bound for a TimeOfDay.
	MinutesPerDay = 24 * 60
)

// Parse parses a "HH:MM" string (24-hour clock).
func Parse(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustParse is Parse that panics on error, for tests and constants.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FromMinutes converts a minutes-since-midnight count, reporting whether it
// is in range.
func FromMinutes(m int) (TimeOfDay, bool) {
	if m < 0 || m >= MinutesPerDay {
		return 0, false
	}
	return TimeOfDay(m), true
}

// Minutes returns the minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// Hour returns the hour component (0-23).
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component (0-59).
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// Add returns the time shifted by d minutes. The result may exceed the end
// of the day; callers compare against MinutesPerDay when that matters.
func (t TimeOfDay) Add(d int) TimeOfDay { return t + TimeOfDay(d) }

// Before reports whether t is strictly earlier than u.
func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

// String renders "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// At anchors the time of day on the given calendar date in date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}

// MarshalJSON renders the time as a quoted "HH:MM" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

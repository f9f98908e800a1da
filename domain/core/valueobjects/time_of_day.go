package valueobjects

import (
	"fmt"
	"strconv"
	"strings"

	pkgerrors "triptrek-backend/pkg/errors"
)

// TimeOfDay is a wall-clock label with no date or timezone attached.
// Hour is stored in 24-hour form.
type TimeOfDay struct {
	hour   int
	minute int
}

// NewTimeOfDay validates a 24-hour hour/minute pair.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, invalidTime(fmt.Sprintf("%d:%d", hour, minute), "hour or minute out of range")
	}
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// ParseTimeOfDay parses a 12-hour display time such as "2:00 PM".
//
// The hour may omit its leading zero, the minute must have two digits and
// the AM/PM marker is case-insensitive.
func ParseTimeOfDay(display string) (TimeOfDay, error) {
	fields := strings.Fields(display)
	if len(fields) != 2 {
		return TimeOfDay{}, invalidTime(display, "expected h:mm AM or h:mm PM")
	}

	marker := strings.ToUpper(fields[1])
	if marker != "AM" && marker != "PM" {
		return TimeOfDay{}, invalidTime(display, "missing AM/PM marker")
	}

	clock := strings.Split(fields[0], ":")
	if len(clock) != 2 || len(clock[0]) < 1 || len(clock[0]) > 2 || len(clock[1]) != 2 {
		return TimeOfDay{}, invalidTime(display, "expected h:mm")
	}

	hour, err := strconv.Atoi(clock[0])
	if err != nil || hour < 1 || hour > 12 {
		return TimeOfDay{}, invalidTime(display, "hour must be 1-12")
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, invalidTime(display, "minute must be 00-59")
	}

	switch {
	case marker == "PM" && hour != 12:
		hour += 12
	case marker == "AM" && hour == 12:
		hour = 0
	}

	return TimeOfDay{hour: hour, minute: minute}, nil
}

// ParseTimeKey parses a zero-padded 24-hour "HH:mm" key.
func ParseTimeKey(key string) (TimeOfDay, error) {
	clock := strings.Split(strings.TrimSpace(key), ":")
	if len(clock) != 2 || len(clock[0]) != 2 || len(clock[1]) != 2 {
		return TimeOfDay{}, invalidTime(key, "expected HH:mm")
	}
	hour, err := strconv.Atoi(clock[0])
	if err != nil {
		return TimeOfDay{}, invalidTime(key, "hour is not numeric")
	}
	minute, err := strconv.Atoi(clock[1])
	if err != nil {
		return TimeOfDay{}, invalidTime(key, "minute is not numeric")
	}
	return NewTimeOfDay(hour, minute)
}

func (t TimeOfDay) Hour() int   { return t.hour }
func (t TimeOfDay) Minute() int { return t.minute }

// Key returns the zero-padded "HH:mm" form. Keys sort lexicographically in
// chronological order.
func (t TimeOfDay) Key() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Display returns the "h:mm AM|PM" form.
func (t TimeOfDay) Display() string {
	marker := "AM"
	if t.hour >= 12 {
		marker = "PM"
	}
	hour := t.hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.minute, marker)
}

// To24Hour converts a 12-hour display time into its sortable 24-hour key.
func To24Hour(display string) (string, error) {
	t, err := ParseTimeOfDay(display)
	if err != nil {
		return "", err
	}
	return t.Key(), nil
}

// To12Hour formats a 24-hour hour/minute pair, as produced by a time picker,
// into the display form stored on activities.
func To12Hour(hour, minute int) (string, error) {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		return "", err
	}
	return t.Display(), nil
}

func invalidTime(value, reason string) error {
	return pkgerrors.ErrInvalidTimeFormat.
		Derive(fmt.Sprintf("invalid time %q: %s", value, reason)).
		WithDetail("value", value)
}

package valueobjects

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	pkgerrors "triptrek-backend/pkg/errors"
)

// DisplayDateLayout is the fixed MM/DD/YYYY convention used for every date
// that crosses the wire or is stored on an itinerary day.
const DisplayDateLayout = "01/02/2006"

// CalendarDate is a timezone-free calendar date.
// The zero value is not a valid date; use IsZero to detect it.
type CalendarDate struct {
	year  int
	month time.Month
	day   int
}

// NewCalendarDate builds a date from its parts, rejecting impossible dates
// such as February 30th.
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	if year < 1 || year > 9999 {
		return CalendarDate{}, invalidDate(fmt.Sprintf("%02d/%02d/%d", int(month), day, year), "year out of range")
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return CalendarDate{}, invalidDate(fmt.Sprintf("%02d/%02d/%04d", int(month), day, year), "no such calendar day")
	}
	return CalendarDate{year: year, month: month, day: day}, nil
}

// ParseCalendarDate parses a "MM/DD/YYYY" display date. Single-digit month
// and day are accepted; the year must have four digits.
func ParseCalendarDate(s string) (CalendarDate, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return CalendarDate{}, invalidDate(s, "date is empty")
	}

	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return CalendarDate{}, invalidDate(s, "expected MM/DD/YYYY")
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) < 1 || len(parts[1]) > 2 || len(parts[2]) != 4 {
		return CalendarDate{}, invalidDate(s, "expected MM/DD/YYYY")
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return CalendarDate{}, invalidDate(s, "month is not numeric")
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return CalendarDate{}, invalidDate(s, "day is not numeric")
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return CalendarDate{}, invalidDate(s, "year is not numeric")
	}
	if month < 1 || month > 12 {
		return CalendarDate{}, invalidDate(s, "month out of range")
	}

	return NewCalendarDate(year, time.Month(month), day)
}

// MustParseCalendarDate is ParseCalendarDate for literals known to be valid.
func MustParseCalendarDate(s string) CalendarDate {
	d, err := ParseCalendarDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// CalendarDateOf returns the calendar date of t in t's own location.
func CalendarDateOf(t time.Time) CalendarDate {
	return CalendarDate{year: t.Year(), month: t.Month(), day: t.Day()}
}

func (d CalendarDate) Year() int         { return d.year }
func (d CalendarDate) Month() time.Month { return d.month }
func (d CalendarDate) Day() int          { return d.day }

// IsZero reports whether d is the zero value.
func (d CalendarDate) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

// String returns the MM/DD/YYYY display form.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", int(d.month), d.day, d.year)
}

// Time returns midnight UTC on d.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after d (n may be negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return CalendarDateOf(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.year != other.year:
		return sign(d.year - other.year)
	case d.month != other.month:
		return sign(int(d.month) - int(other.month))
	default:
		return sign(d.day - other.day)
	}
}

func (d CalendarDate) Before(other CalendarDate) bool { return d.Compare(other) < 0 }
func (d CalendarDate) After(other CalendarDate) bool  { return d.Compare(other) > 0 }
func (d CalendarDate) Equal(other CalendarDate) bool  { return d.Compare(other) == 0 }

// DaysUntil returns the number of days from d to other.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// MarshalJSON implements json.Marshaler
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		*d = CalendarDate{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return invalidDate(string(data), "date must be a string")
	}
	parsed, err := ParseCalendarDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func invalidDate(value, reason string) error {
	return pkgerrors.ErrInvalidDate.
		Derive(fmt.Sprintf("invalid date %q: %s", value, reason)).
		WithDetail("value", value)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

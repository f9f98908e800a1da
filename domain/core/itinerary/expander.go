// Package itinerary turns a trip's date bounds and a sparse set of per-day
// activities into a gap-free itinerary. Everything here is pure and safe for
// concurrent use.
package itinerary

import (
	"fmt"

	"triptrek-backend/domain/core/valueobjects"
	pkgerrors "triptrek-backend/pkg/errors"
)

// ExpandRange returns every calendar date from start to end inclusive, in
// ascending order. A start after end is an error, never an empty range.
func ExpandRange(start, end valueobjects.CalendarDate) ([]valueobjects.CalendarDate, error) {
	if start.IsZero() || end.IsZero() {
		return nil, pkgerrors.ErrInvalidDate.Derive("start and end dates are required")
	}
	if start.After(end) {
		return nil, pkgerrors.ErrInvalidDateRange.
			Derive(fmt.Sprintf("end date %s is before start date %s", end, start)).
			WithDetail("startDate", start.String()).
			WithDetail("endDate", end.String())
	}

	n := start.DaysUntil(end) + 1
	dates := make([]valueobjects.CalendarDate, 0, n)
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates, nil
}

// ExpandDisplayRange parses both MM/DD/YYYY bounds and expands them
func ExpandDisplayRange(startDate, endDate string) ([]valueobjects.CalendarDate, error) {
	start, err := valueobjects.ParseCalendarDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := valueobjects.ParseCalendarDate(endDate)
	if err != nil {
		return nil, err
	}
	return ExpandRange(start, end)
}

// FormatDates renders a date range in display form
func FormatDates(dates []valueobjects.CalendarDate) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.String()
	}
	return out
}

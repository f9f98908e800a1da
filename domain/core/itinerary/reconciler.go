package itinerary

import (
	"errors"
	"fmt"

	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/valueobjects"
	pkgerrors "triptrek-backend/pkg/errors"
)

// Reconcile rebuilds an itinerary for dateRange from a prior, possibly sparse
// or unsorted, itinerary.
//
// Days whose date is in range keep their activities; missing dates get an
// empty day; prior days outside the range are dropped along with their
// activities. Every output day is sorted by time of day. Inputs are not
// modified.
func Reconcile(dateRange []valueobjects.CalendarDate, prior []entities.Day) ([]entities.Day, error) {
	byDate := make(map[valueobjects.CalendarDate]entities.Day, len(prior))
	for _, day := range prior {
		date, err := valueobjects.ParseCalendarDate(day.Date)
		if err != nil {
			// An unparseable date can never be in range.
			continue
		}
		byDate[date] = day
	}

	result := make([]entities.Day, 0, len(dateRange))
	for _, date := range dateRange {
		day := entities.Day{Activities: []entities.Activity{}}
		if existing, ok := byDate[date]; ok {
			day = existing.Clone()
		}
		day.Date = date.String()

		if err := day.SortActivities(); err != nil {
			return nil, wrapDayError(date, err)
		}
		result = append(result, day)
	}

	return result, nil
}

// ReconcileTrip expands the trip's own bounds and replaces its itinerary with
// the reconciled one. It returns the dates of prior days that were dropped.
func ReconcileTrip(trip *entities.Trip) ([]string, error) {
	dates, err := ExpandDisplayRange(trip.StartDate, trip.EndDate)
	if err != nil {
		return nil, err
	}

	reconciled, err := Reconcile(dates, trip.Itinerary)
	if err != nil {
		return nil, err
	}

	dropped := DroppedDates(dates, trip.Itinerary)
	trip.Itinerary = reconciled
	return dropped, nil
}

// Reschedule moves the trip to new bounds and reconciles. On error the trip
// is left untouched.
func Reschedule(trip *entities.Trip, startDate, endDate string) ([]string, error) {
	candidate := trip.Clone()
	candidate.StartDate = startDate
	candidate.EndDate = endDate

	dropped, err := ReconcileTrip(candidate)
	if err != nil {
		return nil, err
	}

	trip.StartDate = candidate.StartDate
	trip.EndDate = candidate.EndDate
	trip.Itinerary = candidate.Itinerary
	return dropped, nil
}

// DroppedDates lists prior day dates that do not survive dateRange, in prior
// order. Days with no activities are not reported.
func DroppedDates(dateRange []valueobjects.CalendarDate, prior []entities.Day) []string {
	inRange := make(map[valueobjects.CalendarDate]struct{}, len(dateRange))
	for _, d := range dateRange {
		inRange[d] = struct{}{}
	}

	var dropped []string
	for _, day := range prior {
		if len(day.Activities) == 0 {
			continue
		}
		date, err := valueobjects.ParseCalendarDate(day.Date)
		if err == nil {
			if _, ok := inRange[date]; ok {
				continue
			}
		}
		dropped = append(dropped, day.Date)
	}
	return dropped
}

func wrapDayError(date valueobjects.CalendarDate, err error) error {
	var de *pkgerrors.DomainError
	if errors.As(err, &de) {
		return de.Derive(fmt.Sprintf("%s: %s", date, de.Message)).WithDetail("date", date.String())
	}
	return fmt.Errorf("%s: %w", date, err)
}

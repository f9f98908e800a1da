package validators

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"triptrek-backend/domain/config"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/valueobjects"
	"triptrek-backend/pkg/errors"
)

// TripValidator checks that a trip record is complete enough to persist.
// It reports every violation at once instead of stopping at the first.
type TripValidator struct {
	cfg *config.DomainConfig
}

// NewTripValidator creates a validator; a nil config uses the defaults
func NewTripValidator(cfg *config.DomainConfig) *TripValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &TripValidator{cfg: cfg}
}

// Validate returns nil or an *errors.ValidationErrors listing all violations
func (v *TripValidator) Validate(trip *entities.Trip) error {
	validationErrors := errors.NewValidationErrors()
	if trip == nil {
		validationErrors.Add("trip", "Trip is required.")
		return validationErrors
	}

	if v.cfg.RequireTripID && strings.TrimSpace(trip.ID) == "" {
		validationErrors.Add("id", "Trip id is required.")
	}

	v.validateDestination(trip.Destination, validationErrors)
	v.validateDates(trip, validationErrors)

	for i, day := range trip.Itinerary {
		v.validateDay(i, day, validationErrors)
	}

	return validationErrors.ErrorOrNil()
}

// NeedsConfirmation reports the soft check: a trip with no activities at all
// is valid, but the user should confirm before saving it.
func (v *TripValidator) NeedsConfirmation(trip *entities.Trip) bool {
	return trip != nil && !trip.HasActivities()
}

func (v *TripValidator) validateDestination(destination string, errs *errors.ValidationErrors) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		errs.Add("destination", "Destination is required.")
		return
	}
	if utf8.RuneCountInString(destination) > v.cfg.MaxDestinationLength {
		errs.Add("destination", fmt.Sprintf("Destination must be at most %d characters.", v.cfg.MaxDestinationLength))
	}
}

func (v *TripValidator) validateDates(trip *entities.Trip, errs *errors.ValidationErrors) {
	start, startOK := v.parseDate("startDate", "Start date", trip.StartDate, errs)
	end, endOK := v.parseDate("endDate", "End date", trip.EndDate, errs)
	if !startOK || !endOK {
		return
	}

	if end.Before(start) {
		errs.AddError(errors.ErrInvalidDateRange.
			Derive("End date must not be before start date.").
			WithDetail("field", "endDate"))
		return
	}

	if days := start.DaysUntil(end) + 1; days > v.cfg.MaxTripDays {
		errs.Add("endDate", fmt.Sprintf("Trip cannot be longer than %d days.", v.cfg.MaxTripDays))
	}
}

func (v *TripValidator) parseDate(field, label, value string, errs *errors.ValidationErrors) (valueobjects.CalendarDate, bool) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, label+" is required.")
		return valueobjects.CalendarDate{}, false
	}
	d, err := valueobjects.ParseCalendarDate(value)
	if err != nil {
		errs.AddError(errors.ErrInvalidDate.
			Derive(fmt.Sprintf("%s %q is not a valid MM/DD/YYYY date.", label, value)).
			WithDetail("field", field))
		return valueobjects.CalendarDate{}, false
	}
	return d, true
}

func (v *TripValidator) validateDay(index int, day entities.Day, errs *errors.ValidationErrors) {
	prefix := fmt.Sprintf("itinerary[%d]", index)
	label := day.Date
	if label == "" {
		label = fmt.Sprintf("#%d", index+1)
	}

	if len(day.Activities) > v.cfg.MaxActivitiesPerDay {
		errs.Add(prefix+".activities",
			fmt.Sprintf("Day %s has more than %d activities.", label, v.cfg.MaxActivitiesPerDay))
	}

	for j, activity := range day.Activities {
		field := fmt.Sprintf("%s.activities[%d]", prefix, j)
		name := strings.TrimSpace(activity.Name)
		timeLabel := strings.TrimSpace(activity.Time)

		if name == "" {
			errs.Add(field+".name", fmt.Sprintf("Day %s: activity %d needs a name.", label, j+1))
		} else if utf8.RuneCountInString(name) > v.cfg.MaxActivityNameLength {
			errs.Add(field+".name", fmt.Sprintf("Day %s: activity %d name must be at most %d characters.",
				label, j+1, v.cfg.MaxActivityNameLength))
		}

		if timeLabel == "" {
			errs.Add(field+".time", fmt.Sprintf("Day %s: activity %d needs a time.", label, j+1))
		} else if _, err := valueobjects.To24Hour(timeLabel); err != nil {
			errs.AddError(errors.ErrInvalidTimeFormat.
				Derive(fmt.Sprintf("Day %s: activity %d time %q is not a valid h:mm AM/PM time.", label, j+1, activity.Time)).
				WithDetail("field", field+".time"))
		}
	}

	if len(day.PhotoURLs) > v.cfg.MaxPhotosPerDay {
		errs.Add(prefix+".photoUrls",
			fmt.Sprintf("Day %s has more than %d photos.", label, v.cfg.MaxPhotosPerDay))
	}
	for j, u := range day.PhotoURLs {
		if !strings.HasPrefix(u, "http") {
			errs.Add(fmt.Sprintf("%s.photoUrls[%d]", prefix, j),
				fmt.Sprintf("Day %s: photo %d must be a valid URL.", label, j+1))
		}
	}
}

package validators_test

import (
	"errors"
	"testing"

	"triptrek-backend/domain/config"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/validators"
	pkgerrors "triptrek-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTrip() *entities.Trip {
	return &entities.Trip{
		ID:          "trip-1",
		Destination: "Kyoto",
		StartDate:   "07/20/2025",
		EndDate:     "07/21/2025",
		Itinerary: []entities.Day{
			{Date: "07/20/2025", Activities: []entities.Activity{{Time: "9:00 AM", Name: "Fushimi Inari"}}},
			{Date: "07/21/2025", Activities: []entities.Activity{}},
		},
	}
}

func validationErrors(t *testing.T, err error) *pkgerrors.ValidationErrors {
	t.Helper()
	require.Error(t, err)
	var verrs *pkgerrors.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
	return verrs
}

func TestTripValidator_Valid(t *testing.T) {
	v := validators.NewTripValidator(nil)

	assert.NoError(t, v.Validate(validTrip()))

	oneDay := validTrip()
	oneDay.EndDate = oneDay.StartDate
	oneDay.Itinerary = oneDay.Itinerary[:1]
	assert.NoError(t, v.Validate(oneDay), "a one-day trip is valid")
}

func TestTripValidator_AccumulatesAllViolations(t *testing.T) {
	v := validators.NewTripValidator(nil)
	trip := &entities.Trip{
		ID:          "trip-1",
		Destination: "",
		StartDate:   "07/20/2025",
		EndDate:     "07/19/2025",
		Itinerary: []entities.Day{
			{Date: "07/20/2025", Activities: []entities.Activity{{Name: "", Time: "9:00 AM"}}},
		},
	}

	verrs := validationErrors(t, v.Validate(trip))
	messages := verrs.Messages()

	assert.GreaterOrEqual(t, len(messages), 3)
	assert.Contains(t, messages, "Destination is required.")
	assert.Contains(t, messages, "End date must not be before start date.")
	assert.Contains(t, messages, "Day 07/20/2025: activity 1 needs a name.")

	fields := verrs.ToMap()
	assert.Contains(t, fields, "destination")
	assert.Contains(t, fields, "endDate")
	assert.Contains(t, fields, "itinerary[0].activities[0].name")
}

func TestTripValidator_Fields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entities.Trip)
		field   string
		message string
	}{
		{
			name:    "whitespace destination",
			mutate:  func(tr *entities.Trip) { tr.Destination = "   " },
			field:   "destination",
			message: "Destination is required.",
		},
		{
			name:    "missing start date",
			mutate:  func(tr *entities.Trip) { tr.StartDate = "" },
			field:   "startDate",
			message: "Start date is required.",
		},
		{
			name:    "unparseable end date",
			mutate:  func(tr *entities.Trip) { tr.EndDate = "2025-07-21" },
			field:   "endDate",
			message: `End date "2025-07-21" is not a valid MM/DD/YYYY date.`,
		},
		{
			name:    "blank activity time",
			mutate:  func(tr *entities.Trip) { tr.Itinerary[0].Activities[0].Time = " " },
			field:   "itinerary[0].activities[0].time",
			message: "Day 07/20/2025: activity 1 needs a time.",
		},
		{
			name:    "malformed activity time",
			mutate:  func(tr *entities.Trip) { tr.Itinerary[0].Activities[0].Time = "9am" },
			field:   "itinerary[0].activities[0].time",
			message: `Day 07/20/2025: activity 1 time "9am" is not a valid h:mm AM/PM time.`,
		},
		{
			name:    "non-http photo url",
			mutate:  func(tr *entities.Trip) { tr.Itinerary[1].PhotoURLs = []string{"ftp://example.com/a.jpg"} },
			field:   "itinerary[1].photoUrls[0]",
			message: "Day 07/21/2025: photo 1 must be a valid URL.",
		},
		{
			name:    "missing id",
			mutate:  func(tr *entities.Trip) { tr.ID = "" },
			field:   "id",
			message: "Trip id is required.",
		},
	}

	v := validators.NewTripValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trip := validTrip()
			tt.mutate(trip)

			verrs := validationErrors(t, v.Validate(trip))
			require.Len(t, verrs.Errors, 1)
			assert.Equal(t, []string{tt.message}, verrs.ToMap()[tt.field])
		})
	}
}

func TestTripValidator_TimeFormatIsSeparateErrorClass(t *testing.T) {
	trip := validTrip()
	trip.Itinerary[0].Activities[0].Time = "25:00"

	verrs := validationErrors(t, validators.NewTripValidator(nil).Validate(trip))
	require.Len(t, verrs.Errors, 1)
	assert.True(t, errors.Is(verrs.Errors[0], pkgerrors.ErrInvalidTimeFormat))
}

func TestTripValidator_Limits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxTripDays = 2
	cfg.MaxActivitiesPerDay = 1
	v := validators.NewTripValidator(cfg)

	trip := validTrip()
	trip.EndDate = "07/22/2025"
	trip.Itinerary[0].Activities = append(trip.Itinerary[0].Activities,
		entities.Activity{Time: "1:00 PM", Name: "Lunch"})

	verrs := validationErrors(t, v.Validate(trip))
	assert.Contains(t, verrs.Messages(), "Trip cannot be longer than 2 days.")
	assert.Contains(t, verrs.Messages(), "Day 07/20/2025 has more than 1 activities.")
}

func TestTripValidator_NeedsConfirmation(t *testing.T) {
	v := validators.NewTripValidator(nil)

	trip := validTrip()
	assert.False(t, v.NeedsConfirmation(trip))

	trip.Itinerary[0].Activities = nil
	assert.True(t, v.NeedsConfirmation(trip))
	assert.NoError(t, v.Validate(trip), "empty itinerary is not a data error")
}

package itinerary_test

import (
	"errors"
	"testing"

	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/itinerary"
	"triptrek-backend/domain/core/valueobjects"
	pkgerrors "triptrek-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) valueobjects.CalendarDate {
	return valueobjects.MustParseCalendarDate(s)
}

func mustExpand(t *testing.T, start, end string) []valueobjects.CalendarDate {
	t.Helper()
	dates, err := itinerary.ExpandDisplayRange(start, end)
	require.NoError(t, err)
	return dates
}

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{
			name:  "single day",
			start: "07/20/2025",
			end:   "07/20/2025",
			want:  []string{"07/20/2025"},
		},
		{
			name:  "three days",
			start: "07/20/2025",
			end:   "07/22/2025",
			want:  []string{"07/20/2025", "07/21/2025", "07/22/2025"},
		},
		{
			name:  "across month and leap day",
			start: "02/28/2024",
			end:   "03/01/2024",
			want:  []string{"02/28/2024", "02/29/2024", "03/01/2024"},
		},
		{
			name:  "across year",
			start: "12/31/2025",
			end:   "01/01/2026",
			want:  []string{"12/31/2025", "01/01/2026"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := itinerary.ExpandRange(date(tt.start), date(tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.want, itinerary.FormatDates(dates))
		})
	}
}

func TestExpandRange_LengthAndOrder(t *testing.T) {
	start := date("01/15/2025")
	for span := 0; span < 60; span += 7 {
		end := start.AddDays(span)
		dates, err := itinerary.ExpandRange(start, end)
		require.NoError(t, err)

		require.Len(t, dates, start.DaysUntil(end)+1)
		assert.True(t, dates[0].Equal(start))
		assert.True(t, dates[len(dates)-1].Equal(end))
		for i := 1; i < len(dates); i++ {
			assert.True(t, dates[i-1].Before(dates[i]))
		}
	}
}

func TestExpandRange_InvalidRange(t *testing.T) {
	_, err := itinerary.ExpandRange(date("07/22/2025"), date("07/20/2025"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidDateRange))

	_, err = itinerary.ExpandDisplayRange("07/20/2025", "not a date")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidDate))
}

func TestReconcile_SortsAndFillsGaps(t *testing.T) {
	prior := []entities.Day{
		{
			Date: "07/20/2025",
			Activities: []entities.Activity{
				{Time: "2:00 PM", Name: "Lunch"},
				{Time: "9:00 AM", Name: "Breakfast"},
			},
		},
	}

	got, err := itinerary.Reconcile(mustExpand(t, "07/20/2025", "07/21/2025"), prior)
	require.NoError(t, err)

	want := []entities.Day{
		{
			Date: "07/20/2025",
			Activities: []entities.Activity{
				{Time: "9:00 AM", Name: "Breakfast"},
				{Time: "2:00 PM", Name: "Lunch"},
			},
		},
		{Date: "07/21/2025", Activities: []entities.Activity{}},
	}
	assert.Equal(t, want, got)

	// input untouched
	assert.Equal(t, "Lunch", prior[0].Activities[0].Name)
}

func TestReconcile_ShrinkDropsDays(t *testing.T) {
	prior := []entities.Day{
		{Date: "07/20/2025", Activities: []entities.Activity{{Time: "9:00 AM", Name: "Museum"}}},
		{Date: "07/21/2025", Activities: []entities.Activity{}},
		{Date: "07/22/2025", Activities: []entities.Activity{{Time: "8:00 PM", Name: "Concert"}}},
	}
	dates := mustExpand(t, "07/20/2025", "07/21/2025")

	got, err := itinerary.Reconcile(dates, prior)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, day := range got {
		assert.NotEqual(t, "07/22/2025", day.Date)
		for _, a := range day.Activities {
			assert.NotEqual(t, "Concert", a.Name)
		}
	}
	assert.Equal(t, []string{"07/22/2025"}, itinerary.DroppedDates(dates, prior))
}

func TestReconcile_Properties(t *testing.T) {
	prior := []entities.Day{
		{Date: "03/02/2025", Activities: []entities.Activity{
			{Time: "11:00 PM", Name: "Night walk"},
			{Time: "12:00 AM", Name: "Midnight snack"},
			{Time: "12:00 PM", Name: "Noon tour"},
		}},
		{Date: "02/27/2025", Activities: []entities.Activity{{Time: "10:00 AM", Name: "Out of range"}}},
		{Date: "3/4/2025", Activities: []entities.Activity{
			{Time: "9:00 AM", Name: "First"},
			{Time: "9:00 AM", Name: "Second"},
			{Time: "8:30 AM", Name: "Earlier"},
		}},
		{Date: "garbage", Activities: []entities.Activity{{Time: "1:00 PM", Name: "Lost"}}},
	}
	dates := mustExpand(t, "03/01/2025", "03/05/2025")

	got, err := itinerary.Reconcile(dates, prior)
	require.NoError(t, err)

	// exactly the range, in order
	require.Len(t, got, len(dates))
	for i, d := range dates {
		assert.Equal(t, d.String(), got[i].Date)
	}

	// carried-over days keep their members, sorted
	assert.Equal(t, []entities.Activity{
		{Time: "12:00 AM", Name: "Midnight snack"},
		{Time: "12:00 PM", Name: "Noon tour"},
		{Time: "11:00 PM", Name: "Night walk"},
	}, got[1].Activities)

	// stable for equal keys; single-digit prior dates are matched
	assert.Equal(t, []entities.Activity{
		{Time: "8:30 AM", Name: "Earlier"},
		{Time: "9:00 AM", Name: "First"},
		{Time: "9:00 AM", Name: "Second"},
	}, got[3].Activities)

	assert.Empty(t, got[0].Activities)
	assert.NotNil(t, got[0].Activities)

	// idempotent
	again, err := itinerary.Reconcile(dates, got)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestReconcile_DuplicatePriorDatesLastWins(t *testing.T) {
	prior := []entities.Day{
		{Date: "07/20/2025", Activities: []entities.Activity{{Time: "9:00 AM", Name: "Old"}}},
		{Date: "07/20/2025", Activities: []entities.Activity{{Time: "10:00 AM", Name: "New"}}},
	}

	got, err := itinerary.Reconcile(mustExpand(t, "07/20/2025", "07/20/2025"), prior)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []entities.Activity{{Time: "10:00 AM", Name: "New"}}, got[0].Activities)
}

func TestReconcile_InvalidTimeFailsWhole(t *testing.T) {
	prior := []entities.Day{
		{Date: "07/20/2025", Activities: []entities.Activity{{Time: "9:00 AM", Name: "Fine"}}},
		{Date: "07/21/2025", Activities: []entities.Activity{{Time: "noonish", Name: "Broken"}}},
	}

	got, err := itinerary.Reconcile(mustExpand(t, "07/20/2025", "07/21/2025"), prior)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidTimeFormat))
	assert.Contains(t, err.Error(), "07/21/2025")
}

func TestReconcile_InvalidTimeOutOfRangeIsIgnored(t *testing.T) {
	prior := []entities.Day{
		{Date: "07/25/2025", Activities: []entities.Activity{{Time: "noonish", Name: "Dropped anyway"}}},
	}

	got, err := itinerary.Reconcile(mustExpand(t, "07/20/2025", "07/20/2025"), prior)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReschedule(t *testing.T) {
	trip := &entities.Trip{
		ID:          "trip-1",
		Destination: "Lisbon",
		StartDate:   "07/20/2025",
		EndDate:     "07/22/2025",
		Itinerary: []entities.Day{
			{Date: "07/20/2025", Activities: []entities.Activity{}},
			{Date: "07/21/2025", Activities: []entities.Activity{}},
			{Date: "07/22/2025", Activities: []entities.Activity{{Time: "8:00 PM", Name: "Fado"}}},
		},
	}

	dropped, err := itinerary.Reschedule(trip, "07/19/2025", "07/21/2025")
	require.NoError(t, err)
	assert.Equal(t, []string{"07/22/2025"}, dropped)
	assert.Equal(t, []string{"07/19/2025", "07/20/2025", "07/21/2025"}, trip.Dates())
	assert.Equal(t, "07/19/2025", trip.StartDate)

	_, err = itinerary.Reschedule(trip, "07/25/2025", "07/21/2025")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidDateRange))
	assert.Equal(t, "07/19/2025", trip.StartDate, "trip must be untouched on error")
	assert.Len(t, trip.Itinerary, 3)
}

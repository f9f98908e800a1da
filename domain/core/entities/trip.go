package entities

import (
	"fmt"
	"sort"
	"strings"

	"triptrek-backend/domain/core/valueobjects"
	pkgerrors "triptrek-backend/pkg/errors"
)

// Trip is a user's planned journey: a destination, an inclusive date range
// and one itinerary Day per calendar date in that range.
//
// Dates are kept in their MM/DD/YYYY display form so that records which fail
// validation can still be decoded and reported on.
type Trip struct {
	ID          string   `json:"id"`
	OwnerID     string   `json:"ownerId,omitempty"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Itinerary   []Day    `json:"itinerary"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	MapData     *MapData `json:"mapData,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// Day is one calendar date's worth of activities, ordered by time of day.
type Day struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
	PhotoURLs  []string   `json:"photoUrls,omitempty"`
}

// Activity is a single named, timed event. It has no identity outside its
// position in the owning Day.
type Activity struct {
	Time string `json:"time"`
	Name string `json:"name"`
}

// LatLng is a geographic coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Viewport is the bounding box a map should fit
type Viewport struct {
	Northeast LatLng `json:"northeast"`
	Southwest LatLng `json:"southwest"`
}

// MapData caches the geocoded center and viewport for the destination
type MapData struct {
	Coords LatLng   `json:"coords"`
	Bounds Viewport `json:"bounds"`
}

// StartCalendarDate parses StartDate
func (t *Trip) StartCalendarDate() (valueobjects.CalendarDate, error) {
	return valueobjects.ParseCalendarDate(t.StartDate)
}

// EndCalendarDate parses EndDate
func (t *Trip) EndCalendarDate() (valueobjects.CalendarDate, error) {
	return valueobjects.ParseCalendarDate(t.EndDate)
}

// ChangeDestination sets a new destination and reports whether it changed.
// The cached map geometry belongs to the old destination and is dropped.
func (t *Trip) ChangeDestination(destination string) bool {
	if strings.TrimSpace(destination) == strings.TrimSpace(t.Destination) {
		return false
	}
	t.Destination = destination
	t.MapData = nil
	return true
}

// DayByDate returns the itinerary day for a display date
func (t *Trip) DayByDate(date string) (*Day, bool) {
	for i := range t.Itinerary {
		if t.Itinerary[i].Date == date {
			return &t.Itinerary[i], true
		}
	}
	return nil, false
}

// AddActivity appends an activity to the given day and keeps the day sorted
func (t *Trip) AddActivity(date string, activity Activity) error {
	day, ok := t.DayByDate(date)
	if !ok {
		return pkgerrors.ErrInvalidDate.
			Derive(fmt.Sprintf("trip has no itinerary day %s", date)).
			WithDetail("value", date)
	}
	day.Activities = append(day.Activities, activity)
	return day.SortActivities()
}

// RemoveActivity removes the activity at index from the given day
func (t *Trip) RemoveActivity(date string, index int) error {
	day, ok := t.DayByDate(date)
	if !ok {
		return pkgerrors.ErrInvalidDate.
			Derive(fmt.Sprintf("trip has no itinerary day %s", date)).
			WithDetail("value", date)
	}
	if index < 0 || index >= len(day.Activities) {
		return pkgerrors.NewValidationError(fmt.Sprintf("activity index %d out of range for %s", index, date))
	}
	activities := make([]Activity, 0, len(day.Activities)-1)
	activities = append(activities, day.Activities[:index]...)
	day.Activities = append(activities, day.Activities[index+1:]...)
	return nil
}

// HasActivities reports whether any day has at least one activity
func (t *Trip) HasActivities() bool {
	for _, day := range t.Itinerary {
		if len(day.Activities) > 0 {
			return true
		}
	}
	return false
}

// Dates returns the itinerary dates in order
func (t *Trip) Dates() []string {
	dates := make([]string, len(t.Itinerary))
	for i, day := range t.Itinerary {
		dates[i] = day.Date
	}
	return dates
}

// Clone returns a deep copy so callers can edit without aliasing
func (t *Trip) Clone() *Trip {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Itinerary = CloneDays(t.Itinerary)
	if t.MapData != nil {
		md := *t.MapData
		clone.MapData = &md
	}
	return &clone
}

// SortActivities orders the day's activities by their 24-hour key.
// The sort is stable, so activities sharing a time keep their input order.
func (d *Day) SortActivities() error {
	keys := make([]string, len(d.Activities))
	for i, activity := range d.Activities {
		key, err := valueobjects.To24Hour(activity.Time)
		if err != nil {
			return err
		}
		keys[i] = key
	}

	idx := make([]int, len(d.Activities))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})

	sorted := make([]Activity, len(d.Activities))
	for i, j := range idx {
		sorted[i] = d.Activities[j]
	}
	d.Activities = sorted
	return nil
}

// Clone returns a deep copy of the day
func (d Day) Clone() Day {
	clone := Day{Date: d.Date, Activities: make([]Activity, len(d.Activities))}
	copy(clone.Activities, d.Activities)
	if d.PhotoURLs != nil {
		clone.PhotoURLs = make([]string, len(d.PhotoURLs))
		copy(clone.PhotoURLs, d.PhotoURLs)
	}
	return clone
}

// CloneDays deep-copies a day list
func CloneDays(days []Day) []Day {
	if days == nil {
		return nil
	}
	out := make([]Day, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}

package queries

import (
	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/errors"
)

// GetTripQuery represents a query to get a single trip
type GetTripQuery struct {
	TripID  string
	OwnerID string
}

// Validate validates the GetTripQuery
func (q GetTripQuery) Validate() error {
	if q.TripID == "" {
		return errors.NewValidationError("trip ID is required")
	}
	return nil
}

// CacheKey implements bus.Cacheable
func (q GetTripQuery) CacheKey() string {
	return ports.TripCacheKey(q.OwnerID, q.TripID)
}

// ListTripsQuery lists every stored trip
type ListTripsQuery struct{}

// Validate validates the ListTripsQuery
func (q ListTripsQuery) Validate() error {
	return nil
}

// ListTripsByOwnerQuery lists the trips of one user
type ListTripsByOwnerQuery struct {
	OwnerID string
}

// Validate validates the ListTripsByOwnerQuery
func (q ListTripsByOwnerQuery) Validate() error {
	if q.OwnerID == "" {
		return errors.NewValidationError("owner ID is required")
	}
	return nil
}

// ListTripsResult represents the result of listing trips
type ListTripsResult struct {
	Trips []*entities.Trip `json:"trips"`
	Count int              `json:"count"`
}

// PreviewItineraryQuery reconciles an itinerary against new bounds without
// persisting anything
type PreviewItineraryQuery struct {
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
	Itinerary []entities.Day `json:"itinerary"`
}

// Validate validates the PreviewItineraryQuery
func (q PreviewItineraryQuery) Validate() error {
	if q.StartDate == "" || q.EndDate == "" {
		return errors.NewValidationError("startDate and endDate are required")
	}
	return nil
}

// PreviewItineraryResult is the reconciled itinerary
type PreviewItineraryResult struct {
	Dates       []string       `json:"dates"`
	Itinerary   []entities.Day `json:"itinerary"`
	DroppedDays []string       `json:"droppedDays"`
	DayCount    int            `json:"dayCount"`
}

// ValidateTripQuery runs the record checks on a trip without saving it
type ValidateTripQuery struct {
	Trip entities.Trip
}

// Validate validates the ValidateTripQuery
func (q ValidateTripQuery) Validate() error {
	return nil
}

// ValidateTripResult reports every violation found on a trip
type ValidateTripResult struct {
	Valid             bool                `json:"valid"`
	Errors            []string            `json:"errors"`
	Fields            map[string][]string `json:"fields,omitempty"`
	NeedsConfirmation bool                `json:"needsConfirmation"`
}

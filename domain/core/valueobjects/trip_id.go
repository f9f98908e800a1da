package valueobjects

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// TripID identifies a trip. It is opaque: ids minted here are UUIDs, but ids
// created by older clients are accepted as-is.
type TripID struct {
	value string
}

// NewTripID creates a new random TripID
func NewTripID() TripID {
	return TripID{value: uuid.New().String()}
}

// NewTripIDFromString wraps an existing identifier
func NewTripIDFromString(id string) (TripID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TripID{}, errors.New("trip ID cannot be empty")
	}
	if strings.ContainsAny(id, "#/") {
		return TripID{}, errors.New("trip ID cannot contain '#' or '/'")
	}
	return TripID{value: id}, nil
}

// String returns the string representation of the TripID
func (id TripID) String() string {
	return id.value
}

// Equals checks if two TripIDs are equal
func (id TripID) Equals(other TripID) bool {
	return id.value == other.value
}

// IsZero checks if the TripID is the zero value
func (id TripID) IsZero() bool {
	return id.value == ""
}

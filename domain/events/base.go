package events

import (
	"time"
)

// SourceBackend is the EventBridge source for every event this service emits
const SourceBackend = "triptrek.backend"

// Event types
const (
	TypeTripCreated          = "trip.created"
	TypeTripUpdated          = "trip.updated"
	TypeTripAttributeChanged = "trip.attribute_changed"
	TypeTripDeleted          = "trip.deleted"
	TypeTripImageAttached    = "trip.image_attached"
	TypeImageUploaded        = "image.uploaded"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Trip Events

// TripCreated is raised when a trip is first persisted
type TripCreated struct {
	BaseEvent
	TripID      string `json:"trip_id"`
	OwnerID     string `json:"owner_id,omitempty"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	DayCount    int    `json:"day_count"`
}

// NewTripCreated creates a TripCreated event
func NewTripCreated(tripID, ownerID, destination, startDate, endDate string, dayCount int, timestamp time.Time) TripCreated {
	return TripCreated{
		BaseEvent:   newBase(tripID, TypeTripCreated, timestamp),
		TripID:      tripID,
		OwnerID:     ownerID,
		Destination: destination,
		StartDate:   startDate,
		EndDate:     endDate,
		DayCount:    dayCount,
	}
}

// TripUpdated is raised when an edited trip is saved as a whole.
// DroppedDays lists the dates that fell out of the new range together with
// their activities.
type TripUpdated struct {
	BaseEvent
	TripID             string   `json:"trip_id"`
	OwnerID            string   `json:"owner_id,omitempty"`
	DestinationChanged bool     `json:"destination_changed"`
	DroppedDays        []string `json:"dropped_days,omitempty"`
}

// NewTripUpdated creates a TripUpdated event
func NewTripUpdated(tripID, ownerID string, destinationChanged bool, droppedDays []string, timestamp time.Time) TripUpdated {
	return TripUpdated{
		BaseEvent:          newBase(tripID, TypeTripUpdated, timestamp),
		TripID:             tripID,
		OwnerID:            ownerID,
		DestinationChanged: destinationChanged,
		DroppedDays:        droppedDays,
	}
}

// TripAttributeChanged is raised by attribute-level patches
type TripAttributeChanged struct {
	BaseEvent
	TripID    string `json:"trip_id"`
	Attribute string `json:"attribute"`
}

// NewTripAttributeChanged creates a TripAttributeChanged event
func NewTripAttributeChanged(tripID, attribute string, timestamp time.Time) TripAttributeChanged {
	return TripAttributeChanged{
		BaseEvent: newBase(tripID, TypeTripAttributeChanged, timestamp),
		TripID:    tripID,
		Attribute: attribute,
	}
}

// TripDeleted is raised when a trip record is removed
type TripDeleted struct {
	BaseEvent
	TripID      string `json:"trip_id"`
	OwnerID     string `json:"owner_id,omitempty"`
	Destination string `json:"destination"`
}

// NewTripDeleted creates a TripDeleted event
func NewTripDeleted(tripID, ownerID, destination string, timestamp time.Time) TripDeleted {
	return TripDeleted{
		BaseEvent:   newBase(tripID, TypeTripDeleted, timestamp),
		TripID:      tripID,
		OwnerID:     ownerID,
		Destination: destination,
	}
}

// TripImageAttached is raised when a cover image URL is set on a trip
type TripImageAttached struct {
	BaseEvent
	TripID   string `json:"trip_id"`
	ImageURL string `json:"image_url"`
}

// NewTripImageAttached creates a TripImageAttached event
func NewTripImageAttached(tripID, imageURL string, timestamp time.Time) TripImageAttached {
	return TripImageAttached{
		BaseEvent: newBase(tripID, TypeTripImageAttached, timestamp),
		TripID:    tripID,
		ImageURL:  imageURL,
	}
}

// ImageUploaded is raised when image metadata is recorded for a location
type ImageUploaded struct {
	BaseEvent
	LocationName string `json:"location_name"`
	ImageID      string `json:"image_id"`
	ImageURL     string `json:"image_url"`
}

// NewImageUploaded creates an ImageUploaded event
func NewImageUploaded(locationName, imageID, imageURL string, timestamp time.Time) ImageUploaded {
	return ImageUploaded{
		BaseEvent:    newBase(locationName, TypeImageUploaded, timestamp),
		LocationName: locationName,
		ImageID:      imageID,
		ImageURL:     imageURL,
	}
}

// Package memory holds in-process repositories for local development and
// tests. They follow the single key scheme: a trip is addressed by its id.
package memory

import (
	"context"
	"sync"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/errors"
)

// TripRepository is a map-backed ports.TripRepository
type TripRepository struct {
	mu    sync.RWMutex
	trips map[string]*entities.Trip
	order []string
}

// NewTripRepository creates an empty repository
func NewTripRepository() *TripRepository {
	return &TripRepository{trips: make(map[string]*entities.Trip)}
}

var _ ports.TripRepository = (*TripRepository)(nil)

// Create persists a new trip
func (r *TripRepository) Create(ctx context.Context, trip *entities.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trips[trip.ID]; exists {
		return errors.ErrTripAlreadyExists.WithDetail("tripId", trip.ID)
	}
	r.trips[trip.ID] = trip.Clone()
	r.order = append(r.order, trip.ID)
	return nil
}

// Save replaces an existing trip
func (r *TripRepository) Save(ctx context.Context, trip *entities.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trips[trip.ID]; !exists {
		return errors.ErrTripNotFound.WithDetail("tripId", trip.ID)
	}
	r.trips[trip.ID] = trip.Clone()
	return nil
}

// GetByID retrieves a trip
func (r *TripRepository) GetByID(ctx context.Context, key ports.TripKey) (*entities.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trip, ok := r.trips[key.TripID]
	if !ok {
		return nil, errors.ErrTripNotFound.WithDetail("tripId", key.TripID)
	}
	return trip.Clone(), nil
}

// ListAll returns every trip in insertion order
func (r *TripRepository) ListAll(ctx context.Context) ([]*entities.Trip, error) {
	return r.list(func(*entities.Trip) bool { return true }), nil
}

// ListByOwner returns the trips of one owner
func (r *TripRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Trip, error) {
	return r.list(func(t *entities.Trip) bool { return t.OwnerID == ownerID }), nil
}

func (r *TripRepository) list(keep func(*entities.Trip) bool) []*entities.Trip {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trips := make([]*entities.Trip, 0, len(r.order))
	for _, id := range r.order {
		if trip, ok := r.trips[id]; ok && keep(trip) {
			trips = append(trips, trip.Clone())
		}
	}
	return trips
}

// UpdateAttributes sets top-level attributes; nil removes one
func (r *TripRepository) UpdateAttributes(ctx context.Context, key ports.TripKey, attributes map[string]interface{}) (map[string]interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[key.TripID]
	if !ok {
		return nil, errors.ErrTripNotFound.WithDetail("tripId", key.TripID)
	}

	updated := trip.Clone()
	for name, value := range attributes {
		if err := setAttribute(updated, name, value); err != nil {
			return nil, err
		}
	}
	r.trips[key.TripID] = updated

	result := make(map[string]interface{}, len(attributes))
	for name, value := range attributes {
		if value != nil {
			result[name] = value
		}
	}
	return result, nil
}

func setAttribute(trip *entities.Trip, name string, value interface{}) error {
	str, _ := value.(string)
	switch name {
	case "destination":
		trip.Destination = str
	case "startDate":
		trip.StartDate = str
	case "endDate":
		trip.EndDate = str
	case "imageUrl":
		trip.ImageURL = str
	case "updatedAt":
		trip.UpdatedAt = str
	case "itinerary":
		days, _ := value.([]entities.Day)
		trip.Itinerary = entities.CloneDays(days)
	case "mapData":
		switch v := value.(type) {
		case *entities.MapData:
			trip.MapData = v
		case entities.MapData:
			trip.MapData = &v
		default:
			trip.MapData = nil
		}
	default:
		return errors.ErrUnsupportedAttribute.WithDetail("attribute", name)
	}
	return nil
}

// Delete removes a trip and returns it
func (r *TripRepository) Delete(ctx context.Context, key ports.TripKey) (*entities.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trip, ok := r.trips[key.TripID]
	if !ok {
		return nil, errors.ErrTripNotFound.WithDetail("tripId", key.TripID)
	}
	delete(r.trips, key.TripID)
	for i, id := range r.order {
		if id == key.TripID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return trip, nil
}

package handlers

import (
	"context"
	"fmt"
	"sort"

	"triptrek-backend/application/ports"
	"triptrek-backend/application/queries"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/valueobjects"
	"triptrek-backend/pkg/errors"

	"go.uber.org/zap"
)

// GetTripHandler handles single trip lookups
type GetTripHandler struct {
	repo   ports.TripRepository
	logger *zap.Logger
}

// NewGetTripHandler creates a new get trip handler
func NewGetTripHandler(repo ports.TripRepository, logger *zap.Logger) *GetTripHandler {
	return &GetTripHandler{repo: repo, logger: logger}
}

// Handle executes the get trip query
func (h *GetTripHandler) Handle(ctx context.Context, query queries.GetTripQuery) (*entities.Trip, error) {
	trip, err := h.repo.GetByID(ctx, ports.TripKey{OwnerID: query.OwnerID, TripID: query.TripID})
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	// Trips owned by someone else are reported as missing
	if query.OwnerID != "" && trip.OwnerID != "" && trip.OwnerID != query.OwnerID {
		h.logger.Debug("Trip lookup by non-owner",
			zap.String("tripID", query.TripID),
			zap.String("ownerID", query.OwnerID),
		)
		return nil, errors.ErrTripNotFound.WithDetail("tripId", query.TripID)
	}

	return trip, nil
}

// ListTripsHandler handles trip listings
type ListTripsHandler struct {
	repo   ports.TripRepository
	logger *zap.Logger
}

// NewListTripsHandler creates a new list trips handler
func NewListTripsHandler(repo ports.TripRepository, logger *zap.Logger) *ListTripsHandler {
	return &ListTripsHandler{repo: repo, logger: logger}
}

// HandleAll lists every trip in the store
func (h *ListTripsHandler) HandleAll(ctx context.Context, query queries.ListTripsQuery) (*queries.ListTripsResult, error) {
	trips, err := h.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return newListTripsResult(trips), nil
}

// HandleByOwner lists the trips belonging to one user
func (h *ListTripsHandler) HandleByOwner(ctx context.Context, query queries.ListTripsByOwnerQuery) (*queries.ListTripsResult, error) {
	trips, err := h.repo.ListByOwner(ctx, query.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	h.logger.Debug("Listed trips",
		zap.String("ownerID", query.OwnerID),
		zap.Int("count", len(trips)),
	)
	return newListTripsResult(trips), nil
}

// newListTripsResult orders trips by start date, soonest first. Trips whose
// start date does not parse sort last, and ties fall back to the id.
func newListTripsResult(trips []*entities.Trip) *queries.ListTripsResult {
	if trips == nil {
		trips = []*entities.Trip{}
	}

	type keyed struct {
		trip  *entities.Trip
		start valueobjects.CalendarDate
		ok    bool
	}
	items := make([]keyed, len(trips))
	for i, t := range trips {
		start, err := valueobjects.ParseCalendarDate(t.StartDate)
		items[i] = keyed{trip: t, start: start, ok: err == nil}
	}

	sort.SliceStable(items, func(a, b int) bool {
		x, y := items[a], items[b]
		if x.ok != y.ok {
			return x.ok
		}
		if x.ok {
			if c := x.start.Compare(y.start); c != 0 {
				return c < 0
			}
		}
		return x.trip.ID < y.trip.ID
	})

	sorted := make([]*entities.Trip, len(items))
	for i, item := range items {
		sorted[i] = item.trip
	}
	return &queries.ListTripsResult{Trips: sorted, Count: len(sorted)}
}

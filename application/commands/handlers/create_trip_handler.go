package handlers

import (
	"context"
	"fmt"
	"time"

	"triptrek-backend/application/commands"
	"triptrek-backend/domain/core/valueobjects"
	"triptrek-backend/domain/events"

	"go.uber.org/zap"
)

// CreateTripHandler handles trip creation commands
type CreateTripHandler struct {
	*TripWriter
}

// NewCreateTripHandler creates a new create trip handler
func NewCreateTripHandler(writer *TripWriter) *CreateTripHandler {
	return &CreateTripHandler{TripWriter: writer}
}

// Handle executes the create trip command
func (h *CreateTripHandler) Handle(ctx context.Context, cmd commands.CreateTripCommand) (err error) {
	started := time.Now()
	defer func() { h.record(ctx, "CreateTrip", started, err) }()

	if _, err := valueobjects.NewTripIDFromString(cmd.Trip.ID); err != nil {
		return fmt.Errorf("invalid trip ID: %w", err)
	}

	trip := cmd.Trip.Clone()
	if cmd.OwnerID != "" {
		trip.OwnerID = cmd.OwnerID
	}

	dropped, err := h.prepare(trip, cmd.ConfirmEmpty)
	if err != nil {
		return err
	}

	stamp := h.timestamp()
	trip.CreatedAt = stamp
	trip.UpdatedAt = stamp

	if err := h.repo.Create(ctx, trip); err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	h.evict(ctx, trip)

	h.publish(ctx, events.NewTripCreated(
		trip.ID,
		trip.OwnerID,
		trip.Destination,
		trip.StartDate,
		trip.EndDate,
		len(trip.Itinerary),
		h.now(),
	))
	h.metrics.RecordTripDays(ctx, "create", len(trip.Itinerary))

	h.logger.Info("Trip created",
		zap.String("tripID", trip.ID),
		zap.String("ownerID", trip.OwnerID),
		zap.Int("days", len(trip.Itinerary)),
		zap.Strings("droppedDays", dropped),
	)

	return nil
}

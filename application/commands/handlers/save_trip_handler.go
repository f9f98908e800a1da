package handlers

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"triptrek-backend/application/commands"
	"triptrek-backend/domain/events"

	"go.uber.org/zap"
)

// SaveTripHandler replaces an existing trip with the edited version
type SaveTripHandler struct {
	*TripWriter
}

// NewSaveTripHandler creates a new save trip handler
func NewSaveTripHandler(writer *TripWriter) *SaveTripHandler {
	return &SaveTripHandler{TripWriter: writer}
}

// Handle executes the save trip command
func (h *SaveTripHandler) Handle(ctx context.Context, cmd commands.SaveTripCommand) (err error) {
	started := time.Now()
	defer func() { h.record(ctx, "SaveTrip", started, err) }()

	existing, err := h.load(ctx, cmd.Trip.ID, cmd.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to get trip: %w", err)
	}

	trip := cmd.Trip.Clone()
	trip.OwnerID = existing.OwnerID
	trip.CreatedAt = existing.CreatedAt

	destinationChanged := strings.TrimSpace(trip.Destination) != strings.TrimSpace(existing.Destination)
	if destinationChanged && reflect.DeepEqual(trip.MapData, existing.MapData) {
		// Geometry still describes the old destination
		trip.MapData = nil
	}

	dropped, err := h.prepare(trip, cmd.ConfirmEmpty)
	if err != nil {
		return err
	}
	trip.UpdatedAt = h.timestamp()

	if err := h.repo.Save(ctx, trip); err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	h.evict(ctx, trip)

	h.publish(ctx, events.NewTripUpdated(trip.ID, trip.OwnerID, destinationChanged, dropped, h.now()))
	h.metrics.RecordTripDays(ctx, "save", len(trip.Itinerary))

	h.logger.Info("Trip saved",
		zap.String("tripID", trip.ID),
		zap.Bool("destinationChanged", destinationChanged),
		zap.Strings("droppedDays", dropped),
	)

	return nil
}

package handlers

import (
	"context"
	"fmt"
	"time"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/ports"
	"triptrek-backend/domain/events"

	"go.uber.org/zap"
)

// DeleteTripHandler handles trip deletion commands
type DeleteTripHandler struct {
	*TripWriter
}

// NewDeleteTripHandler creates a new delete trip handler
func NewDeleteTripHandler(writer *TripWriter) *DeleteTripHandler {
	return &DeleteTripHandler{TripWriter: writer}
}

// Handle executes the delete trip command
func (h *DeleteTripHandler) Handle(ctx context.Context, cmd commands.DeleteTripCommand) (err error) {
	started := time.Now()
	defer func() { h.record(ctx, "DeleteTrip", started, err) }()

	existing, err := h.load(ctx, cmd.TripID, cmd.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to get trip: %w", err)
	}

	deleted, err := h.repo.Delete(ctx, ports.TripKey{OwnerID: existing.OwnerID, TripID: existing.ID})
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	h.evict(ctx, deleted)

	h.publish(ctx, events.NewTripDeleted(deleted.ID, deleted.OwnerID, deleted.Destination, h.now()))

	h.logger.Info("Trip deleted",
		zap.String("tripID", deleted.ID),
		zap.String("ownerID", deleted.OwnerID),
	)

	return nil
}

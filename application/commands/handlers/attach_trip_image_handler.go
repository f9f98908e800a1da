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

// AttachTripImageHandler points a trip's cover image at an uploaded object
type AttachTripImageHandler struct {
	*TripWriter
}

// NewAttachTripImageHandler creates a new attach image handler
func NewAttachTripImageHandler(writer *TripWriter) *AttachTripImageHandler {
	return &AttachTripImageHandler{TripWriter: writer}
}

// Handle executes the attach image command
func (h *AttachTripImageHandler) Handle(ctx context.Context, cmd commands.AttachTripImageCommand) (err error) {
	started := time.Now()
	defer func() { h.record(ctx, "AttachTripImage", started, err) }()

	existing, err := h.load(ctx, cmd.TripID, cmd.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to get trip: %w", err)
	}

	key := ports.TripKey{OwnerID: existing.OwnerID, TripID: existing.ID}
	attributes := map[string]interface{}{
		"imageUrl":  cmd.ImageURL,
		"updatedAt": h.timestamp(),
	}
	if _, err := h.repo.UpdateAttributes(ctx, key, attributes); err != nil {
		return fmt.Errorf("failed to attach image: %w", err)
	}
	h.evict(ctx, existing)

	h.publish(ctx, events.NewTripImageAttached(existing.ID, cmd.ImageURL, h.now()))

	h.logger.Info("Trip image attached",
		zap.String("tripID", existing.ID),
		zap.String("imageURL", cmd.ImageURL),
	)

	return nil
}

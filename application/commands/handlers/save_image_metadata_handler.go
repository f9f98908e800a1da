package handlers

import (
	"context"
	"fmt"
	"time"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/events"

	"go.uber.org/zap"
)

// SaveImageMetadataHandler records uploaded location images
type SaveImageMetadataHandler struct {
	repo     ports.ImageRepository
	eventBus ports.EventBus
	logger   *zap.Logger
	now      func() time.Time
}

// NewSaveImageMetadataHandler creates a new image metadata handler
func NewSaveImageMetadataHandler(repo ports.ImageRepository, eventBus ports.EventBus, logger *zap.Logger) *SaveImageMetadataHandler {
	return &SaveImageMetadataHandler{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the save image metadata command
func (h *SaveImageMetadataHandler) Handle(ctx context.Context, cmd commands.SaveImageMetadataCommand) error {
	image := &entities.ImageMetadata{
		ID:           cmd.ImageID,
		LocationName: cmd.LocationName,
		ImageURL:     cmd.ImageURL,
		ObjectKey:    cmd.ObjectKey,
		UploadedAt:   h.now().UTC(),
	}

	if err := h.repo.SaveMetadata(ctx, image); err != nil {
		return fmt.Errorf("failed to save image metadata: %w", err)
	}

	if h.eventBus != nil {
		event := events.NewImageUploaded(image.LocationName, image.ID, image.ImageURL, image.UploadedAt)
		if err := h.eventBus.Publish(ctx, event); err != nil {
			h.logger.Warn("Failed to publish image event", zap.Error(err))
		}
	}

	h.logger.Info("Image metadata saved",
		zap.String("imageID", image.ID),
		zap.String("locationName", image.LocationName),
	)

	return nil
}

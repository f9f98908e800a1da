package handlers

import (
	"context"
	"fmt"

	"triptrek-backend/application/ports"
	"triptrek-backend/application/queries"
	"triptrek-backend/domain/core/entities"
)

// ListLocationImagesHandler lists the images recorded for a location
type ListLocationImagesHandler struct {
	repo ports.ImageRepository
}

// NewListLocationImagesHandler creates a new location images handler
func NewListLocationImagesHandler(repo ports.ImageRepository) *ListLocationImagesHandler {
	return &ListLocationImagesHandler{repo: repo}
}

// Handle executes the list location images query
func (h *ListLocationImagesHandler) Handle(ctx context.Context, query queries.ListLocationImagesQuery) (*queries.ListLocationImagesResult, error) {
	images, err := h.repo.ListByLocation(ctx, query.LocationName)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	if images == nil {
		images = []*entities.ImageMetadata{}
	}

	return &queries.ListLocationImagesResult{
		LocationName: query.LocationName,
		Images:       images,
		Count:        len(images),
	}, nil
}

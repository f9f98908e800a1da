package queries

import (
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/errors"
)

// ListLocationImagesQuery lists images uploaded for a location
type ListLocationImagesQuery struct {
	LocationName string
}

// Validate validates the ListLocationImagesQuery
func (q ListLocationImagesQuery) Validate() error {
	if q.LocationName == "" {
		return errors.NewValidationError("location name is required")
	}
	return nil
}

// ListLocationImagesResult represents the images of a location
type ListLocationImagesResult struct {
	LocationName string                    `json:"locationName"`
	Images       []*entities.ImageMetadata `json:"images"`
	Count        int                       `json:"count"`
}

package memory

import (
	"context"
	"sort"
	"sync"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
)

// ImageRepository is a map-backed ports.ImageRepository
type ImageRepository struct {
	mu     sync.RWMutex
	images map[string][]*entities.ImageMetadata
}

// NewImageRepository creates an empty repository
func NewImageRepository() *ImageRepository {
	return &ImageRepository{images: make(map[string][]*entities.ImageMetadata)}
}

var _ ports.ImageRepository = (*ImageRepository)(nil)

// SaveMetadata records an uploaded image
func (r *ImageRepository) SaveMetadata(ctx context.Context, image *entities.ImageMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *image
	r.images[image.LocationName] = append(r.images[image.LocationName], &copied)
	return nil
}

// ListByLocation returns images for a location, oldest first
func (r *ImageRepository) ListByLocation(ctx context.Context, locationName string) ([]*entities.ImageMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.images[locationName]
	images := make([]*entities.ImageMetadata, len(stored))
	for i, img := range stored {
		copied := *img
		images[i] = &copied
	}
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].UploadedAt.Before(images[j].UploadedAt)
	})
	return images, nil
}

package entities

import "time"

// ImageMetadata records an image uploaded for a location
type ImageMetadata struct {
	ID           string    `json:"imageId"`
	LocationName string    `json:"locationName"`
	ImageURL     string    `json:"imageUrl"`
	ObjectKey    string    `json:"objectKey,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

package commands

import (
	"triptrek-backend/pkg/utils"
)

// SaveImageMetadataCommand records an uploaded image against a location
type SaveImageMetadataCommand struct {
	ImageID      string `json:"image_id" validate:"required"`
	LocationName string `json:"location_name" validate:"required,max=200"`
	ImageURL     string `json:"image_url" validate:"required,url"`
	ObjectKey    string `json:"object_key,omitempty"`
}

// Validate implements bus.Command
func (c SaveImageMetadataCommand) Validate() error {
	return utils.ValidateStruct(c)
}

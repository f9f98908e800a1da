// Package config holds the business limits applied to trips and uploads.
// Infrastructure settings live in infrastructure/config.
package config

import (
	"fmt"
	"time"
)

// DomainConfig holds the configurable trip and upload rules
type DomainConfig struct {
	MaxTripDays          int
	MaxDestinationLength int

	MaxActivitiesPerDay   int
	MaxActivityNameLength int
	MaxPhotosPerDay       int

	UploadURLExpiry   time.Duration
	DefaultImageExt   string
	AllowedImageTypes []string

	// RequireTripID rejects records without an id. Legacy clients always
	// send one, so it stays on outside tests.
	RequireTripID bool
}

// DefaultDomainConfig returns the rules used outside production
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxTripDays:          366,
		MaxDestinationLength: 200,

		MaxActivitiesPerDay:   50,
		MaxActivityNameLength: 200,
		MaxPhotosPerDay:       20,

		UploadURLExpiry: 5 * time.Minute,
		DefaultImageExt: "jpg",
		AllowedImageTypes: []string{
			"image/jpeg", "image/png", "image/gif", "image/webp", "image/heic",
		},

		RequireTripID: true,
	}
}

// LoadDomainConfig returns the rules for environment. Production caps
// busy days harder; development allows long synthetic trips and slower
// uploads.
func LoadDomainConfig(environment string) *DomainConfig {
	cfg := DefaultDomainConfig()
	switch environment {
	case "production":
		cfg.MaxActivitiesPerDay = 30
		cfg.MaxPhotosPerDay = 10
	case "development":
		cfg.MaxTripDays = 3660
		cfg.UploadURLExpiry = 15 * time.Minute
	}
	return cfg
}

// IsAllowedImageType reports whether uploads of the given MIME type are accepted
func (c *DomainConfig) IsAllowedImageType(mimeType string) bool {
	for _, t := range c.AllowedImageTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// Validate rejects limits that would make every trip invalid
func (c *DomainConfig) Validate() error {
	switch {
	case c.MaxTripDays < 1:
		return fmt.Errorf("MaxTripDays must be positive, got %d", c.MaxTripDays)
	case c.MaxActivitiesPerDay < 1:
		return fmt.Errorf("MaxActivitiesPerDay must be positive, got %d", c.MaxActivitiesPerDay)
	case c.MaxDestinationLength < 1:
		return fmt.Errorf("MaxDestinationLength must be positive, got %d", c.MaxDestinationLength)
	case c.UploadURLExpiry <= 0 || c.UploadURLExpiry > 7*24*time.Hour:
		// S3 refuses presigned URLs valid for more than a week
		return fmt.Errorf("UploadURLExpiry must be between 0 and 7 days, got %s", c.UploadURLExpiry)
	case len(c.AllowedImageTypes) == 0:
		return fmt.Errorf("AllowedImageTypes must not be empty")
	}
	return nil
}

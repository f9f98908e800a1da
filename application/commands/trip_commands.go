package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/errors"
)

// PatchableAttributes lists the trip attributes an attribute-level update may set
var PatchableAttributes = map[string]bool{
	"destination": true,
	"startDate":   true,
	"endDate":     true,
	"itinerary":   true,
	"imageUrl":    true,
	"mapData":     true,
}

// CreateTripCommand persists a new trip
type CreateTripCommand struct {
	Trip         entities.Trip `json:"trip"`
	OwnerID      string        `json:"owner_id"`
	ConfirmEmpty bool          `json:"confirm_empty"`
}

// Validate checks the command envelope; trip contents are checked by the
// trip validator after reconciliation.
func (c CreateTripCommand) Validate() error {
	if strings.TrimSpace(c.Trip.ID) == "" {
		return errors.NewValidationError("trip id is required")
	}
	return nil
}

// SaveTripCommand replaces an existing trip with an edited version
type SaveTripCommand struct {
	Trip         entities.Trip `json:"trip"`
	OwnerID      string        `json:"owner_id"`
	ConfirmEmpty bool          `json:"confirm_empty"`
}

// Validate implements bus.Command
func (c SaveTripCommand) Validate() error {
	if strings.TrimSpace(c.Trip.ID) == "" {
		return errors.NewValidationError("trip id is required")
	}
	return nil
}

// PatchTripAttributeCommand sets a single top-level attribute of a trip
type PatchTripAttributeCommand struct {
	TripID        string          `json:"trip_id"`
	OwnerID       string          `json:"owner_id"`
	AttributeName string          `json:"attribute_name"`
	NewValue      json.RawMessage `json:"new_value"`
}

// Validate implements bus.Command
func (c PatchTripAttributeCommand) Validate() error {
	if strings.TrimSpace(c.TripID) == "" {
		return errors.NewValidationError("trip id is required")
	}
	if c.AttributeName == "" {
		return errors.NewValidationError("attributeName is required")
	}
	if !PatchableAttributes[c.AttributeName] {
		return errors.ErrUnsupportedAttribute.
			Derive(fmt.Sprintf("attribute %q cannot be updated", c.AttributeName)).
			WithDetail("attribute", c.AttributeName)
	}
	if len(c.NewValue) == 0 {
		return errors.NewValidationError("newValue is required")
	}
	return nil
}

// DeleteTripCommand removes a trip
type DeleteTripCommand struct {
	TripID  string `json:"trip_id"`
	OwnerID string `json:"owner_id"`
}

// Validate implements bus.Command
func (c DeleteTripCommand) Validate() error {
	if strings.TrimSpace(c.TripID) == "" {
		return errors.NewValidationError("trip id is required")
	}
	return nil
}

// AttachTripImageCommand sets the cover image of a trip
type AttachTripImageCommand struct {
	TripID   string `json:"trip_id"`
	OwnerID  string `json:"owner_id"`
	ImageURL string `json:"image_url"`
}

// Validate implements bus.Command
func (c AttachTripImageCommand) Validate() error {
	if strings.TrimSpace(c.TripID) == "" {
		return errors.NewValidationError("trip id is required")
	}
	if !strings.HasPrefix(c.ImageURL, "http") {
		return errors.NewValidationError("imageUrl must be an http(s) URL")
	}
	return nil
}

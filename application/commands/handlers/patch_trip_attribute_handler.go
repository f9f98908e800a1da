package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/itinerary"
	"triptrek-backend/domain/events"
	"triptrek-backend/pkg/errors"

	"go.uber.org/zap"
)

// PatchTripAttributeHandler sets one top-level attribute on a stored trip.
// Date and itinerary changes are reconciled so the stored record stays
// aligned with its bounds.
type PatchTripAttributeHandler struct {
	*TripWriter
}

// NewPatchTripAttributeHandler creates a new patch handler
func NewPatchTripAttributeHandler(writer *TripWriter) *PatchTripAttributeHandler {
	return &PatchTripAttributeHandler{TripWriter: writer}
}

// Handle executes the patch command
func (h *PatchTripAttributeHandler) Handle(ctx context.Context, cmd commands.PatchTripAttributeCommand) (err error) {
	started := time.Now()
	defer func() { h.record(ctx, "PatchTripAttribute", started, err) }()

	existing, err := h.load(ctx, cmd.TripID, cmd.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to get trip: %w", err)
	}

	trip := existing.Clone()
	attributes, err := applyAttribute(trip, cmd.AttributeName, cmd.NewValue)
	if err != nil {
		return err
	}

	var dropped []string
	switch cmd.AttributeName {
	case "startDate", "endDate", "itinerary":
		if err := h.validateBounds(trip); err != nil {
			return err
		}
		dropped, err = itinerary.ReconcileTrip(trip)
		if err != nil {
			return err
		}
		attributes["itinerary"] = trip.Itinerary
	}

	if err := h.validator.Validate(trip); err != nil {
		return err
	}
	attributes["updatedAt"] = h.timestamp()

	key := ports.TripKey{OwnerID: existing.OwnerID, TripID: existing.ID}
	if _, err := h.repo.UpdateAttributes(ctx, key, attributes); err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	h.evict(ctx, trip)

	h.publish(ctx, events.NewTripAttributeChanged(trip.ID, cmd.AttributeName, h.now()))

	h.logger.Info("Trip attribute updated",
		zap.String("tripID", trip.ID),
		zap.String("attribute", cmd.AttributeName),
		zap.Strings("droppedDays", dropped),
	)

	return nil
}

// applyAttribute decodes raw into the named field of trip and returns the
// attribute values to persist. A nil value removes the attribute.
func applyAttribute(trip *entities.Trip, name string, raw json.RawMessage) (map[string]interface{}, error) {
	attributes := make(map[string]interface{})

	switch name {
	case "destination":
		var destination string
		if err := decodeAttribute(name, raw, &destination); err != nil {
			return nil, err
		}
		hadMap := trip.MapData != nil
		if trip.ChangeDestination(destination) {
			attributes["destination"] = trip.Destination
			if hadMap {
				attributes["mapData"] = nil
			}
		}

	case "startDate":
		if err := decodeAttribute(name, raw, &trip.StartDate); err != nil {
			return nil, err
		}
		attributes["startDate"] = trip.StartDate

	case "endDate":
		if err := decodeAttribute(name, raw, &trip.EndDate); err != nil {
			return nil, err
		}
		attributes["endDate"] = trip.EndDate

	case "itinerary":
		var days []entities.Day
		if err := decodeAttribute(name, raw, &days); err != nil {
			return nil, err
		}
		trip.Itinerary = days

	case "imageUrl":
		var imageURL string
		if err := decodeAttribute(name, raw, &imageURL); err != nil {
			return nil, err
		}
		if imageURL != "" {
			if u, err := url.ParseRequestURI(imageURL); err != nil || u.Host == "" {
				return nil, errors.NewValidationError("imageUrl must be a valid URL")
			}
		}
		trip.ImageURL = imageURL
		if imageURL == "" {
			attributes["imageUrl"] = nil
		} else {
			attributes["imageUrl"] = imageURL
		}

	case "mapData":
		var mapData *entities.MapData
		if err := decodeAttribute(name, raw, &mapData); err != nil {
			return nil, err
		}
		trip.MapData = mapData
		if mapData == nil {
			attributes["mapData"] = nil
		} else {
			attributes["mapData"] = mapData
		}

	default:
		return nil, errors.ErrUnsupportedAttribute.
			Derive(fmt.Sprintf("attribute %q cannot be updated", name)).
			WithDetail("attribute", name)
	}

	return attributes, nil
}

func decodeAttribute(name string, raw json.RawMessage, target interface{}) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return errors.NewValidationError(fmt.Sprintf("newValue is not a valid %s", name))
	}
	return nil
}

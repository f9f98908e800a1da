package handlers

import (
	"context"
	stderrors "errors"

	"triptrek-backend/application/queries"
	"triptrek-backend/domain/core/itinerary"
	"triptrek-backend/domain/core/validators"
	"triptrek-backend/pkg/errors"
)

// ItineraryHandler answers stateless itinerary questions: what an itinerary
// looks like after a date change, and whether a trip would pass validation.
type ItineraryHandler struct {
	validator *validators.TripValidator
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(validator *validators.TripValidator) *ItineraryHandler {
	return &ItineraryHandler{validator: validator}
}

// HandlePreview reconciles the itinerary against the requested bounds
func (h *ItineraryHandler) HandlePreview(ctx context.Context, query queries.PreviewItineraryQuery) (*queries.PreviewItineraryResult, error) {
	dates, err := itinerary.ExpandDisplayRange(query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	reconciled, err := itinerary.Reconcile(dates, query.Itinerary)
	if err != nil {
		return nil, err
	}

	dropped := itinerary.DroppedDates(dates, query.Itinerary)
	if dropped == nil {
		dropped = []string{}
	}

	return &queries.PreviewItineraryResult{
		Dates:       itinerary.FormatDates(dates),
		Itinerary:   reconciled,
		DroppedDays: dropped,
		DayCount:    len(reconciled),
	}, nil
}

// HandleValidate reports every violation found on the trip
func (h *ItineraryHandler) HandleValidate(ctx context.Context, query queries.ValidateTripQuery) (*queries.ValidateTripResult, error) {
	trip := query.Trip
	result := &queries.ValidateTripResult{
		Valid:             true,
		Errors:            []string{},
		NeedsConfirmation: h.validator.NeedsConfirmation(&trip),
	}

	err := h.validator.Validate(&trip)
	if err == nil {
		return result, nil
	}

	var validationErrs *errors.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return nil, err
	}
	result.Valid = false
	result.Errors = validationErrs.Messages()
	result.Fields = validationErrs.ToMap()
	return result, nil
}

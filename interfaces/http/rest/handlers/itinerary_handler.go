package handlers

import (
	"net/http"

	"triptrek-backend/application/queries"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/pkg/common"
	"triptrek-backend/pkg/errors"
)

// ItineraryHandler serves the stateless itinerary endpoints used by the trip form
type ItineraryHandler struct {
	queryBus   *querybus.QueryBus
	errHandler *errors.ErrorHandler
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(queryBus *querybus.QueryBus, errHandler *errors.ErrorHandler) *ItineraryHandler {
	return &ItineraryHandler{queryBus: queryBus, errHandler: errHandler}
}

// Preview handles POST /itinerary/preview
func (h *ItineraryHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var query queries.PreviewItineraryQuery
	if err := common.ParseJSONBody(w, r, &query); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Validate handles POST /itinerary/validate. Violations are reported in the
// body with status 200.
func (h *ItineraryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ValidateTripQuery{Trip: req.Trip()})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

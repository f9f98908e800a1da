package handlers

import (
	"encoding/json"
	"net/http"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/commands/bus"
	"triptrek-backend/application/queries"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/domain/core/valueobjects"
	"triptrek-backend/pkg/common"
	"triptrek-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TripHandler handles trip-related HTTP requests
type TripHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	counters   Counters
	errHandler *errors.ErrorHandler
	logger     *zap.Logger
}

// NewTripHandler creates a new trip handler
func NewTripHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	counters Counters,
	errHandler *errors.ErrorHandler,
	logger *zap.Logger,
) *TripHandler {
	return &TripHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		counters:   counters,
		errHandler: errHandler,
		logger:     logger,
	}
}

// PatchTripRequest is the attribute-level update body
type PatchTripRequest struct {
	AttributeName string          `json:"attributeName"`
	NewValue      json.RawMessage `json:"newValue"`
}

// CreateTrip handles POST /trips
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	if req.ID == "" {
		req.ID = valueobjects.NewTripID().String()
	}

	cmd := commands.CreateTripCommand{
		Trip:         req.Trip(),
		OwnerID:      ownerID(r),
		ConfirmEmpty: req.ConfirmEmpty,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	h.counters.IncrementCounter("trips_created")

	h.respondWithTrip(w, r, req.ID, http.StatusCreated)
}

// ListTrips handles GET /trips. Callers without an owner, or passing
// all=true, get every trip in the table.
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	var query querybus.Query = queries.ListTripsQuery{}
	if owner := ownerID(r); owner != "" && r.URL.Query().Get("all") != "true" {
		query = queries.ListTripsByOwnerQuery{OwnerID: owner}
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetTrip handles GET /trips/{tripID}
func (h *TripHandler) GetTrip(w http.ResponseWriter, r *http.Request) {
	h.respondWithTrip(w, r, chi.URLParam(r, "tripID"), http.StatusOK)
}

// SaveTrip handles PUT /trips/{tripID}
func (h *TripHandler) SaveTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	var req TripRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	req.ID = tripID

	cmd := commands.SaveTripCommand{
		Trip:         req.Trip(),
		OwnerID:      ownerID(r),
		ConfirmEmpty: req.ConfirmEmpty,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondWithTrip(w, r, tripID, http.StatusOK)
}

// PatchTrip handles PATCH /trips/{tripID}
func (h *TripHandler) PatchTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")

	var req PatchTripRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	cmd := commands.PatchTripAttributeCommand{
		TripID:        tripID,
		OwnerID:       ownerID(r),
		AttributeName: req.AttributeName,
		NewValue:      req.NewValue,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.respondWithTrip(w, r, tripID, http.StatusOK)
}

// DeleteTrip handles DELETE /trips/{tripID}
func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteTripCommand{
		TripID:  chi.URLParam(r, "tripID"),
		OwnerID: ownerID(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	h.counters.IncrementCounter("trips_deleted")

	w.WriteHeader(http.StatusNoContent)
}

func (h *TripHandler) respondWithTrip(w http.ResponseWriter, r *http.Request, tripID string, status int) {
	trip, err := h.queryBus.Ask(r.Context(), queries.GetTripQuery{TripID: tripID, OwnerID: ownerID(r)})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, status, trip)
}

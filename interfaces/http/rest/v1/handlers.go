package v1

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/commands/bus"
	"triptrek-backend/application/queries"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/application/services"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/common"
	"triptrek-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler implements the legacy endpoints on top of the buses
type Handler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	images     *services.ImageService
	logger     *zap.Logger
}

type createTripRequest struct {
	ID          string            `json:"id"`
	Destination string            `json:"destination"`
	StartDate   string            `json:"startDate"`
	EndDate     string            `json:"endDate"`
	Itinerary   []entities.Day    `json:"itinerary"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	MapData     *entities.MapData `json:"mapData,omitempty"`
}

type createTripResponse struct {
	Message   string         `json:"message"`
	Itinerary []entities.Day `json:"itinerary"`
}

type updateTripRequest struct {
	AttributeName string          `json:"attributeName"`
	NewValue      json.RawMessage `json:"newValue"`
}

type uploadURLRequest struct {
	FileType     string `json:"fileType"`
	LocationName string `json:"locationName"`
}

type uploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
}

type imageMetadataRequest struct {
	LocationName string `json:"locationName"`
	ImageURL     string `json:"imageUrl"`
}

type imageMetadataResponse struct {
	Message string `json:"message"`
	ImageID string `json:"imageId"`
}

// CreateTrip handles POST /createTrip. The legacy form had no confirmation
// step, so empty itineraries are accepted.
func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid JSON format.")
		return
	}
	if req.ID == "" || req.Destination == "" || req.StartDate == "" || req.EndDate == "" {
		common.RespondMessage(w, http.StatusBadRequest, "Missing required fields.")
		return
	}

	cmd := commands.CreateTripCommand{
		Trip: entities.Trip{
			ID:          req.ID,
			Destination: req.Destination,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Itinerary:   req.Itinerary,
			ImageURL:    req.ImageURL,
			MapData:     req.MapData,
		},
		OwnerID:      common.UserIDOrEmpty(r.Context()),
		ConfirmEmpty: true,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		switch {
		case stderrors.Is(err, errors.ErrTripAlreadyExists):
			common.RespondMessage(w, http.StatusBadRequest, "Trip already exists.")
		case errors.StatusCode(err) < http.StatusInternalServerError:
			common.RespondMessage(w, http.StatusBadRequest, errors.Message(err, "Invalid trip."))
		default:
			h.logger.Error("Failed to create trip", zap.String("tripID", req.ID), zap.Error(err))
			common.RespondMessage(w, http.StatusInternalServerError, "Error creating item in DynamoDB.")
		}
		return
	}

	trip, err := h.getTrip(r, req.ID)
	if err != nil {
		h.logger.Error("Failed to read back created trip", zap.String("tripID", req.ID), zap.Error(err))
		common.RespondMessage(w, http.StatusInternalServerError, "Error creating item in DynamoDB.")
		return
	}

	common.RespondJSON(w, http.StatusOK, createTripResponse{
		Message:   "Itinerary created successfully.",
		Itinerary: trip.Itinerary,
	})
}

// GetTripList handles GET /getTripList
func (h *Handler) GetTripList(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListTripsQuery{})
	if err != nil {
		h.logger.Error("Failed to list trips", zap.Error(err))
		common.RespondMessage(w, http.StatusInternalServerError, "Error retrieving trips")
		return
	}

	list := result.(*queries.ListTripsResult)
	if list.Count == 0 {
		common.RespondMessage(w, http.StatusNotFound, "No trips found")
		return
	}
	common.RespondJSON(w, http.StatusOK, list.Trips)
}

// GetTrips handles GET /getTrips?userId=
func (h *Handler) GetTrips(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		common.RespondJSON(w, http.StatusBadRequest, "Missing userId")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListTripsByOwnerQuery{OwnerID: userID})
	if err != nil {
		h.logger.Error("Failed to list trips", zap.String("userID", userID), zap.Error(err))
		common.RespondJSON(w, http.StatusInternalServerError, "Error retrieving trips")
		return
	}
	common.RespondJSON(w, http.StatusOK, result.(*queries.ListTripsResult).Trips)
}

// UpdateTrip handles PATCH|PUT /updateTrip?tripId=. It answers with the
// updated attributes.
func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID := r.URL.Query().Get("tripId")
	if tripID == "" {
		common.RespondJSON(w, http.StatusBadRequest, "Missing 'tripId' in query string")
		return
	}

	var req updateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.AttributeName == "" || len(req.NewValue) == 0 {
		common.RespondJSON(w, http.StatusBadRequest, "Missing 'attributeName' or 'newValue' in body")
		return
	}

	cmd := commands.PatchTripAttributeCommand{
		TripID:        tripID,
		OwnerID:       common.UserIDOrEmpty(r.Context()),
		AttributeName: req.AttributeName,
		NewValue:      req.NewValue,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		status := errors.StatusCode(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Failed to update trip", zap.String("tripID", tripID), zap.Error(err))
			common.RespondJSON(w, http.StatusInternalServerError, "Error updating item in DynamoDB")
			return
		}
		common.RespondJSON(w, status, errors.Message(err, "Invalid update"))
		return
	}

	trip, err := h.getTrip(r, tripID)
	if err != nil {
		h.logger.Error("Failed to read back updated trip", zap.String("tripID", tripID), zap.Error(err))
		common.RespondJSON(w, http.StatusInternalServerError, "Error updating item in DynamoDB")
		return
	}

	attributes, err := updatedAttributes(trip, req.AttributeName)
	if err != nil {
		common.RespondJSON(w, http.StatusInternalServerError, "Error updating item in DynamoDB")
		return
	}
	common.RespondJSON(w, http.StatusOK, attributes)
}

// DeleteTrip handles DELETE /deleteTrip?tripId=
func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID := r.URL.Query().Get("tripId")
	if tripID == "" {
		common.RespondJSON(w, http.StatusBadRequest, "Missing 'tripId' in query string")
		return
	}

	cmd := commands.DeleteTripCommand{
		TripID:  tripID,
		OwnerID: common.UserIDOrEmpty(r.Context()),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		if stderrors.Is(err, errors.ErrTripNotFound) {
			common.RespondJSON(w, http.StatusNotFound, fmt.Sprintf("Trip with ID '%s' not found.", tripID))
			return
		}
		h.logger.Error("Failed to delete trip", zap.String("tripID", tripID), zap.Error(err))
		common.RespondJSON(w, http.StatusInternalServerError, "Error deleting trip from DynamoDB")
		return
	}

	common.RespondJSON(w, http.StatusOK, "Trip deleted successfully")
}

// GenerateUploadURL handles POST /generateUploadUrl
func (h *Handler) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.FileType == "" || req.LocationName == "" {
		common.RespondMessage(w, http.StatusBadRequest, "Missing fileType or locationName")
		return
	}

	ticket, err := h.images.RequestUpload(r.Context(), services.UploadRequest{
		FileType:     req.FileType,
		LocationName: req.LocationName,
	})
	if err != nil {
		if status := errors.StatusCode(err); status < http.StatusInternalServerError {
			common.RespondMessage(w, status, errors.Message(err, "Invalid upload request"))
			return
		}
		h.logger.Error("Failed to generate upload URL", zap.Error(err))
		common.RespondMessage(w, http.StatusInternalServerError, "Error generating signed URL")
		return
	}

	common.RespondJSON(w, http.StatusOK, uploadURLResponse{
		UploadURL: ticket.UploadURL,
		ImageURL:  ticket.ImageURL,
	})
}

// SaveImageMetadata handles POST /saveImageMetadata
func (h *Handler) SaveImageMetadata(w http.ResponseWriter, r *http.Request) {
	var req imageMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.LocationName == "" || req.ImageURL == "" {
		common.RespondMessage(w, http.StatusBadRequest, "Missing locationName or imageUrl")
		return
	}

	imageID := uuid.New().String()
	cmd := commands.SaveImageMetadataCommand{
		ImageID:      imageID,
		LocationName: req.LocationName,
		ImageURL:     req.ImageURL,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		if status := errors.StatusCode(err); status < http.StatusInternalServerError {
			common.RespondMessage(w, status, errors.Message(err, "Invalid image metadata"))
			return
		}
		h.logger.Error("Failed to save image metadata", zap.Error(err))
		common.RespondMessage(w, http.StatusInternalServerError, "Failed to save image metadata")
		return
	}

	common.RespondJSON(w, http.StatusOK, imageMetadataResponse{
		Message: "Image metadata saved",
		ImageID: imageID,
	})
}

func (h *Handler) getTrip(r *http.Request, tripID string) (*entities.Trip, error) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetTripQuery{
		TripID:  tripID,
		OwnerID: common.UserIDOrEmpty(r.Context()),
	})
	if err != nil {
		return nil, err
	}
	return result.(*entities.Trip), nil
}

// updatedAttributes mirrors DynamoDB's UPDATED_NEW: the patched attribute,
// the itinerary when a date change reconciled it, and updatedAt.
func updatedAttributes(trip *entities.Trip, attributeName string) (map[string]interface{}, error) {
	raw, err := json.Marshal(trip)
	if err != nil {
		return nil, err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}

	keep := []string{attributeName, "updatedAt"}
	if attributeName == "startDate" || attributeName == "endDate" {
		keep = append(keep, "itinerary")
	}

	attributes := make(map[string]interface{}, len(keep))
	for _, name := range keep {
		if value, ok := all[name]; ok {
			attributes[name] = value
		}
	}
	return attributes, nil
}

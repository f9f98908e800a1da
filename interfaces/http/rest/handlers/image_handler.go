package handlers

import (
	"net/http"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/commands/bus"
	"triptrek-backend/application/queries"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/application/services"
	"triptrek-backend/pkg/common"
	"triptrek-backend/pkg/errors"
	"triptrek-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageHandler handles image upload and gallery requests
type ImageHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	images     *services.ImageService
	counters   Counters
	errHandler *errors.ErrorHandler
	logger     *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	images *services.ImageService,
	counters Counters,
	errHandler *errors.ErrorHandler,
	logger *zap.Logger,
) *ImageHandler {
	return &ImageHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		images:     images,
		counters:   counters,
		errHandler: errHandler,
		logger:     logger,
	}
}

// UploadURLRequest asks for a pre-signed upload URL
type UploadURLRequest struct {
	FileType     string `json:"fileType" validate:"required"`
	LocationName string `json:"locationName,omitempty" validate:"required_without=TripID"`
	TripID       string `json:"tripId,omitempty"`
}

// ImageMetadataRequest records an uploaded image
type ImageMetadataRequest struct {
	LocationName string `json:"locationName"`
	ImageURL     string `json:"imageUrl"`
	ObjectKey    string `json:"objectKey,omitempty"`
}

// ImageMetadataResponse acknowledges a saved image
type ImageMetadataResponse struct {
	Message string `json:"message"`
	ImageID string `json:"imageId"`
}

// RequestUploadURL handles POST /images/upload-url. With a trip id the
// resulting image URL is also attached to the trip.
func (h *ImageHandler) RequestUploadURL(w http.ResponseWriter, r *http.Request) {
	var req UploadURLRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.images.RequestUpload(r.Context(), services.UploadRequest{
		FileType:     req.FileType,
		LocationName: req.LocationName,
		TripID:       req.TripID,
	})
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	h.counters.IncrementCounter("upload_urls")

	if req.TripID != "" {
		cmd := commands.AttachTripImageCommand{
			TripID:   req.TripID,
			OwnerID:  ownerID(r),
			ImageURL: ticket.ImageURL,
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.errHandler.Handle(w, r, err)
			return
		}
	}

	common.RespondJSON(w, http.StatusOK, ticket)
}

// SaveMetadata handles POST /images/metadata
func (h *ImageHandler) SaveMetadata(w http.ResponseWriter, r *http.Request) {
	var req ImageMetadataRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	imageID := uuid.New().String()
	cmd := commands.SaveImageMetadataCommand{
		ImageID:      imageID,
		LocationName: req.LocationName,
		ImageURL:     req.ImageURL,
		ObjectKey:    req.ObjectKey,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, ImageMetadataResponse{
		Message: "Image metadata saved",
		ImageID: imageID,
	})
}

// ListLocationImages handles GET /images/{locationName}
func (h *ImageHandler) ListLocationImages(w http.ResponseWriter, r *http.Request) {
	query := queries.ListLocationImagesQuery{LocationName: chi.URLParam(r, "locationName")}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

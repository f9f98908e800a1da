package handlers

import (
	"context"
	"net/http"

	"triptrek-backend/application/ports"
	"triptrek-backend/application/queries"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/application/services"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/common"
	"triptrek-backend/pkg/errors"
)

// AssistantHandler exposes the Trekka chatbot
type AssistantHandler struct {
	queryBus   *querybus.QueryBus
	assistant  *services.AssistantService
	errHandler *errors.ErrorHandler
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(
	queryBus *querybus.QueryBus,
	assistant *services.AssistantService,
	errHandler *errors.ErrorHandler,
) *AssistantHandler {
	return &AssistantHandler{
		queryBus:   queryBus,
		assistant:  assistant,
		errHandler: errHandler,
	}
}

// ChatRequest carries the conversation so far. The trip context is either
// loaded by id or taken inline from an unsaved form.
type ChatRequest struct {
	TripID   string              `json:"tripId,omitempty"`
	Trip     *TripRequest        `json:"trip,omitempty"`
	Messages []ports.ChatMessage `json:"messages"`
}

// Chat handles POST /assistant/chat. Model failures still answer 200 with a
// fallback reply.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	trip, err := h.tripContext(r.Context(), req.TripID, req.Trip, ownerID(r))
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, h.assistant.Reply(r.Context(), trip, req.Messages))
}

// Suggestions handles POST /assistant/suggestions
func (h *AssistantHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := common.ParseJSONBody(w, r, &req); err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	trip, err := h.tripContext(r.Context(), req.TripID, req.Trip, ownerID(r))
	if err != nil {
		h.errHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, h.assistant.Suggest(r.Context(), trip))
}

func (h *AssistantHandler) tripContext(ctx context.Context, tripID string, inline *TripRequest, owner string) (*entities.Trip, error) {
	if inline != nil {
		trip := inline.Trip()
		return &trip, nil
	}
	if tripID == "" {
		return nil, nil
	}

	result, err := h.queryBus.Ask(ctx, queries.GetTripQuery{TripID: tripID, OwnerID: owner})
	if err != nil {
		return nil, err
	}
	return result.(*entities.Trip), nil
}

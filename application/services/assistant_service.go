package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"

	"go.uber.org/zap"
)

const (
	assistantPersona = "You are Trekka, Trip Trek's travel assistant helping users plan trips."

	followupPrompt = "Give a short, helpful follow up message and 3 suggestion prompts. " +
		"Respond only in this format:\n" +
		`{"followup": "text", "suggestions": ["suggestion1", "suggestion2", "suggestion3"]}` +
		" in html format (not markdown). "

	// EmptyReplyText is returned when the model answers with nothing
	EmptyReplyText = "Hmm, something went wrong."

	// UnavailableReplyText is returned when the model cannot be reached
	UnavailableReplyText = "Error contacting AI."

	// IntroText greets a user before any trip context is known
	IntroText = "Hey there! I'm Trekka, your personal trip planning assistant. " +
		"Ask me where to go, what to pack, or how to plan. I'm here to help!"

	assistantTemperature = 0.7
	maxSuggestions       = 3
	maxHistory           = 20
)

// DefaultSuggestions are offered when the model gives none
var DefaultSuggestions = []string{
	"Find me a cheap getaway",
	"What are some underrated travel spots?",
	"Surprise me with a destination idea",
}

// AssistantReply is one chatbot answer. Failed marks a fallback reply
// produced because the model could not be reached.
type AssistantReply struct {
	Reply  string `json:"reply"`
	Failed bool   `json:"failed,omitempty"`
}

// AssistantSuggestions is a follow-up message with prompts the user can click
type AssistantSuggestions struct {
	Followup    string   `json:"followup"`
	Suggestions []string `json:"suggestions"`
	Failed      bool     `json:"failed,omitempty"`
}

// AssistantService is the Trekka trip planning chatbot
type AssistantService struct {
	completer ports.ChatCompleter
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssistantService creates a new assistant service. A nil completer makes
// every reply a fallback.
func NewAssistantService(completer ports.ChatCompleter, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		completer: completer,
		logger:    logger,
		now:       time.Now,
	}
}

// Reply answers the latest user turn in history. When trip is non-nil its
// destination and itinerary are given to the model as context.
func (s *AssistantService) Reply(ctx context.Context, trip *entities.Trip, history []ports.ChatMessage) *AssistantReply {
	messages := []ports.ChatMessage{{Role: ports.ChatRoleSystem, Content: systemPrompt(trip)}}
	messages = append(messages, conversation(history)...)

	content, err := s.complete(ctx, ports.ChatRequest{
		Messages:    messages,
		Temperature: assistantTemperature,
	})
	if err != nil {
		return &AssistantReply{Reply: UnavailableReplyText, Failed: true}
	}
	if strings.TrimSpace(content) == "" {
		return &AssistantReply{Reply: EmptyReplyText}
	}
	return &AssistantReply{Reply: content}
}

// Suggest produces a follow-up message and three prompt suggestions for a
// trip. Malformed model output falls back to the intro and defaults.
func (s *AssistantService) Suggest(ctx context.Context, trip *entities.Trip) *AssistantSuggestions {
	fallback := &AssistantSuggestions{
		Followup:    IntroText,
		Suggestions: append([]string(nil), DefaultSuggestions...),
	}
	if trip == nil {
		return fallback
	}

	content, err := s.complete(ctx, ports.ChatRequest{
		Messages: []ports.ChatMessage{
			{
				Role:    ports.ChatRoleSystem,
				Content: followupPrompt + "Today's date is " + s.now().Format("January 2, 2006") + ".",
			},
			{
				Role: ports.ChatRoleUser,
				Content: fmt.Sprintf("I'm planning a trip to %s. Here's my itinerary: %s",
					trip.Destination, itineraryJSON(trip)),
			},
		},
		Temperature: assistantTemperature,
		JSONOutput:  true,
	})
	if err != nil {
		fallback.Failed = true
		return fallback
	}

	var parsed struct {
		Followup    string   `json:"followup"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		s.logger.Warn("Assistant returned malformed suggestions", zap.Error(err))
		return fallback
	}

	result := &AssistantSuggestions{Followup: parsed.Followup, Suggestions: parsed.Suggestions}
	if strings.TrimSpace(result.Followup) == "" {
		result.Followup = fallback.Followup
	}
	if len(result.Suggestions) == 0 {
		result.Suggestions = fallback.Suggestions
	}
	if len(result.Suggestions) > maxSuggestions {
		result.Suggestions = result.Suggestions[:maxSuggestions]
	}
	return result
}

func (s *AssistantService) complete(ctx context.Context, req ports.ChatRequest) (string, error) {
	if s.completer == nil {
		return "", fmt.Errorf("assistant is not configured")
	}
	content, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Error("Assistant completion failed", zap.Error(err))
		return "", err
	}
	return content, nil
}

func systemPrompt(trip *entities.Trip) string {
	if trip == nil || strings.TrimSpace(trip.Destination) == "" {
		return assistantPersona
	}
	return fmt.Sprintf("%s The user is planning a trip to %s. Here's their itinerary:\n%s",
		assistantPersona, trip.Destination, itineraryJSON(trip))
}

func itineraryJSON(trip *entities.Trip) string {
	data, err := json.MarshalIndent(trip.Itinerary, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

// conversation keeps the most recent user and assistant turns. Callers
// cannot inject their own system messages.
func conversation(history []ports.ChatMessage) []ports.ChatMessage {
	out := make([]ports.ChatMessage, 0, len(history))
	for _, m := range history {
		if m.Role != ports.ChatRoleUser && m.Role != ports.ChatRoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}
	if len(out) > maxHistory {
		out = out[len(out)-maxHistory:]
	}
	return out
}

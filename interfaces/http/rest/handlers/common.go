package handlers

import (
	"net/http"

	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/common"
)

// TripRequest is the body of trip create, save and validate requests
type TripRequest struct {
	ID           string            `json:"id,omitempty"`
	Destination  string            `json:"destination"`
	StartDate    string            `json:"startDate"`
	EndDate      string            `json:"endDate"`
	Itinerary    []entities.Day    `json:"itinerary"`
	ImageURL     string            `json:"imageUrl,omitempty"`
	MapData      *entities.MapData `json:"mapData,omitempty"`
	ConfirmEmpty bool              `json:"confirmEmpty,omitempty"`
}

// Trip converts the request into a trip entity
func (r TripRequest) Trip() entities.Trip {
	return entities.Trip{
		ID:          r.ID,
		Destination: r.Destination,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Itinerary:   r.Itinerary,
		ImageURL:    r.ImageURL,
		MapData:     r.MapData,
	}
}

// Counters records business events
type Counters interface {
	IncrementCounter(name string)
}

func ownerID(r *http.Request) string {
	return common.UserIDOrEmpty(r.Context())
}

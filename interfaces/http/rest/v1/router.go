// Package v1 serves the legacy single-function endpoints with their
// response envelopes and status codes, so older frontends keep working.
package v1

import (
	"net/http"

	"triptrek-backend/application/commands/bus"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/application/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates the v1 API router
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	images *services.ImageService,
	logger *zap.Logger,
) *mux.Router {
	h := &Handler{
		commandBus: commandBus,
		queryBus:   queryBus,
		images:     images,
		logger:     logger,
	}

	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/createTrip", h.CreateTrip).Methods("POST")
	v1.HandleFunc("/getTripList", h.GetTripList).Methods("GET")
	v1.HandleFunc("/getTrips", h.GetTrips).Methods("GET")
	v1.HandleFunc("/updateTrip", h.UpdateTrip).Methods("PATCH", "PUT")
	v1.HandleFunc("/deleteTrip", h.DeleteTrip).Methods("DELETE")
	v1.HandleFunc("/generateUploadUrl", h.GenerateUploadURL).Methods("POST")
	v1.HandleFunc("/saveImageMetadata", h.SaveImageMetadata).Methods("POST")

	v1.HandleFunc("/health", healthCheck).Methods("GET")

	v1.Use(versionHeaders)

	return router
}

// versionHeaders adds API version headers to responses
func versionHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-API-Version", "v1")
		w.Header().Set("X-API-Deprecated", "true")
		next.ServeHTTP(w, r)
	})
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1"}`))
}

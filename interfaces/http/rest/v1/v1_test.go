package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"triptrek-backend/application/commands/handlers"
	"triptrek-backend/application/services"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/validators"
	"triptrek-backend/infrastructure/config"
	"triptrek-backend/infrastructure/di"
	"triptrek-backend/infrastructure/messaging/eventbridge"
	"triptrek-backend/infrastructure/persistence/memory"
	v1 "triptrek-backend/interfaces/http/rest/v1"
	"triptrek-backend/pkg/common"
	"triptrek-backend/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSigner struct{}

func (stubSigner) PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (stubSigner) ObjectURL(key string) string {
	return "https://images.s3.us-east-1.amazonaws.com/" + key
}

func newLegacyRouter(t *testing.T, withUploads bool) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := zap.NewNop()
	cfg := config.Default()
	cfg.Store = "memory"

	trips := memory.NewTripRepository()
	images := memory.NewImageRepository()
	validator := validators.NewTripValidator(nil)
	eventBus := eventbridge.NewLogPublisher(logger)
	cache := di.NewInMemoryCache(ctx)

	writer := handlers.NewTripWriter(trips, validator, eventBus, cache, nil, logger)
	commandBus, err := di.ProvideCommandBus(writer, images, eventBus, logger)
	require.NoError(t, err)
	queryBus, err := di.ProvideQueryBus(trips, images, validator, cache, observability.NewCollector("v1test"), cfg, logger)
	require.NoError(t, err)

	imageService := services.NewImageService(nil, nil, logger)
	if withUploads {
		imageService = services.NewImageService(stubSigner{}, nil, logger)
	}

	router := v1.NewRouter(commandBus, queryBus, imageService, logger)

	// The owner normally comes from the v2 middleware stack
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if owner := r.Header.Get("X-User-ID"); owner != "" {
			r = r.WithContext(common.WithUserID(r.Context(), owner))
		}
		router.ServeHTTP(w, r)
	})
}

func send(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case nil:
	case string:
		data = []byte(b)
	default:
		var err error
		data, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body common.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Message
}

func jsonString(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s), rec.Body.String())
	return s
}

func legacyTrip() map[string]interface{} {
	return map[string]interface{}{
		"id":          "legacy-1",
		"destination": "Tokyo",
		"startDate":   "04/01/2025",
		"endDate":     "04/02/2025",
		"itinerary":   []interface{}{},
	}
}

func TestCreateTrip(t *testing.T) {
	h := newLegacyRouter(t, false)

	rec := send(t, h, http.MethodPost, "/api/v1/createTrip", legacyTrip())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created struct {
		Message   string         `json:"message"`
		Itinerary []entities.Day `json:"itinerary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Itinerary created successfully.", created.Message)
	require.Len(t, created.Itinerary, 2, "empty itineraries are accepted and expanded")
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
	assert.Equal(t, "true", rec.Header().Get("X-API-Deprecated"))

	rec = send(t, h, http.MethodPost, "/api/v1/createTrip", legacyTrip())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Trip already exists.", message(t, rec))
}

func TestCreateTrip_BadRequests(t *testing.T) {
	h := newLegacyRouter(t, false)

	missing := legacyTrip()
	delete(missing, "endDate")
	reversed := legacyTrip()
	reversed["endDate"] = "03/01/2025"

	tests := []struct {
		name string
		body interface{}
		want string
	}{
		{name: "malformed", body: "{", want: "Invalid JSON format."},
		{name: "missing field", body: missing, want: "Missing required fields."},
		{name: "reversed dates", body: reversed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, h, http.MethodPost, "/api/v1/createTrip", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			if tt.want != "" {
				assert.Equal(t, tt.want, message(t, rec))
			}
		})
	}
}

func TestGetTripListAndGetTrips(t *testing.T) {
	h := newLegacyRouter(t, false)

	rec := send(t, h, http.MethodGet, "/api/v1/getTripList", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No trips found", message(t, rec))

	require.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/api/v1/createTrip", legacyTrip()).Code)

	rec = send(t, h, http.MethodGet, "/api/v1/getTripList", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var trips []entities.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trips))
	require.Len(t, trips, 1)

	rec = send(t, h, http.MethodGet, "/api/v1/getTrips", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing userId", jsonString(t, rec))

	rec = send(t, h, http.MethodGet, "/api/v1/getTrips?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trips))
	assert.Len(t, trips, 1)

	rec = send(t, h, http.MethodGet, "/api/v1/getTrips?userId=someone-else", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUpdateTrip(t *testing.T) {
	h := newLegacyRouter(t, false)
	require.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/api/v1/createTrip", legacyTrip()).Code)

	rec := send(t, h, http.MethodPatch, "/api/v1/updateTrip?tripId=legacy-1", map[string]interface{}{
		"attributeName": "endDate",
		"newValue":      "04/04/2025",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var attrs map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attrs))
	assert.JSONEq(t, `"04/04/2025"`, string(attrs["endDate"]))
	assert.Contains(t, attrs, "updatedAt")
	var days []entities.Day
	require.NoError(t, json.Unmarshal(attrs["itinerary"], &days))
	assert.Len(t, days, 4)
	assert.NotContains(t, attrs, "destination")

	rec = send(t, h, http.MethodPut, "/api/v1/updateTrip?tripId=legacy-1", map[string]interface{}{
		"attributeName": "destination",
		"newValue":      "Osaka",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	attrs = map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attrs))
	assert.JSONEq(t, `"Osaka"`, string(attrs["destination"]))
	assert.NotContains(t, attrs, "itinerary")

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		want   string
	}{
		{name: "no trip id", path: "/api/v1/updateTrip", body: map[string]string{}, status: http.StatusBadRequest, want: "Missing 'tripId' in query string"},
		{name: "bad json", path: "/api/v1/updateTrip?tripId=legacy-1", body: "nope", status: http.StatusBadRequest, want: "Invalid JSON body"},
		{name: "no attribute", path: "/api/v1/updateTrip?tripId=legacy-1", body: map[string]string{"newValue": "x"}, status: http.StatusBadRequest, want: "Missing 'attributeName' or 'newValue' in body"},
		{name: "unknown trip", path: "/api/v1/updateTrip?tripId=ghost", body: map[string]string{"attributeName": "destination", "newValue": "x"}, status: http.StatusNotFound},
		{name: "unsupported attribute", path: "/api/v1/updateTrip?tripId=legacy-1", body: map[string]string{"attributeName": "ownerId", "newValue": "x"}, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(t, h, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.want != "" {
				assert.Equal(t, tt.want, jsonString(t, rec))
			}
		})
	}
}

func TestDeleteTrip(t *testing.T) {
	h := newLegacyRouter(t, false)
	require.Equal(t, http.StatusOK, send(t, h, http.MethodPost, "/api/v1/createTrip", legacyTrip()).Code)

	rec := send(t, h, http.MethodDelete, "/api/v1/deleteTrip?tripId=legacy-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Trip deleted successfully", jsonString(t, rec))

	rec = send(t, h, http.MethodDelete, "/api/v1/deleteTrip?tripId=legacy-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Trip with ID 'legacy-1' not found.", jsonString(t, rec))

	rec = send(t, h, http.MethodDelete, "/api/v1/deleteTrip", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateUploadURL(t *testing.T) {
	h := newLegacyRouter(t, true)

	rec := send(t, h, http.MethodPost, "/api/v1/generateUploadUrl", map[string]string{
		"fileType":     "image/jpeg",
		"locationName": "Mount Fuji",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var urls map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &urls))
	assert.Contains(t, urls["uploadUrl"], "uploads/Mount%20Fuji/")
	assert.Contains(t, urls["imageUrl"], "https://images.s3.us-east-1.amazonaws.com/uploads/Mount%20Fuji/")
	assert.Len(t, urls, 2)

	rec = send(t, h, http.MethodPost, "/api/v1/generateUploadUrl", map[string]string{"fileType": "image/jpeg"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing fileType or locationName", message(t, rec))

	rec = send(t, h, http.MethodPost, "/api/v1/generateUploadUrl", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid JSON body", message(t, rec))
}

func TestGenerateUploadURL_NotConfigured(t *testing.T) {
	h := newLegacyRouter(t, false)

	rec := send(t, h, http.MethodPost, "/api/v1/generateUploadUrl", map[string]string{
		"fileType":     "image/jpeg",
		"locationName": "Mount Fuji",
	})
	assert.GreaterOrEqual(t, rec.Code, http.StatusInternalServerError)
}

func TestSaveImageMetadata(t *testing.T) {
	h := newLegacyRouter(t, false)

	rec := send(t, h, http.MethodPost, "/api/v1/saveImageMetadata", map[string]string{
		"locationName": "Mount Fuji",
		"imageUrl":     "https://images.s3.us-east-1.amazonaws.com/uploads/Mount%20Fuji/a.jpg",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Image metadata saved", body["message"])
	assert.NotEmpty(t, body["imageId"])

	rec = send(t, h, http.MethodPost, "/api/v1/saveImageMetadata", map[string]string{"locationName": "Mount Fuji"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing locationName or imageUrl", message(t, rec))
}

func TestHealth(t *testing.T) {
	h := newLegacyRouter(t, false)

	rec := send(t, h, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"v1"}`, rec.Body.String())
}

package ports

import (
	"context"
	"time"

	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/events"
)

// TripKey addresses one trip record. Which parts are significant depends on
// the repository's key scheme; callers always pass both when they know them.
type TripKey struct {
	OwnerID string
	TripID  string
}

// TripRepository defines the interface for trip persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type TripRepository interface {
	// Create persists a new trip, failing with ErrTripAlreadyExists if the key is taken
	Create(ctx context.Context, trip *entities.Trip) error

	// Save replaces an existing trip, failing with ErrTripNotFound if it is absent
	Save(ctx context.Context, trip *entities.Trip) error

	// GetByID retrieves a trip
	GetByID(ctx context.Context, key TripKey) (*entities.Trip, error)

	// ListAll retrieves every trip in the table
	ListAll(ctx context.Context) ([]*entities.Trip, error)

	// ListByOwner retrieves all trips for a user
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Trip, error)

	// UpdateAttributes sets top-level attributes on an existing trip and
	// returns the updated values
	UpdateAttributes(ctx context.Context, key TripKey, attributes map[string]interface{}) (map[string]interface{}, error)

	// Delete removes a trip and returns the deleted record
	Delete(ctx context.Context, key TripKey) (*entities.Trip, error)
}

// ImageRepository stores metadata about uploaded location images
type ImageRepository interface {
	// SaveMetadata records an uploaded image
	SaveMetadata(ctx context.Context, image *entities.ImageMetadata) error

	// ListByLocation returns images recorded for a location, oldest first
	ListByLocation(ctx context.Context, locationName string) ([]*entities.ImageMetadata, error)
}

// UploadSigner issues pre-signed upload URLs for the image bucket
type UploadSigner interface {
	// PresignPut returns a URL the browser can PUT the object to directly
	PresignPut(ctx context.Context, key, contentType string, expires time.Duration) (string, error)

	// ObjectURL returns the public URL the object will be served from
	ObjectURL(key string) string
}

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of a conversation
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest is a single completion request
type ChatRequest struct {
	Messages    []ChatMessage
	Temperature float32
	JSONOutput  bool
}

// ChatCompleter sends a conversation to a language model
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing domain events
type EventBus interface {
	EventPublisher
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every value whose key starts with prefix
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// TripCacheKey is the cache key of a single trip lookup made on behalf of
// ownerID. Anonymous lookups use an empty owner. Every lookup of a trip
// shares TripCachePrefix so writes can evict them all at once.
func TripCacheKey(ownerID, tripID string) string {
	return TripCachePrefix(tripID) + ownerID
}

// TripCachePrefix is the key prefix shared by all cached lookups of a trip
func TripCachePrefix(tripID string) string {
	return "trip:" + tripID + "/"
}

package handlers

import (
	"context"
	stderrors "errors"
	"time"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/domain/core/itinerary"
	"triptrek-backend/domain/core/validators"
	"triptrek-backend/domain/events"
	"triptrek-backend/pkg/errors"
	"triptrek-backend/pkg/observability"

	"go.uber.org/zap"
)

// TripWriter carries the collaborators shared by every trip command handler
type TripWriter struct {
	repo      ports.TripRepository
	validator *validators.TripValidator
	eventBus  ports.EventBus
	cache     ports.Cache
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewTripWriter creates the shared trip write path
func NewTripWriter(
	repo ports.TripRepository,
	validator *validators.TripValidator,
	eventBus ports.EventBus,
	cache ports.Cache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *TripWriter {
	return &TripWriter{
		repo:      repo,
		validator: validator,
		eventBus:  eventBus,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the timestamp source
func (w *TripWriter) WithClock(now func() time.Time) *TripWriter {
	w.now = now
	return w
}

func (w *TripWriter) timestamp() string {
	return w.now().UTC().Format(time.RFC3339)
}

// prepare reconciles the trip's itinerary against its bounds, validates the
// result and applies the empty-itinerary confirmation gate. Days outside the
// range are dropped before validation, so they never block a save. It returns
// the dates of days with activities that fell outside the range.
func (w *TripWriter) prepare(trip *entities.Trip, confirmEmpty bool) ([]string, error) {
	if err := w.validateBounds(trip); err != nil {
		return nil, err
	}

	dropped, err := itinerary.ReconcileTrip(trip)
	if err != nil {
		return nil, err
	}

	if err := w.validator.Validate(trip); err != nil {
		return nil, err
	}

	if !confirmEmpty && w.validator.NeedsConfirmation(trip) {
		return nil, errors.ErrConfirmationRequired
	}

	return dropped, nil
}

// validateBounds checks everything but the itinerary. When the bounds are
// unusable nothing can be reconciled, so the whole submitted record is
// reported instead.
func (w *TripWriter) validateBounds(trip *entities.Trip) error {
	header := *trip
	header.Itinerary = nil
	if err := w.validator.Validate(&header); err != nil {
		if full := w.validator.Validate(trip); full != nil {
			return full
		}
		return err
	}
	return nil
}

// load fetches a trip and hides trips that belong to someone else
func (w *TripWriter) load(ctx context.Context, tripID, ownerID string) (*entities.Trip, error) {
	trip, err := w.repo.GetByID(ctx, ports.TripKey{OwnerID: ownerID, TripID: tripID})
	if err != nil {
		return nil, err
	}
	if ownerID != "" && trip.OwnerID != "" && trip.OwnerID != ownerID {
		return nil, errors.ErrTripNotFound.WithDetail("tripId", tripID)
	}
	return trip, nil
}

// evict drops every cached lookup of a trip, whoever made it
func (w *TripWriter) evict(ctx context.Context, trip *entities.Trip) {
	if w.cache == nil {
		return
	}
	if err := w.cache.DeletePrefix(ctx, ports.TripCachePrefix(trip.ID)); err != nil {
		w.logger.Warn("Failed to evict trip from cache",
			zap.String("tripID", trip.ID),
			zap.Error(err),
		)
	}
}

func (w *TripWriter) publish(ctx context.Context, event events.DomainEvent) {
	if w.eventBus == nil {
		return
	}
	if err := w.eventBus.Publish(ctx, event); err != nil {
		w.logger.Warn("Failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

func (w *TripWriter) record(ctx context.Context, command string, started time.Time, err error) {
	w.metrics.RecordCommandExecution(ctx, command, time.Since(started), err)

	var domainErr *errors.DomainError
	if stderrors.As(err, &domainErr) {
		w.metrics.RecordError(ctx, string(domainErr.Type), domainErr.Code)
	}
}

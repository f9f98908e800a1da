package di

import (
	"triptrek-backend/application/commands/bus"
	"triptrek-backend/application/ports"
	querybus "triptrek-backend/application/queries/bus"
	"triptrek-backend/application/services"
	"triptrek-backend/infrastructure/config"
	"triptrek-backend/pkg/auth"
	"triptrek-backend/pkg/errors"
	"triptrek-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	TripRepo         ports.TripRepository
	ImageRepo        ports.ImageRepository
	EventBus         ports.EventBus
	CommandBus       *bus.CommandBus
	QueryBus         *querybus.QueryBus
	Cache            ports.Cache
	Metrics          *observability.Metrics
	Collector        *observability.Collector
	ImageService     *services.ImageService
	AssistantService *services.AssistantService
	RateLimiter      *auth.TokenBucketLimiter
	ErrorHandler     *errors.ErrorHandler
}

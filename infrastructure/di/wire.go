//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"triptrek-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideS3Client,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideTripRepository,
	ProvideImageRepository,
	ProvideUploadSigner,
	ProvideEventBus,
	ProvideMetrics,
	ProvideCollector,
	ProvideTracer,
	ProvideDomainConfig,
	ProvideTripValidator,
	ProvideTripWriter,
	ProvideChatCompleter,
	ProvideImageService,
	ProvideAssistantService,
	ProvideRateLimiter,
	ProvideErrorHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideInMemoryCache,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}

package di

import (
	"context"
	"fmt"

	"triptrek-backend/application/commands"
	"triptrek-backend/application/commands/bus"
	commands_handlers "triptrek-backend/application/commands/handlers"
	"triptrek-backend/application/ports"
	"triptrek-backend/application/queries"
	querybus "triptrek-backend/application/queries/bus"
	queries_handlers "triptrek-backend/application/queries/handlers"
	"triptrek-backend/application/services"
	domainconfig "triptrek-backend/domain/config"
	"triptrek-backend/domain/core/validators"
	"triptrek-backend/infrastructure/ai/openai"
	"triptrek-backend/infrastructure/config"
	"triptrek-backend/infrastructure/messaging/eventbridge"
	"triptrek-backend/infrastructure/persistence/dynamodb"
	"triptrek-backend/infrastructure/persistence/memory"
	s3storage "triptrek-backend/infrastructure/storage/s3"
	"triptrek-backend/pkg/auth"
	"triptrek-backend/pkg/errors"
	"triptrek-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled every SDK
// call is recorded as an X-Ray subsegment.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTripRepository creates the trip repository for the configured store
func ProvideTripRepository(client *awsdynamodb.Client, cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (ports.TripRepository, error) {
	if cfg.Store == "memory" {
		return memory.NewTripRepository(), nil
	}

	scheme, err := dynamodb.ParseKeyScheme(cfg.TripKeyScheme)
	if err != nil {
		return nil, err
	}
	return dynamodb.NewTripRepository(client, cfg.TripsTable, scheme, logger).WithMetrics(metrics), nil
}

// ProvideImageRepository creates the image metadata repository
func ProvideImageRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ImageRepository {
	if cfg.Store == "memory" {
		return memory.NewImageRepository()
	}
	return dynamodb.NewImageRepository(client, cfg.ImagesTable, logger)
}

// ProvideUploadSigner creates the S3 presigner. Without a bucket uploads are
// disabled and the image service reports ErrUploadNotConfigured.
func ProvideUploadSigner(client *awss3.Client, cfg *config.Config) ports.UploadSigner {
	if cfg.ImageBucket == "" {
		return nil
	}
	return s3storage.NewPresignerFromClient(client, cfg.ImageBucket, cfg.AWSRegion)
}

// ProvideEventBus creates an event bus. Without a bus name events are only
// logged.
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	if cfg.EventBusName == "" {
		return eventbridge.NewLogPublisher(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("%s/%s", cfg.MetricsNamespace, cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideTracer creates the X-Ray tracer, nil when tracing is disabled
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("triptrek")
}

// ProvideDomainConfig loads the domain rules for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	dcfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := dcfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid domain config: %w", err)
	}
	return dcfg, nil
}

// ProvideTripValidator creates the trip record validator
func ProvideTripValidator(dcfg *domainconfig.DomainConfig) *validators.TripValidator {
	return validators.NewTripValidator(dcfg)
}

// ProvideTripWriter creates the shared write path of the trip command handlers
func ProvideTripWriter(
	repo ports.TripRepository,
	validator *validators.TripValidator,
	eventBus ports.EventBus,
	cache ports.Cache,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *commands_handlers.TripWriter {
	return commands_handlers.NewTripWriter(repo, validator, eventBus, cache, metrics, logger)
}

// ProvideChatCompleter creates the language model client. Without an API key
// the assistant answers with its fallbacks.
func ProvideChatCompleter(cfg *config.Config, tracer *observability.Tracer, logger *zap.Logger) ports.ChatCompleter {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, assistant disabled")
		return nil
	}

	clientCfg := openai.DefaultConfig()
	clientCfg.APIKey = cfg.OpenAIAPIKey
	clientCfg.BaseURL = cfg.OpenAIBaseURL
	clientCfg.Model = cfg.ChatModel
	clientCfg.Timeout = cfg.ChatTimeout
	clientCfg.MaxRetries = cfg.ChatRetries

	return openai.NewClient(clientCfg, tracer, logger)
}

// ProvideImageService creates the upload URL service
func ProvideImageService(signer ports.UploadSigner, dcfg *domainconfig.DomainConfig, logger *zap.Logger) *services.ImageService {
	return services.NewImageService(signer, dcfg, logger)
}

// ProvideAssistantService creates the chatbot service
func ProvideAssistantService(completer ports.ChatCompleter, logger *zap.Logger) *services.AssistantService {
	return services.NewAssistantService(completer, logger)
}

// ProvideRateLimiter creates the per-client rate limiter
func ProvideRateLimiter(ctx context.Context, cfg *config.Config) *auth.TokenBucketLimiter {
	return auth.NewTokenBucketLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
}

// ProvideErrorHandler creates the HTTP error renderer
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.Environment != "production")
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	writer *commands_handlers.TripWriter,
	imageRepo ports.ImageRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(bus.LoggingMiddleware(logger))

	createHandler := commands_handlers.NewCreateTripHandler(writer)
	saveHandler := commands_handlers.NewSaveTripHandler(writer)
	patchHandler := commands_handlers.NewPatchTripAttributeHandler(writer)
	deleteHandler := commands_handlers.NewDeleteTripHandler(writer)
	attachHandler := commands_handlers.NewAttachTripImageHandler(writer)
	imageHandler := commands_handlers.NewSaveImageMetadataHandler(imageRepo, eventBus, logger)

	registrations := []struct {
		cmd     bus.Command
		handler func(context.Context, bus.Command) error
	}{
		{commands.CreateTripCommand{}, func(ctx context.Context, cmd bus.Command) error {
			return createHandler.Handle(ctx, cmd.(commands.CreateTripCommand))
		}},
		{commands.SaveTripCommand{}, func(ctx context.Context, cmd bus.Command) error {
			return saveHandler.Handle(ctx, cmd.(commands.SaveTripCommand))
		}},
		{commands.PatchTripAttributeCommand{}, func(ctx context.Context, cmd bus.Command) error {
			return patchHandler.Handle(ctx, cmd.(commands.PatchTripAttributeCommand))
		}},
		{commands.DeleteTripCommand{}, func(ctx context.Context, cmd bus.Command) error {
			return deleteHandler.Handle(ctx, cmd.(commands.DeleteTripCommand))
		}},
		{commands.AttachTripImageCommand{}, func(ctx context.Context, cmd bus.Command) error {
			return attachHandler.Handle(ctx, cmd.(commands.AttachTripImageCommand))
		}},
		{commands.SaveImageMetadataCommand{}, func(ctx context.Context, cmd bus.Command) error {
			return imageHandler.Handle(ctx, cmd.(commands.SaveImageMetadataCommand))
		}},
	}

	for _, reg := range registrations {
		if err := commandBus.Register(reg.cmd, &CommandHandlerAdapter{handler: reg.handler}); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates a query bus with registered handlers. Single trip
// lookups are cached; every query is timed.
func ProvideQueryBus(
	tripRepo ports.TripRepository,
	imageRepo ports.ImageRepository,
	validator *validators.TripValidator,
	cache ports.Cache,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.Timing(collector),
		querybus.Caching(cache, cfg.CacheTTL),
	)

	getTripHandler := queries_handlers.NewGetTripHandler(tripRepo, logger)
	listTripsHandler := queries_handlers.NewListTripsHandler(tripRepo, logger)
	itineraryHandler := queries_handlers.NewItineraryHandler(validator)
	imagesHandler := queries_handlers.NewListLocationImagesHandler(imageRepo)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.GetTripQuery{}, &QueryHandlerAdapter{
			handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
				return getTripHandler.Handle(ctx, query.(queries.GetTripQuery))
			},
		}},
		{queries.ListTripsQuery{}, &QueryHandlerAdapter{
			handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
				return listTripsHandler.HandleAll(ctx, query.(queries.ListTripsQuery))
			},
		}},
		{queries.ListTripsByOwnerQuery{}, &QueryHandlerAdapter{
			handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
				return listTripsHandler.HandleByOwner(ctx, query.(queries.ListTripsByOwnerQuery))
			},
		}},
		{queries.PreviewItineraryQuery{}, &QueryHandlerAdapter{
			handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
				return itineraryHandler.HandlePreview(ctx, query.(queries.PreviewItineraryQuery))
			},
		}},
		{queries.ValidateTripQuery{}, &QueryHandlerAdapter{
			handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
				return itineraryHandler.HandleValidate(ctx, query.(queries.ValidateTripQuery))
			},
		}},
		{queries.ListLocationImagesQuery{}, &QueryHandlerAdapter{
			handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
				return imagesHandler.Handle(ctx, query.(queries.ListLocationImagesQuery))
			},
		}},
	}

	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, reg.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

// ProvideInMemoryCache creates the process-local query cache
func ProvideInMemoryCache(ctx context.Context) ports.Cache {
	return NewInMemoryCache(ctx)
}

// Package main implements the Lambda handler that records gallery images
// once the browser has finished uploading them to S3.
package main

import (
	"context"
	"fmt"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"triptrek-backend/application/commands"
	commandbus "triptrek-backend/application/commands/bus"
	"triptrek-backend/application/services"
	"triptrek-backend/infrastructure/config"
	"triptrek-backend/infrastructure/di"
	s3storage "triptrek-backend/infrastructure/storage/s3"
)

// Global dependencies for Lambda performance optimization
var (
	commandBus *commandbus.CommandBus
	logger     *zap.Logger
)

// setup builds the dependencies once per cold start
func setup() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	container, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependency container: %v", err)
	}

	commandBus = container.CommandBus
	logger = container.Logger

	logger.Info("Image-uploaded handler initialized")
}

// HandleS3Event saves metadata for every gallery object in the event.
// Objects outside the gallery layout are skipped.
func HandleS3Event(ctx context.Context, event awsevents.S3Event) error {
	return handleRecords(ctx, commandBus, logger, event.Records)
}

type sender interface {
	Send(ctx context.Context, cmd commandbus.Command) error
}

func handleRecords(ctx context.Context, bus sender, logger *zap.Logger, records []awsevents.S3EventRecord) error {
	for _, record := range records {
		key := record.S3.Object.URLDecodedKey
		if key == "" {
			key = record.S3.Object.Key
		}

		image, ok := services.ParseUploadKey(key)
		if !ok {
			logger.Debug("Skipping non-gallery object", zap.String("key", key))
			continue
		}

		cmd := commands.SaveImageMetadataCommand{
			ImageID:      image.ImageID,
			LocationName: image.LocationName,
			ImageURL:     s3storage.ObjectURL(record.S3.Bucket.Name, record.AWSRegion, key),
			ObjectKey:    key,
		}
		if err := bus.Send(ctx, cmd); err != nil {
			return fmt.Errorf("failed to save metadata for %s: %w", key, err)
		}

		logger.Info("Recorded uploaded image",
			zap.String("location", image.LocationName),
			zap.String("imageID", image.ImageID),
		)
	}
	return nil
}

func main() {
	setup()
	lambda.Start(HandleS3Event)
}

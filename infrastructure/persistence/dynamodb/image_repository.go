package dynamodb

import (
	"context"
	"sort"
	"strings"
	"time"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ImageRepository stores location image metadata (pk = location name,
// sk = IMAGE#imageId)
type ImageRepository struct {
	client    API
	tableName string
	logger    *zap.Logger
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(client API, tableName string, logger *zap.Logger) *ImageRepository {
	return &ImageRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.ImageRepository = (*ImageRepository)(nil)

type imageItem struct {
	PK         string `dynamodbav:"pk"`
	SK         string `dynamodbav:"sk"`
	ImageURL   string `dynamodbav:"imageUrl"`
	ObjectKey  string `dynamodbav:"objectKey,omitempty"`
	UploadedAt string `dynamodbav:"uploadedAt"`
}

// SaveMetadata records an uploaded image
func (r *ImageRepository) SaveMetadata(ctx context.Context, image *entities.ImageMetadata) error {
	item := imageItem{
		PK:         image.LocationName,
		SK:         imageSortPrefix + image.ID,
		ImageURL:   image.ImageURL,
		ObjectKey:  image.ObjectKey,
		UploadedAt: image.UploadedAt.UTC().Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return wrapError("marshal image", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return wrapError("save image metadata", err)
	}
	return nil
}

// ListByLocation returns the images recorded for a location, oldest first
func (r *ImageRepository) ListByLocation(ctx context.Context, locationName string) ([]*entities.ImageMetadata, error) {
	keyCond := expression.Key("pk").Equal(expression.Value(locationName)).
		And(expression.Key("sk").BeginsWith(imageSortPrefix))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, wrapError("build expression", err)
	}

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var images []*entities.ImageMetadata
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapError("query images", err)
		}
		for _, av := range page.Items {
			var item imageItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil {
				r.logger.Warn("Failed to unmarshal image item", zap.Error(err))
				continue
			}
			uploadedAt, _ := time.Parse(time.RFC3339Nano, item.UploadedAt)
			images = append(images, &entities.ImageMetadata{
				ID:           strings.TrimPrefix(item.SK, imageSortPrefix),
				LocationName: item.PK,
				ImageURL:     item.ImageURL,
				ObjectKey:    item.ObjectKey,
				UploadedAt:   uploadedAt,
			})
		}
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].UploadedAt.Before(images[j].UploadedAt)
	})
	return images, nil
}

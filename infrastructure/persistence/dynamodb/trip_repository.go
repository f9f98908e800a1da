package dynamodb

import (
	"context"
	"sort"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/core/entities"
	"triptrek-backend/pkg/errors"
	"triptrek-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// corruptItemCode is the error code counted for stored trips that no longer decode
const corruptItemCode = "CORRUPT_TRIP_ITEM"

// TripRepository implements ports.TripRepository using DynamoDB
type TripRepository struct {
	client    API
	tableName string
	scheme    KeyScheme
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(client API, tableName string, scheme KeyScheme, logger *zap.Logger) *TripRepository {
	return &TripRepository{
		client:    client,
		tableName: tableName,
		scheme:    scheme,
		logger:    logger,
	}
}

// WithMetrics reports items that cannot be decoded as domain errors
func (r *TripRepository) WithMetrics(metrics *observability.Metrics) *TripRepository {
	r.metrics = metrics
	return r
}

var _ ports.TripRepository = (*TripRepository)(nil)

func tripKeyOf(trip *entities.Trip) ports.TripKey {
	return ports.TripKey{OwnerID: trip.OwnerID, TripID: trip.ID}
}

// Create persists a new trip, refusing to overwrite an existing one
func (r *TripRepository) Create(ctx context.Context, trip *entities.Trip) error {
	cond := expression.AttributeNotExists(expression.Name("pk"))
	if err := r.put(ctx, trip, cond, "create trip"); err != nil {
		if isConditionalCheckFailed(err) {
			return errors.ErrTripAlreadyExists.WithDetail("tripId", trip.ID)
		}
		return err
	}

	r.logger.Debug("Trip created in DynamoDB",
		zap.String("tripID", trip.ID),
		zap.String("scheme", string(r.scheme)),
	)
	return nil
}

// Save replaces an existing trip
func (r *TripRepository) Save(ctx context.Context, trip *entities.Trip) error {
	cond := expression.AttributeExists(expression.Name("pk"))
	if err := r.put(ctx, trip, cond, "save trip"); err != nil {
		if isConditionalCheckFailed(err) {
			return errors.ErrTripNotFound.WithDetail("tripId", trip.ID)
		}
		return err
	}
	return nil
}

func (r *TripRepository) put(ctx context.Context, trip *entities.Trip, cond expression.ConditionBuilder, operation string) error {
	if _, err := r.scheme.primaryKey(tripKeyOf(trip)); err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(newTripItem(r.scheme, trip))
	if err != nil {
		return wrapError("marshal trip", err)
	}

	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return wrapError("build expression", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return err
		}
		r.logger.Error("Failed to write trip to DynamoDB",
			zap.String("tripID", trip.ID),
			zap.Error(err),
		)
		return wrapError(operation, err)
	}
	return nil
}

// GetByID retrieves a trip
func (r *TripRepository) GetByID(ctx context.Context, key ports.TripKey) (*entities.Trip, error) {
	pk, err := r.scheme.primaryKey(key)
	if err != nil {
		return nil, err
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       pk,
	})
	if err != nil {
		return nil, wrapError("get trip", err)
	}
	if result.Item == nil {
		return nil, errors.ErrTripNotFound.WithDetail("tripId", key.TripID)
	}

	var item tripItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, wrapError("unmarshal trip", err)
	}
	return item.toEntity(), nil
}

// ListAll scans every trip in the table
func (r *TripRepository) ListAll(ctx context.Context) ([]*entities.Trip, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}

	if r.scheme == KeySchemeComposite {
		filter := expression.Name("sk").BeginsWith(tripSortPrefix)
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, wrapError("build expression", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	return r.scan(ctx, input)
}

// ListByOwner retrieves all trips for a user. The composite scheme queries
// the owner's partition; the single scheme has to scan with a filter.
func (r *TripRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Trip, error) {
	if r.scheme != KeySchemeComposite {
		filter := expression.Name("ownerId").Equal(expression.Value(ownerID))
		expr, err := expression.NewBuilder().WithFilter(filter).Build()
		if err != nil {
			return nil, wrapError("build expression", err)
		}
		return r.scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
	}

	keyCond := expression.Key("pk").Equal(expression.Value(ownerID)).
		And(expression.Key("sk").BeginsWith(tripSortPrefix))
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

	var trips []*entities.Trip
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapError("query trips", err)
		}
		trips = append(trips, r.unmarshalTrips(ctx, page.Items)...)
	}
	return trips, nil
}

func (r *TripRepository) scan(ctx context.Context, input *dynamodb.ScanInput) ([]*entities.Trip, error) {
	paginator := dynamodb.NewScanPaginator(r.client, input)

	var trips []*entities.Trip
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, wrapError("scan trips", err)
		}
		trips = append(trips, r.unmarshalTrips(ctx, page.Items)...)
	}
	return trips, nil
}

// unmarshalTrips decodes listed items. An item that does not decode is
// skipped so one bad record cannot break a listing, but it is logged with
// its key and counted.
func (r *TripRepository) unmarshalTrips(ctx context.Context, items []map[string]types.AttributeValue) []*entities.Trip {
	trips := make([]*entities.Trip, 0, len(items))
	for _, av := range items {
		var item tripItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			var key struct {
				PK string `dynamodbav:"pk"`
				SK string `dynamodbav:"sk"`
			}
			_ = attributevalue.UnmarshalMap(av, &key)
			r.logger.Error("Skipping undecodable trip item",
				zap.String("pk", key.PK),
				zap.String("sk", key.SK),
				zap.Error(err),
			)
			r.metrics.RecordError(ctx, string(errors.DomainInfrastructureError), corruptItemCode)
			continue
		}
		trips = append(trips, item.toEntity())
	}
	return trips
}

// UpdateAttributes sets top-level attributes on an existing trip. A nil
// value removes the attribute.
func (r *TripRepository) UpdateAttributes(ctx context.Context, key ports.TripKey, attributes map[string]interface{}) (map[string]interface{}, error) {
	pk, err := r.scheme.primaryKey(key)
	if err != nil {
		return nil, err
	}
	if len(attributes) == 0 {
		return map[string]interface{}{}, nil
	}

	// Sorted so the generated expression is deterministic
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	var update expression.UpdateBuilder
	for _, name := range names {
		value := attributes[name]
		if value == nil {
			update = update.Remove(expression.Name(storedName(name)))
			continue
		}
		update = update.Set(expression.Name(storedName(name)), expression.Value(attributeValue(value)))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("pk"))).
		Build()
	if err != nil {
		return nil, wrapError("build expression", err)
	}

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       pk,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return nil, errors.ErrTripNotFound.WithDetail("tripId", key.TripID)
		}
		return nil, wrapError("update trip", err)
	}

	var stored map[string]interface{}
	if err := attributevalue.UnmarshalMap(result.Attributes, &stored); err != nil {
		return nil, wrapError("unmarshal trip attributes", err)
	}

	updated := make(map[string]interface{}, len(stored))
	for name, value := range stored {
		updated[entityName(name)] = value
	}
	return updated, nil
}

// Delete removes a trip and returns the deleted record
func (r *TripRepository) Delete(ctx context.Context, key ports.TripKey) (*entities.Trip, error) {
	pk, err := r.scheme.primaryKey(key)
	if err != nil {
		return nil, err
	}

	result, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.tableName),
		Key:          pk,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, wrapError("delete trip", err)
	}
	if len(result.Attributes) == 0 {
		return nil, errors.ErrTripNotFound.WithDetail("tripId", key.TripID)
	}

	var item tripItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &item); err != nil {
		return nil, wrapError("unmarshal trip", err)
	}
	return item.toEntity(), nil
}

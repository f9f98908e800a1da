package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"

	"triptrek-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// API is the subset of the DynamoDB client the repositories use
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return stderrors.As(err, &ccf)
}

// wrapError maps throttling and missing-table API errors onto domain errors
// and wraps everything else with the failed operation.
func wrapError(operation string, err error) error {
	var ae smithy.APIError
	if stderrors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ProvisionedThroughputExceededException", "ThrottlingException", "RequestLimitExceeded":
			return errors.ErrRateLimitExceeded.WithCause(err).WithDetail("operation", operation)
		case "ResourceNotFoundException":
			return errors.ErrDatabaseConnection.
				Derive("table not found").
				WithCause(err).
				WithDetail("operation", operation)
		}
	}
	return fmt.Errorf("failed to %s: %w", operation, err)
}

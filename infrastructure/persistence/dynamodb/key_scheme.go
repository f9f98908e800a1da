package dynamodb

import (
	"fmt"
	"strings"

	"triptrek-backend/application/ports"
	"triptrek-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyScheme selects how trip records are keyed in the table
type KeyScheme string

const (
	// KeySchemeSingle keys a trip by its id alone (pk = tripId)
	KeySchemeSingle KeyScheme = "single"

	// KeySchemeComposite groups trips under their owner
	// (pk = ownerId, sk = TRIP#tripId)
	KeySchemeComposite KeyScheme = "composite"

	tripSortPrefix  = "TRIP#"
	imageSortPrefix = "IMAGE#"
)

// ParseKeyScheme reads a scheme name; empty means single
func ParseKeyScheme(s string) (KeyScheme, error) {
	switch KeyScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeySchemeSingle:
		return KeySchemeSingle, nil
	case KeySchemeComposite:
		return KeySchemeComposite, nil
	default:
		return "", fmt.Errorf("unknown trip key scheme %q", s)
	}
}

// primaryKey returns the table key of a trip
func (s KeyScheme) primaryKey(key ports.TripKey) (map[string]types.AttributeValue, error) {
	if key.TripID == "" {
		return nil, errors.NewValidationError("trip ID is required")
	}

	if s == KeySchemeComposite {
		if key.OwnerID == "" {
			return nil, errors.NewValidationError("owner ID is required to address a trip")
		}
		return map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: key.OwnerID},
			"sk": &types.AttributeValueMemberS{Value: tripSortPrefix + key.TripID},
		}, nil
	}

	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: key.TripID},
	}, nil
}

// keyFields returns the pk and sk values written into a trip item
func (s KeyScheme) keyFields(key ports.TripKey) (pk, sk string) {
	if s == KeySchemeComposite {
		return key.OwnerID, tripSortPrefix + key.TripID
	}
	return key.TripID, ""
}
